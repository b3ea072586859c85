package repo

import "errors"

var (
	// ErrNotFound indicates no users row matched the given id.
	ErrNotFound = errors.New("repo: user not found")
	// ErrDuplicateEmail indicates the email unique constraint rejected the write.
	ErrDuplicateEmail = errors.New("repo: email already exists")
)
