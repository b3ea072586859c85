package soapclient

import (
	"net/mail"
	"unicode"
	"unicode/utf8"
)

const maxNameLen = 50

// FieldErrors maps a field name to its first validation message.
type FieldErrors map[string]string

// ValidateUser checks the form rules for a user before it is sent: name of
// 1 to 50 printable characters, an email address of valid syntax, phone free-form.
// It returns nil when the input is acceptable.
func ValidateUser(in UserInput) FieldErrors {
	errs := FieldErrors{}
	switch n := utf8.RuneCountInString(in.Name); {
	case n == 0:
		errs["name"] = "Name is required"
	case n > maxNameLen:
		errs["name"] = "Name must be at most 50 characters"
	case !printable(in.Name):
		errs["name"] = "Name must contain printable characters only"
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		errs["email"] = "Please enter a valid email address"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func printable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
