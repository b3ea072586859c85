package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-user-soap/internal/user/entity"
)

const userColumns = `id, name, email, phone, created_at, updated_at`

// UserRepo provides data access for the users table using sqlx.
// Every method borrows one pooled connection for a single statement.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`
	users := []entity.User{}
	if err := r.db.SelectContext(ctx, &users, q); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return users, nil
}

// GetByID fetches a full user row or ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user %d: %w", id, err)
	}
	return &u, nil
}

// Create inserts a row and returns it with the store-assigned id and timestamps.
func (r *UserRepo) Create(ctx context.Context, f entity.Fields) (*entity.User, error) {
	const q = `INSERT INTO users (name, email, phone) VALUES ($1, $2, $3) RETURNING ` + userColumns
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, f.Name, f.Email, f.PhoneOrNil()); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// Update rewrites name/email/phone in one statement. created_at is never
// touched; updated_at is refreshed.
func (r *UserRepo) Update(ctx context.Context, id int64, f entity.Fields) (*entity.User, error) {
	const q = `UPDATE users SET name=$2, email=$3, phone=$4, updated_at=NOW()
		WHERE id=$1 RETURNING ` + userColumns
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id, f.Name, f.Email, f.PhoneOrNil()); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		case isUniqueViolation(err):
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return &u, nil
}

// Delete hard-deletes the row. ErrNotFound when nothing was removed.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM users WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	return false
}
