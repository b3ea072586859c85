package entity

import "time"

// User represents a row in the `users` table.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Fields carries the mutable columns for create and update.
// An empty Phone is persisted as NULL.
type Fields struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// PhoneOrNil maps the optional phone to a nullable column value.
func (f Fields) PhoneOrNil() *string {
	if f.Phone == "" {
		return nil
	}
	p := f.Phone
	return &p
}

// DeleteReceipt is the payload returned after a user is removed.
type DeleteReceipt struct {
	ID int64 `json:"id"`
}
