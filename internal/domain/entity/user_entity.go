package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds the bcrypt hash and is cleared before a user leaves the
// service layer.
type User struct {
	ID          string
	Name        string
	Email       string
	Password    string
	IsAdmin     bool
	IsBlocked   bool
	LastLoginAt *time.Time
	ImageURL    string
	Wishlist    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Sanitized returns a copy without the password hash.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Password = ""
	if u.Wishlist != nil {
		cp.Wishlist = append([]string(nil), u.Wishlist...)
	}
	return &cp
}

// UserSummary is the slice of a user embedded in order listings.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
