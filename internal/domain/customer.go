package domain

import "time"

// Customer is a storefront account. PasswordHash is only populated on the
// replica side and never serialized.
type Customer struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	IsActive     bool      `json:"isActive"`
	IsStaff      bool      `json:"isStaff"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
