package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// Address is a saved delivery address on a customer profile
type Address struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	FullAddress string `json:"full_address"`
	IsDefault   bool   `json:"is_default"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	ProfilePhoto string    `json:"profile_photo,omitempty"`
	Role         UserRole  `json:"role"`
	Addresses    []Address `json:"addresses"`
	Favorites    []string  `json:"favorites"`
	Wishlist     []string  `json:"wishlist"`
	OrderIDs     []string  `json:"order_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public strips the credential before the user leaves the process
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// Admin is a back-office account; the number of admin slots is capped
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// AsUser projects an admin into the session user shape
func (a Admin) AsUser() User {
	return User{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      RoleAdmin,
		CreatedAt: a.RegisteredAt,
	}
}

// Theme is the stored UI preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)
