package models

import (
	"errors"
	"time"
)

// Role is the access level of a user
type Role string

// UserRole constants
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Column widths of the users table, in characters
const (
	MaxUsernameLength = 80
	MaxEmailLength    = 120
)

// Errors returned by the user store
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
)

// User represents a user in the system
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`    // Never serialize password hash
	Role         Role      `json:"role"` // default "user"
	CreatedAt    time.Time `json:"created_at"`
}

// UserResponse is the outward representation of a user
type UserResponse struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse strips the user down to its outward representation
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// UserOrder names a whitelisted ordering for user listings
type UserOrder string

// OrderByIDDesc lists the most recently created users first
const OrderByIDDesc UserOrder = "id_desc"
