package user

import (
	"errors"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	IsActive     bool      `json:"isActive"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already in use")
	ErrEmailTaken    = errors.New("email already in use")
)

type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required,min=3,max=64"`
	FirstName string `json:"firstName" binding:"required,max=120"`
	LastName  string `json:"lastName" binding:"required,max=120"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,max=32"`
}
