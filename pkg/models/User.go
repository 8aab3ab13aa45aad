package models

import (
	"fmt"
	"time"
)

var (
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrEmailTaken         = fmt.Errorf("a user with this email already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
)

const (
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
