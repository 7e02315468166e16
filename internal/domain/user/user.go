package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("user: not found")
	ErrUsernameTaken = errors.New("user: username already exists")
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id string) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	Save(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}
