package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
}

// User represents a stored user with authentication material.
type User struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// Identity returns the public identity of the user.
func (u User) Identity() Identity {
	return Identity{
		UserID:      u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
	}
}

// Identity is an authenticated user as seen by clients.
// DisplayName and Email may be empty.
type Identity struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
}

// RegisterParams contains parameters to create an account.
type RegisterParams struct {
	Email       string
	Password    string
	DisplayName string
}

// Session is the result of a successful sign-in.
type Session struct {
	Identity     Identity
	AccessToken  string
	RefreshToken string
}
