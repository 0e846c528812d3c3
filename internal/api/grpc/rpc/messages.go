// Package rpc defines the wire messages and service descriptors of the habits API.
package rpc

import (
	"time"

	"github.com/google/uuid"

	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// Empty is the message of calls without arguments or results.
type Empty struct{}

// Identity is the public part of a user account.
type Identity struct {
	UserID      uuid.UUID `json:"uid"`
	DisplayName string    `json:"displayName,omitempty"`
	Email       string    `json:"email,omitempty"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	User         Identity `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RevokeTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type MeResponse struct {
	User Identity `json:"user"`
}

// Habit is a document of the habits collection.
type Habit struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	OwnerID        uuid.UUID `json:"ownerId"`
	CreatedAt      time.Time `json:"created"`
	Streak         int       `json:"streak"`
	CompletedDates []string  `json:"completedDates"`
	Position       int       `json:"position"`
}

// ListHabitsRequest selects the habits of OwnerID; uuid.Nil means the caller.
type ListHabitsRequest struct {
	OwnerID uuid.UUID `json:"ownerId"`
}

type ListHabitsResponse struct {
	Habits []Habit `json:"habits"`
}

type CreateHabitRequest struct {
	OwnerID  uuid.UUID `json:"ownerId"`
	Name     string    `json:"name"`
	Position int       `json:"position"`
}

type CreateHabitResponse struct {
	Habit Habit `json:"habit"`
}

// UpdateHabitRequest is a partial update; absent fields are left untouched.
type UpdateHabitRequest struct {
	ID             uuid.UUID `json:"id"`
	CompletedDates *[]string `json:"completedDates,omitempty"`
	Streak         *int      `json:"streak,omitempty"`
	Position       *int      `json:"position,omitempty"`
}

type DeleteHabitRequest struct {
	ID uuid.UUID `json:"id"`
}

type CreateBackupResponse struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created"`
	Count     int       `json:"count"`
}

type ListBackupsResponse struct {
	Keys []string `json:"keys"`
}

type BackupRequest struct {
	Key string `json:"key"`
}

type GetBackupResponse struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created"`
	Habits    []Habit   `json:"habits"`
}

func NewIdentity(i model.Identity) Identity {
	return Identity{UserID: i.UserID, DisplayName: i.DisplayName, Email: i.Email}
}

func (i Identity) Model() model.Identity {
	return model.Identity{UserID: i.UserID, DisplayName: i.DisplayName, Email: i.Email}
}

func NewHabit(h model.Habit) Habit {
	h = h.Clone()
	return Habit{
		ID:             h.ID,
		Name:           h.Name,
		OwnerID:        h.OwnerID,
		CreatedAt:      h.CreatedAt,
		Streak:         h.Streak,
		CompletedDates: h.CompletedDates,
		Position:       h.Position,
	}
}

func NewHabits(habits []model.Habit) []Habit {
	out := make([]Habit, 0, len(habits))
	for _, h := range habits {
		out = append(out, NewHabit(h))
	}
	return out
}

func (h Habit) Model() model.Habit {
	return model.Habit{
		ID:             h.ID,
		OwnerID:        h.OwnerID,
		Name:           h.Name,
		CreatedAt:      h.CreatedAt,
		CompletedDates: h.CompletedDates,
		Streak:         h.Streak,
		Position:       h.Position,
	}.Clone()
}

func HabitModels(habits []Habit) []model.Habit {
	out := make([]model.Habit, 0, len(habits))
	for _, h := range habits {
		out = append(out, h.Model())
	}
	return out
}

// Patch returns the model patch carried by the request.
func (r *UpdateHabitRequest) Patch() model.HabitPatch {
	return model.HabitPatch{
		CompletedDates: r.CompletedDates,
		Streak:         r.Streak,
		Position:       r.Position,
	}
}
