package model

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ZazenCloud/Habit-Tracker/internal/daykey"
)

// MaxHabitNameLength bounds habit names in runes.
const MaxHabitNameLength = 255

// HabitStore defines persistence operations for the habits collection.
// Every method is scoped to the owner passed in.
type HabitStore interface {
	Create(ctx context.Context, habit Habit) (Habit, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]Habit, error)
	Update(ctx context.Context, ownerID uuid.UUID, id uuid.UUID, patch HabitPatch) error
	Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error
}

// Habit is one tracked habit of one owner.
type Habit struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Name           string
	CreatedAt      time.Time
	CompletedDates []string
	Streak         int
	Position       int
}

// Clone returns a copy of h that shares no memory with it.
func (h Habit) Clone() Habit {
	h.CompletedDates = slices.Clone(h.CompletedDates)
	if h.CompletedDates == nil {
		h.CompletedDates = []string{}
	}
	return h
}

// Completed reports whether key is in the completed set.
func (h Habit) Completed(key string) bool {
	return slices.Contains(h.CompletedDates, key)
}

// CreateHabitParams contains parameters to create a habit.
type CreateHabitParams struct {
	OwnerID  uuid.UUID
	Name     string
	Position int
}

// HabitPatch is a partial update of a habit. Nil fields are left untouched.
type HabitPatch struct {
	CompletedDates *[]string
	Streak         *int
	Position       *int
}

// Empty reports whether the patch changes nothing.
func (p HabitPatch) Empty() bool {
	return p.CompletedDates == nil && p.Streak == nil && p.Position == nil
}

// Validate checks the patch fields and returns a normalized copy with
// completed dates sorted ascending.
func (p HabitPatch) Validate() (HabitPatch, error) {
	if p.Empty() {
		return p, fmt.Errorf("%w: empty update", ErrValidation)
	}

	if p.CompletedDates != nil {
		dates, err := NormalizeCompletedDates(*p.CompletedDates)
		if err != nil {
			return p, err
		}
		p.CompletedDates = &dates

		if p.Streak != nil && *p.Streak > len(dates) {
			return p, fmt.Errorf("%w: streak %d exceeds %d completed days", ErrValidation, *p.Streak, len(dates))
		}
	}

	if p.Streak != nil && *p.Streak < 0 {
		return p, fmt.Errorf("%w: streak must be non-negative", ErrValidation)
	}

	if p.Position != nil && *p.Position < 0 {
		return p, fmt.Errorf("%w: position must be non-negative", ErrValidation)
	}

	return p, nil
}

// NormalizeCompletedDates validates day keys, rejects duplicates and sorts them.
func NormalizeCompletedDates(dates []string) ([]string, error) {
	out := make([]string, 0, len(dates))
	seen := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		if !daykey.Valid(d) {
			return nil, fmt.Errorf("%w: invalid day key %q", ErrValidation, d)
		}
		if _, dup := seen[d]; dup {
			return nil, fmt.Errorf("%w: duplicate day key %q", ErrValidation, d)
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	slices.Sort(out)
	return out, nil
}

// NormalizeHabitName trims name and checks it is usable as a habit name.
func NormalizeHabitName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: habit name is required", ErrValidation)
	}
	if len([]rune(name)) > MaxHabitNameLength {
		return "", fmt.Errorf("%w: habit name too long (max %d characters)", ErrValidation, MaxHabitNameLength)
	}
	return name, nil
}
