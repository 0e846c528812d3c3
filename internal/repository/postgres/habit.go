package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

var _ model.HabitStore = (*HabitRepository)(nil)

const habitColumns = `id, owner_id, name, created_at, streak, completed_dates, position`

// HabitRepository is the remote habits collection. Every statement filters by owner.
type HabitRepository struct {
	db *Connection
}

func NewHabitRepository(db *Connection) *HabitRepository {
	return &HabitRepository{db: db}
}

func (r *HabitRepository) Create(ctx context.Context, habit model.Habit) (model.Habit, error) {
	query := `INSERT INTO habits (id, owner_id, name, created_at, streak, completed_dates, position)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + habitColumns

	dates := habit.CompletedDates
	if dates == nil {
		dates = []string{}
	}

	saved, err := scanHabit(r.db.QueryRow(ctx, query,
		habit.ID, habit.OwnerID, habit.Name, habit.CreatedAt, habit.Streak, dates, habit.Position,
	))
	if err != nil {
		return model.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}

	return saved, nil
}

// GetByOwner returns the owner's habits by ascending position, ties broken by creation time.
func (r *HabitRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits
			  WHERE owner_id = $1
			  ORDER BY position ASC, created_at ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}

	habits, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Habit, error) {
		return scanHabit(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan habits: %w", err)
	}

	return habits, nil
}

// Update writes the non-nil fields of patch. It returns model.ErrNotFound when
// id does not exist for ownerID.
func (r *HabitRepository) Update(ctx context.Context, ownerID uuid.UUID, id uuid.UUID, patch model.HabitPatch) error {
	query, args := habitUpdate(ownerID, id, patch)
	if query == "" {
		return fmt.Errorf("%w: empty update", model.ErrValidation)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// Delete removes the habit permanently.
func (r *HabitRepository) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM habits WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// habitUpdate builds the UPDATE statement for patch. It returns an empty query
// when the patch changes nothing.
func habitUpdate(ownerID, id uuid.UUID, patch model.HabitPatch) (string, []any) {
	var sets []string
	args := []any{id, ownerID}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.CompletedDates != nil {
		dates := *patch.CompletedDates
		if dates == nil {
			dates = []string{}
		}
		add("completed_dates", dates)
	}
	if patch.Streak != nil {
		add("streak", *patch.Streak)
	}
	if patch.Position != nil {
		add("position", *patch.Position)
	}

	if len(sets) == 0 {
		return "", nil
	}

	return `UPDATE habits SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 AND owner_id = $2`, args
}

func scanHabit(row pgx.Row) (model.Habit, error) {
	var h model.Habit
	err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &h.CreatedAt, &h.Streak, &h.CompletedDates, &h.Position)
	if h.CompletedDates == nil {
		h.CompletedDates = []string{}
	}
	return h, err
}
