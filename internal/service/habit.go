package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// Habit implements the owner-scoped habits collection.
type Habit struct {
	habitStore model.HabitStore
	logger     *logger.Logger
	now        func() time.Time
}

func NewHabit(habitStore model.HabitStore, logger *logger.Logger) *Habit {
	return &Habit{
		habitStore: habitStore,
		logger:     logger,
		now:        time.Now,
	}
}

// ListHabits returns the habits of ownerID ordered by position. A nil ownerID
// means the caller's own habits.
func (s *Habit) ListHabits(ctx context.Context, callerID, ownerID uuid.UUID) ([]model.Habit, error) {
	if ownerID == uuid.Nil {
		ownerID = callerID
	}
	if ownerID != callerID {
		s.logger.Warn("Habit service: cross-owner list rejected",
			"caller_id", callerID,
			"owner_id", ownerID)
		return nil, model.ErrPermissionDenied
	}

	habits, err := s.habitStore.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get habits by owner: %w", err)
	}
	if habits == nil {
		habits = []model.Habit{}
	}

	return habits, nil
}

// CreateHabit stores a new habit with no completions and a zero streak.
func (s *Habit) CreateHabit(ctx context.Context, callerID uuid.UUID, params model.CreateHabitParams) (model.Habit, error) {
	if params.OwnerID == uuid.Nil {
		params.OwnerID = callerID
	}
	if params.OwnerID != callerID {
		return model.Habit{}, model.ErrPermissionDenied
	}

	name, err := model.NormalizeHabitName(params.Name)
	if err != nil {
		return model.Habit{}, err
	}
	if params.Position < 0 {
		return model.Habit{}, fmt.Errorf("%w: position must be non-negative", model.ErrValidation)
	}

	habit, err := s.habitStore.Create(ctx, model.Habit{
		ID:             uuid.New(),
		OwnerID:        params.OwnerID,
		Name:           name,
		CreatedAt:      s.now().UTC(),
		CompletedDates: []string{},
		Streak:         0,
		Position:       params.Position,
	})
	if err != nil {
		s.logger.Error("Habit service: failed to create habit",
			"owner_id", params.OwnerID,
			"error", err.Error())
		return model.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}

	s.logger.Info("Habit service: habit created",
		"owner_id", habit.OwnerID,
		"habit_id", habit.ID,
		"position", habit.Position)

	return habit, nil
}

// UpdateHabit applies a partial update to one of the caller's habits.
func (s *Habit) UpdateHabit(ctx context.Context, callerID, habitID uuid.UUID, patch model.HabitPatch) error {
	patch, err := patch.Validate()
	if err != nil {
		return err
	}

	if err := s.habitStore.Update(ctx, callerID, habitID, patch); err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}

	s.logger.Debug("Habit service: habit updated",
		"owner_id", callerID,
		"habit_id", habitID)

	return nil
}

// DeleteHabit permanently removes one of the caller's habits.
func (s *Habit) DeleteHabit(ctx context.Context, callerID, habitID uuid.UUID) error {
	if err := s.habitStore.Delete(ctx, callerID, habitID); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	s.logger.Info("Habit service: habit deleted",
		"owner_id", callerID,
		"habit_id", habitID)

	return nil
}
