package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/rpc"
	"github.com/ZazenCloud/Habit-Tracker/internal/habitstore"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

var _ habitstore.Collection = (*Habits)(nil)

// Habits is the remote habits collection.
type Habits struct {
	client *rpc.HabitsClient
}

func NewHabits(conn *Conn) *Habits {
	return &Habits{client: rpc.NewHabitsClient(conn.cc)}
}

func (h *Habits) List(ctx context.Context, ownerID uuid.UUID) ([]model.Habit, error) {
	resp, err := h.client.ListHabits(ctx, &rpc.ListHabitsRequest{OwnerID: ownerID})
	if err != nil {
		return nil, fromStatus(err)
	}
	return rpc.HabitModels(resp.Habits), nil
}

func (h *Habits) Create(ctx context.Context, params model.CreateHabitParams) (model.Habit, error) {
	resp, err := h.client.CreateHabit(ctx, &rpc.CreateHabitRequest{
		OwnerID:  params.OwnerID,
		Name:     params.Name,
		Position: params.Position,
	})
	if err != nil {
		return model.Habit{}, fromStatus(err)
	}
	return resp.Habit.Model(), nil
}

func (h *Habits) Update(ctx context.Context, id uuid.UUID, patch model.HabitPatch) error {
	_, err := h.client.UpdateHabit(ctx, &rpc.UpdateHabitRequest{
		ID:             id,
		CompletedDates: patch.CompletedDates,
		Streak:         patch.Streak,
		Position:       patch.Position,
	})
	return fromStatus(err)
}

func (h *Habits) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := h.client.DeleteHabit(ctx, &rpc.DeleteHabitRequest{ID: id})
	return fromStatus(err)
}
