package handler

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/rpc"
	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// HabitService defines owner-scoped operations on the habits collection.
type HabitService interface {
	ListHabits(ctx context.Context, callerID, ownerID uuid.UUID) ([]model.Habit, error)
	CreateHabit(ctx context.Context, callerID uuid.UUID, params model.CreateHabitParams) (model.Habit, error)
	UpdateHabit(ctx context.Context, callerID, habitID uuid.UUID, patch model.HabitPatch) error
	DeleteHabit(ctx context.Context, callerID, habitID uuid.UUID) error
}

var _ rpc.HabitsServer = (*Habit)(nil)

// Habit handles gRPC endpoints for habits.
type Habit struct {
	habitService   HabitService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewHabit creates a new Habit handler.
func NewHabit(habitService HabitService, contextManager model.ContextManager, logger *logger.Logger) *Habit {
	return &Habit{
		habitService:   habitService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// ListHabits returns the caller's habits ordered by position.
func (h *Habit) ListHabits(ctx context.Context, req *rpc.ListHabitsRequest) (*rpc.ListHabitsResponse, error) {
	userID, err := h.userID(ctx)
	if err != nil {
		return nil, err
	}

	habits, err := h.habitService.ListHabits(ctx, userID, req.OwnerID)
	if err != nil {
		h.logger.Error("Habit handler: list habits failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Debug("Habit handler: habits listed",
		"user_id", userID,
		"count", len(habits))

	return &rpc.ListHabitsResponse{Habits: rpc.NewHabits(habits)}, nil
}

// CreateHabit stores a new habit for the caller.
func (h *Habit) CreateHabit(ctx context.Context, req *rpc.CreateHabitRequest) (*rpc.CreateHabitResponse, error) {
	userID, err := h.userID(ctx)
	if err != nil {
		return nil, err
	}

	habit, err := h.habitService.CreateHabit(ctx, userID, model.CreateHabitParams{
		OwnerID:  req.OwnerID,
		Name:     req.Name,
		Position: req.Position,
	})
	if err != nil {
		h.logger.Error("Habit handler: create habit failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &rpc.CreateHabitResponse{Habit: rpc.NewHabit(habit)}, nil
}

// UpdateHabit applies a partial update.
func (h *Habit) UpdateHabit(ctx context.Context, req *rpc.UpdateHabitRequest) (*rpc.Empty, error) {
	userID, err := h.userID(ctx)
	if err != nil {
		return nil, err
	}
	if req.ID == uuid.Nil {
		return nil, status.Error(codes.InvalidArgument, "habit id is required")
	}

	if err := h.habitService.UpdateHabit(ctx, userID, req.ID, req.Patch()); err != nil {
		h.logger.Error("Habit handler: update habit failed",
			"user_id", userID,
			"habit_id", req.ID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &rpc.Empty{}, nil
}

// DeleteHabit removes a habit permanently.
func (h *Habit) DeleteHabit(ctx context.Context, req *rpc.DeleteHabitRequest) (*rpc.Empty, error) {
	userID, err := h.userID(ctx)
	if err != nil {
		return nil, err
	}
	if req.ID == uuid.Nil {
		return nil, status.Error(codes.InvalidArgument, "habit id is required")
	}

	if err := h.habitService.DeleteHabit(ctx, userID, req.ID); err != nil {
		h.logger.Error("Habit handler: delete habit failed",
			"user_id", userID,
			"habit_id", req.ID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &rpc.Empty{}, nil
}

func (h *Habit) userID(ctx context.Context) (uuid.UUID, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "user ID not found in context")
	}
	return userID, nil
}
