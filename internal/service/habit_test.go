package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ZazenCloud/Habit-Tracker/internal/mocks"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
	"github.com/ZazenCloud/Habit-Tracker/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestHabit_ListHabits(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("own habits", func(t *testing.T) {
		store := mocks.NewHabitStore(t)
		want := []model.Habit{{ID: uuid.New(), OwnerID: owner, Name: "Read"}}
		store.On("GetByOwner", ctx, owner).Return(want, nil).Once()

		got, err := NewHabit(store, testutil.MakeNoopLogger()).ListHabits(ctx, owner, owner)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("nil owner means caller", func(t *testing.T) {
		store := mocks.NewHabitStore(t)
		store.On("GetByOwner", ctx, owner).Return(nil, nil).Once()

		got, err := NewHabit(store, testutil.MakeNoopLogger()).ListHabits(ctx, owner, uuid.Nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("other owner", func(t *testing.T) {
		store := mocks.NewHabitStore(t)

		_, err := NewHabit(store, testutil.MakeNoopLogger()).ListHabits(ctx, owner, uuid.New())
		require.ErrorIs(t, err, model.ErrPermissionDenied)
	})

	t.Run("store error", func(t *testing.T) {
		store := mocks.NewHabitStore(t)
		store.On("GetByOwner", ctx, owner).Return(nil, assert.AnError).Once()

		_, err := NewHabit(store, testutil.MakeNoopLogger()).ListHabits(ctx, owner, owner)
		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestHabit_CreateHabit(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("success", func(t *testing.T) {
		store := mocks.NewHabitStore(t)
		store.On("Create", ctx, mock.MatchedBy(func(h model.Habit) bool {
			return h.ID != uuid.Nil &&
				h.OwnerID == owner &&
				h.Name == "Read" &&
				h.Streak == 0 &&
				len(h.CompletedDates) == 0 &&
				h.Position == 3 &&
				!h.CreatedAt.IsZero()
		})).Return(func(_ context.Context, h model.Habit) model.Habit { return h }, nil).Once()

		h, err := NewHabit(store, testutil.MakeNoopLogger()).CreateHabit(ctx, owner, model.CreateHabitParams{
			OwnerID:  owner,
			Name:     "  Read ",
			Position: 3,
		})
		require.NoError(t, err)
		assert.Equal(t, "Read", h.Name)
	})

	tests := []struct {
		name    string
		params  model.CreateHabitParams
		wantErr error
	}{
		{name: "blank name", params: model.CreateHabitParams{OwnerID: owner, Name: "   "}, wantErr: model.ErrValidation},
		{name: "negative position", params: model.CreateHabitParams{OwnerID: owner, Name: "Run", Position: -1}, wantErr: model.ErrValidation},
		{name: "other owner", params: model.CreateHabitParams{OwnerID: uuid.New(), Name: "Run"}, wantErr: model.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewHabitStore(t)
			_, err := NewHabit(store, testutil.MakeNoopLogger()).CreateHabit(ctx, owner, tt.params)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHabit_UpdateHabit(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	id := uuid.New()

	t.Run("normalizes dates", func(t *testing.T) {
		store := mocks.NewHabitStore(t)
		store.On("Update", ctx, owner, id, model.HabitPatch{
			CompletedDates: ptr([]string{"2024-01-01", "2024-01-02"}),
			Streak:         ptr(2),
		}).Return(nil).Once()

		err := NewHabit(store, testutil.MakeNoopLogger()).UpdateHabit(ctx, owner, id, model.HabitPatch{
			CompletedDates: ptr([]string{"2024-01-02", "2024-01-01"}),
			Streak:         ptr(2),
		})
		require.NoError(t, err)
	})

	t.Run("invalid patch never reaches store", func(t *testing.T) {
		store := mocks.NewHabitStore(t)
		err := NewHabit(store, testutil.MakeNoopLogger()).UpdateHabit(ctx, owner, id, model.HabitPatch{
			CompletedDates: ptr([]string{"2024-13-01"}),
		})
		require.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("not found", func(t *testing.T) {
		store := mocks.NewHabitStore(t)
		store.On("Update", ctx, owner, id, mock.Anything).Return(model.ErrNotFound).Once()

		err := NewHabit(store, testutil.MakeNoopLogger()).UpdateHabit(ctx, owner, id, model.HabitPatch{Position: ptr(1)})
		require.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestHabit_DeleteHabit(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	id := uuid.New()

	store := mocks.NewHabitStore(t)
	store.On("Delete", ctx, owner, id).Return(nil).Once()
	require.NoError(t, NewHabit(store, testutil.MakeNoopLogger()).DeleteHabit(ctx, owner, id))

	store.On("Delete", ctx, owner, id).Return(model.ErrNotFound).Once()
	require.ErrorIs(t, NewHabit(store, testutil.MakeNoopLogger()).DeleteHabit(ctx, owner, id), model.ErrNotFound)
}
