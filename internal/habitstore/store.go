// Package habitstore keeps the signed-in user's habits in memory and
// synchronizes every mutation with the remote habits collection.
package habitstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ZazenCloud/Habit-Tracker/internal/daykey"
	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
	"github.com/ZazenCloud/Habit-Tracker/internal/streak"
)

// reorderConcurrency bounds parallel position updates.
const reorderConcurrency = 8

// Collection is the remote habits collection.
type Collection interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Habit, error)
	Create(ctx context.Context, params model.CreateHabitParams) (model.Habit, error)
	Update(ctx context.Context, id uuid.UUID, patch model.HabitPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// IdentitySource reports the signed-in user, nil when signed out.
type IdentitySource interface {
	Identity() *model.Identity
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the function used to read the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLocation sets the time zone whose calendar days are used as day keys.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		s.loc = loc
	}
}

// Store is the in-memory habit list of one signed-in user.
type Store struct {
	collection Collection
	identity   IdentitySource
	logger     *logger.Logger
	now        func() time.Time
	loc        *time.Location

	mu     sync.RWMutex
	owner  uuid.UUID
	habits []model.Habit
	// loaded reports whether habits mirrors the remote list of owner.
	loaded bool

	habitLocks keyedMutex
}

// New creates a Store.
func New(collection Collection, identity IdentitySource, logger *logger.Logger, opts ...Option) *Store {
	s := &Store{
		collection: collection,
		identity:   identity,
		logger:     logger,
		now:        time.Now,
		loc:        time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the day key of the current local calendar day.
func (s *Store) Today() string {
	return daykey.Today(s.now(), s.loc)
}

// Habits returns a copy of the loaded habits in position order.
// It is empty while nobody is signed in.
func (s *Store) Habits() []model.Habit {
	id := s.identity.Identity()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == nil || id.UserID != s.owner {
		return []model.Habit{}
	}
	return cloneAll(s.habits)
}

// Load replaces the local list with the owner's habits ordered by position.
// On failure the local list is emptied and the error wraps ErrRemote.
func (s *Store) Load(ctx context.Context, ownerID uuid.UUID) ([]model.Habit, error) {
	if err := s.checkOwner(ownerID); err != nil {
		return []model.Habit{}, err
	}

	habits, err := s.collection.List(ctx, ownerID)
	if err != nil {
		s.logger.Error("HabitStore: failed to load habits",
			"owner_id", ownerID,
			"error", err)

		s.mu.Lock()
		s.owner, s.habits, s.loaded = ownerID, nil, false
		s.mu.Unlock()
		return []model.Habit{}, fmt.Errorf("%w: failed to load habits: %w", ErrRemote, err)
	}

	// The identity may have changed while the request was in flight.
	if err := s.checkOwner(ownerID); err != nil {
		return []model.Habit{}, err
	}

	sorted := make([]model.Habit, 0, len(habits))
	for _, h := range habits {
		if h.OwnerID != ownerID {
			s.logger.Warn("HabitStore: dropping habit of another owner",
				"habit_id", h.ID,
				"owner_id", h.OwnerID)
			continue
		}
		sorted = append(sorted, h.Clone())
	}
	sortByPosition(sorted)

	s.mu.Lock()
	s.owner, s.habits, s.loaded = ownerID, sorted, true
	s.mu.Unlock()

	s.logger.Debug("HabitStore: habits loaded",
		"owner_id", ownerID,
		"count", len(sorted))

	return cloneAll(sorted), nil
}

// Add creates a habit placed after every existing one and refreshes the list.
// When the local list is not loaded for ownerID it is fetched first.
// The returned habit is created even when the refresh fails.
func (s *Store) Add(ctx context.Context, ownerID uuid.UUID, name string) (model.Habit, error) {
	name, err := model.NormalizeHabitName(name)
	if err != nil {
		return model.Habit{}, fmt.Errorf("%w: %w", ErrInvalidName, err)
	}
	if err := s.checkOwner(ownerID); err != nil {
		return model.Habit{}, err
	}

	s.mu.RLock()
	current := s.loaded && s.owner == ownerID
	position := nextPosition(s.habits)
	s.mu.RUnlock()

	if !current {
		habits, err := s.Load(ctx, ownerID)
		if err != nil {
			return model.Habit{}, err
		}
		position = nextPosition(habits)
	}

	created, err := s.collection.Create(ctx, model.CreateHabitParams{
		OwnerID:  ownerID,
		Name:     name,
		Position: position,
	})
	if err != nil {
		s.logger.Error("HabitStore: failed to add habit",
			"owner_id", ownerID,
			"error", err)
		return model.Habit{}, fmt.Errorf("%w: failed to add habit: %w", ErrRemote, err)
	}

	if _, err := s.Load(ctx, ownerID); err != nil {
		return created.Clone(), err
	}
	return created.Clone(), nil
}

// Delete removes the habit remotely and then from the local list.
// Positions of the remaining habits are left as they are.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := s.habitLocks.Lock(id)
	defer unlock()

	if _, err := s.find(id); err != nil {
		return err
	}

	if err := s.collection.Delete(ctx, id); err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.logger.Error("HabitStore: failed to delete habit",
				"habit_id", id,
				"error", err)
			return fmt.Errorf("%w: failed to delete habit: %w", ErrRemote, err)
		}
		s.logger.Warn("HabitStore: habit already deleted remotely", "habit_id", id)
	}

	s.mu.Lock()
	s.habits = slices.DeleteFunc(s.habits, func(h model.Habit) bool { return h.ID == id })
	s.mu.Unlock()

	return nil
}

// Toggle flips completion of the habit on key and recomputes its streak
// relative to today, whatever day was toggled. Toggles of one habit run one
// at a time so concurrent calls cannot drop each other's edits.
func (s *Store) Toggle(ctx context.Context, id uuid.UUID, key string) (model.Habit, error) {
	if !daykey.Valid(key) {
		return model.Habit{}, fmt.Errorf("%w: %q", ErrInvalidDayKey, key)
	}

	unlock := s.habitLocks.Lock(id)
	defer unlock()

	habit, err := s.find(id)
	if err != nil {
		return model.Habit{}, err
	}

	dates := toggled(habit.CompletedDates, key)
	count := streak.Compute(dates, s.Today())

	err = s.collection.Update(ctx, id, model.HabitPatch{
		CompletedDates: &dates,
		Streak:         &count,
	})
	if err != nil {
		s.logger.Error("HabitStore: failed to toggle habit",
			"habit_id", id,
			"day", key,
			"error", err)
		return model.Habit{}, fmt.Errorf("%w: failed to toggle habit: %w", ErrRemote, err)
	}

	habit.CompletedDates = dates
	habit.Streak = count

	s.mu.Lock()
	if i := slices.IndexFunc(s.habits, func(h model.Habit) bool { return h.ID == id }); i >= 0 {
		s.habits[i].CompletedDates = slices.Clone(dates)
		s.habits[i].Streak = count
		habit.Position = s.habits[i].Position
	}
	s.mu.Unlock()

	return habit.Clone(), nil
}

// Reorder applies ordered locally at once, with each position set to its
// index, and then persists the positions that changed. If any update fails,
// the list is fetched again; if that fails too, the previous order is restored.
func (s *Store) Reorder(ctx context.Context, ordered []uuid.UUID) error {
	id := s.identity.Identity()
	if id == nil {
		return ErrNoIdentity
	}

	s.mu.Lock()
	if s.owner != id.UserID {
		s.mu.Unlock()
		return ErrNoIdentity
	}
	if !isPermutation(s.habits, ordered) {
		s.mu.Unlock()
		return ErrInvalidOrder
	}

	snapshot := cloneAll(s.habits)
	byID := make(map[uuid.UUID]model.Habit, len(s.habits))
	for _, h := range s.habits {
		byID[h.ID] = h
	}

	next := make([]model.Habit, 0, len(ordered))
	var changed []model.Habit
	for i, habitID := range ordered {
		h := byID[habitID].Clone()
		if h.Position != i {
			h.Position = i
			changed = append(changed, h)
		}
		next = append(next, h)
	}
	s.habits = next
	s.mu.Unlock()

	if len(changed) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reorderConcurrency)
	for _, h := range changed {
		g.Go(func() error {
			position := h.Position
			if err := s.collection.Update(gctx, h.ID, model.HabitPatch{Position: &position}); err != nil {
				return fmt.Errorf("failed to move habit %s: %w", h.ID, err)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		return nil
	}

	s.logger.Error("HabitStore: failed to reorder habits, reverting",
		"owner_id", id.UserID,
		"error", err)

	if _, loadErr := s.Load(ctx, id.UserID); loadErr != nil {
		// The restored snapshot is unconfirmed; loaded stays false.
		s.mu.Lock()
		if s.owner == id.UserID {
			s.habits = snapshot
		}
		s.mu.Unlock()
	}

	return fmt.Errorf("%w: failed to reorder habits: %w", ErrRemote, err)
}

// HandleIdentity switches the store to a new identity. Nil clears the list;
// otherwise the habits of the new user are loaded.
func (s *Store) HandleIdentity(ctx context.Context, id *model.Identity) error {
	s.mu.Lock()
	s.owner, s.habits, s.loaded = uuid.Nil, nil, false
	s.mu.Unlock()

	if id == nil {
		return nil
	}

	_, err := s.Load(ctx, id.UserID)
	return err
}

func (s *Store) checkOwner(ownerID uuid.UUID) error {
	id := s.identity.Identity()
	if id == nil {
		return ErrNoIdentity
	}
	if id.UserID != ownerID {
		return fmt.Errorf("%w: habits of another user", model.ErrPermissionDenied)
	}
	return nil
}

// find returns a copy of the loaded habit with id.
func (s *Store) find(id uuid.UUID) (model.Habit, error) {
	identity := s.identity.Identity()
	if identity == nil {
		return model.Habit{}, ErrNoIdentity
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.owner != identity.UserID {
		return model.Habit{}, ErrNoIdentity
	}
	for _, h := range s.habits {
		if h.ID == id {
			return h.Clone(), nil
		}
	}
	return model.Habit{}, ErrHabitNotFound
}

func toggled(dates []string, key string) []string {
	out := slices.Clone(dates)
	if i := slices.Index(out, key); i >= 0 {
		out = slices.Delete(out, i, i+1)
	} else {
		out = append(out, key)
	}
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return out
}

func nextPosition(habits []model.Habit) int {
	if len(habits) == 0 {
		return 0
	}
	return slices.MaxFunc(habits, func(a, b model.Habit) int { return cmp.Compare(a.Position, b.Position) }).Position + 1
}

func isPermutation(habits []model.Habit, ordered []uuid.UUID) bool {
	if len(habits) != len(ordered) {
		return false
	}
	remaining := make(map[uuid.UUID]struct{}, len(habits))
	for _, h := range habits {
		remaining[h.ID] = struct{}{}
	}
	for _, id := range ordered {
		if _, ok := remaining[id]; !ok {
			return false
		}
		delete(remaining, id)
	}
	return true
}

func sortByPosition(habits []model.Habit) {
	slices.SortStableFunc(habits, func(a, b model.Habit) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

func cloneAll(habits []model.Habit) []model.Habit {
	out := make([]model.Habit, len(habits))
	for i, h := range habits {
		out[i] = h.Clone()
	}
	return out
}
