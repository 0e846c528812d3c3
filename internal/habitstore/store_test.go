package habitstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZazenCloud/Habit-Tracker/internal/model"
	"github.com/ZazenCloud/Habit-Tracker/internal/testutil"
)

type fakeIdentity struct {
	mu sync.Mutex
	id *model.Identity
}

func (f *fakeIdentity) Identity() *model.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

func (f *fakeIdentity) set(id *model.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.id = id
}

// fakeCollection is an in-memory remote collection with failure injection.
type fakeCollection struct {
	mu      sync.Mutex
	habits  map[uuid.UUID]model.Habit
	creates int

	listErr   error
	createErr error
	deleteErr error
	updateErr func(id uuid.UUID, patch model.HabitPatch) error
	delay     time.Duration
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{habits: make(map[uuid.UUID]model.Habit)}
}

func (f *fakeCollection) List(_ context.Context, ownerID uuid.UUID) ([]model.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Habit
	for _, h := range f.habits {
		if h.OwnerID == ownerID {
			out = append(out, h.Clone())
		}
	}
	return out, nil
}

func (f *fakeCollection) Create(_ context.Context, params model.CreateHabitParams) (model.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return model.Habit{}, f.createErr
	}
	h := model.Habit{
		ID:             uuid.New(),
		OwnerID:        params.OwnerID,
		Name:           params.Name,
		CreatedAt:      time.Now().UTC().Add(time.Duration(f.creates) * time.Millisecond),
		CompletedDates: []string{},
		Position:       params.Position,
	}
	f.habits[h.ID] = h
	return h.Clone(), nil
}

func (f *fakeCollection) Update(_ context.Context, id uuid.UUID, patch model.HabitPatch) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		if err := f.updateErr(id, patch); err != nil {
			return err
		}
	}
	h, ok := f.habits[id]
	if !ok {
		return model.ErrNotFound
	}
	if patch.CompletedDates != nil {
		h.CompletedDates = append([]string{}, *patch.CompletedDates...)
	}
	if patch.Streak != nil {
		h.Streak = *patch.Streak
	}
	if patch.Position != nil {
		h.Position = *patch.Position
	}
	f.habits[id] = h
	return nil
}

func (f *fakeCollection) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.habits[id]; !ok {
		return model.ErrNotFound
	}
	delete(f.habits, id)
	return nil
}

func (f *fakeCollection) get(id uuid.UUID) model.Habit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.habits[id].Clone()
}

func (f *fakeCollection) seed(h model.Habit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h.CompletedDates == nil {
		h.CompletedDates = []string{}
	}
	f.habits[h.ID] = h
}

type storeFixture struct {
	store      *Store
	collection *fakeCollection
	identity   *fakeIdentity
	clock      *testutil.Clock
	owner      uuid.UUID
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()
	owner := uuid.New()
	f := &storeFixture{
		collection: newFakeCollection(),
		identity:   &fakeIdentity{id: &model.Identity{UserID: owner, DisplayName: "Ann"}},
		clock:      testutil.NewClock(time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)),
		owner:      owner,
	}
	f.store = New(f.collection, f.identity, testutil.MakeNoopLogger(),
		WithClock(f.clock.Now),
		WithLocation(time.UTC),
	)
	return f
}

func (f *storeFixture) add(t *testing.T, names ...string) []model.Habit {
	t.Helper()
	for _, n := range names {
		_, err := f.store.Add(context.Background(), f.owner, n)
		require.NoError(t, err)
	}
	return f.store.Habits()
}

func TestStore_LoadEmpty(t *testing.T) {
	f := newStoreFixture(t)

	habits, err := f.store.Load(context.Background(), f.owner)
	require.NoError(t, err)
	assert.NotNil(t, habits)
	assert.Empty(t, habits)
}

func TestStore_AddThenLoad(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	created, err := f.store.Add(ctx, f.owner, "  Read ")
	require.NoError(t, err)
	assert.Equal(t, "Read", created.Name)

	habits, err := f.store.Load(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "Read", habits[0].Name)
	assert.Equal(t, 0, habits[0].Streak)
	assert.Empty(t, habits[0].CompletedDates)
	assert.Equal(t, 0, habits[0].Position)
	assert.Equal(t, f.owner, habits[0].OwnerID)
}

func TestStore_AddPositionsAfterMax(t *testing.T) {
	f := newStoreFixture(t)
	f.collection.seed(model.Habit{ID: uuid.New(), OwnerID: f.owner, Name: "Old", Position: 7})
	_, err := f.store.Load(context.Background(), f.owner)
	require.NoError(t, err)

	created, err := f.store.Add(context.Background(), f.owner, "New")
	require.NoError(t, err)
	assert.Equal(t, 8, created.Position)

	habits := f.store.Habits()
	require.Len(t, habits, 2)
	assert.Equal(t, "Old", habits[0].Name)
	assert.Equal(t, "New", habits[1].Name)
}

func TestStore_AddFetchesListWhenNotLoaded(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, f *storeFixture)
	}{
		{
			name:    "before any load",
			prepare: func(*testing.T, *storeFixture) {},
		},
		{
			name: "after a failed load",
			prepare: func(t *testing.T, f *storeFixture) {
				f.collection.listErr = assert.AnError
				_, err := f.store.Load(context.Background(), f.owner)
				require.ErrorIs(t, err, ErrRemote)
				f.collection.listErr = nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStoreFixture(t)
			f.collection.seed(model.Habit{ID: uuid.New(), OwnerID: f.owner, Name: "A", Position: 0})
			f.collection.seed(model.Habit{ID: uuid.New(), OwnerID: f.owner, Name: "B", Position: 1})
			tt.prepare(t, f)

			created, err := f.store.Add(context.Background(), f.owner, "C")
			require.NoError(t, err)
			assert.Equal(t, 2, created.Position)

			habits := f.store.Habits()
			require.Len(t, habits, 3)
			for i, h := range habits {
				assert.Equal(t, i, h.Position)
			}
			assert.Equal(t, "C", habits[2].Name)
		})
	}
}

func TestStore_AddFailsWhenListCannotBeFetched(t *testing.T) {
	f := newStoreFixture(t)
	f.collection.seed(model.Habit{ID: uuid.New(), OwnerID: f.owner, Name: "A", Position: 0})
	f.collection.listErr = assert.AnError

	_, err := f.store.Add(context.Background(), f.owner, "C")
	assert.ErrorIs(t, err, ErrRemote)
	assert.Equal(t, 0, f.collection.creates)
}

func TestStore_AddRejectsBlankName(t *testing.T) {
	f := newStoreFixture(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := f.store.Add(context.Background(), f.owner, name)
		assert.ErrorIs(t, err, ErrInvalidName)
		assert.ErrorIs(t, err, model.ErrValidation)
	}
	assert.Equal(t, 0, f.collection.creates)
}

func TestStore_AddRemoteFailure(t *testing.T) {
	f := newStoreFixture(t)
	f.collection.createErr = assert.AnError

	_, err := f.store.Add(context.Background(), f.owner, "Read")
	assert.ErrorIs(t, err, ErrRemote)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, f.store.Habits())
}

func TestStore_WithoutIdentity(t *testing.T) {
	f := newStoreFixture(t)
	habits := f.add(t, "Read")
	id := habits[0].ID
	ctx := context.Background()

	f.identity.set(nil)

	assert.Empty(t, f.store.Habits())

	_, err := f.store.Load(ctx, f.owner)
	assert.ErrorIs(t, err, ErrNoIdentity)
	_, err = f.store.Add(ctx, f.owner, "Walk")
	assert.ErrorIs(t, err, ErrNoIdentity)
	_, err = f.store.Toggle(ctx, id, "2024-01-03")
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.ErrorIs(t, f.store.Delete(ctx, id), ErrNoIdentity)
	assert.ErrorIs(t, f.store.Reorder(ctx, []uuid.UUID{id}), ErrNoIdentity)
	_, err = f.store.History(7)
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestStore_OtherOwnerIsRefused(t *testing.T) {
	f := newStoreFixture(t)

	_, err := f.store.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	_, err = f.store.Add(context.Background(), uuid.New(), "Read")
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestStore_LoadFailureEmptiesList(t *testing.T) {
	f := newStoreFixture(t)
	f.add(t, "Read", "Walk")

	f.collection.mu.Lock()
	f.collection.listErr = assert.AnError
	f.collection.mu.Unlock()

	habits, err := f.store.Load(context.Background(), f.owner)
	assert.ErrorIs(t, err, ErrRemote)
	assert.Empty(t, habits)
	assert.Empty(t, f.store.Habits())
}

func TestStore_LoadOrdersByPosition(t *testing.T) {
	f := newStoreFixture(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.collection.seed(model.Habit{ID: uuid.New(), OwnerID: f.owner, Name: "c", Position: 5, CreatedAt: base})
	f.collection.seed(model.Habit{ID: uuid.New(), OwnerID: f.owner, Name: "a", Position: 0, CreatedAt: base})
	f.collection.seed(model.Habit{ID: uuid.New(), OwnerID: f.owner, Name: "b2", Position: 2, CreatedAt: base.Add(time.Hour)})
	f.collection.seed(model.Habit{ID: uuid.New(), OwnerID: f.owner, Name: "b1", Position: 2, CreatedAt: base})
	f.collection.seed(model.Habit{ID: uuid.New(), OwnerID: uuid.New(), Name: "foreign", Position: 1})

	habits, err := f.store.Load(context.Background(), f.owner)
	require.NoError(t, err)

	var names []string
	for _, h := range habits {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, names)
}

func TestStore_ToggleTwiceRestores(t *testing.T) {
	f := newStoreFixture(t)
	id := uuid.New()
	f.collection.seed(model.Habit{ID: id, OwnerID: f.owner, Name: "Read", CompletedDates: []string{"2024-01-02", "2024-01-03"}, Streak: 2})
	_, err := f.store.Load(context.Background(), f.owner)
	require.NoError(t, err)
	before := f.store.Habits()[0]

	for _, key := range []string{"2024-01-03", "2024-01-02", "2023-12-25", "2024-01-10"} {
		_, err := f.store.Toggle(context.Background(), id, key)
		require.NoError(t, err)
		after, err := f.store.Toggle(context.Background(), id, key)
		require.NoError(t, err)

		assert.Equal(t, before.CompletedDates, after.CompletedDates, key)
		assert.Equal(t, before.Streak, after.Streak, key)
	}
}

func TestStore_ToggleStreakIsRelativeToToday(t *testing.T) {
	f := newStoreFixture(t)
	id := uuid.New()
	f.collection.seed(model.Habit{ID: id, OwnerID: f.owner, Name: "Read", CompletedDates: []string{"2024-01-03"}, Streak: 1})
	_, err := f.store.Load(context.Background(), f.owner)
	require.NoError(t, err)

	h, err := f.store.Toggle(context.Background(), id, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 1, h.Streak)
	assert.Equal(t, []string{"2024-01-01", "2024-01-03"}, h.CompletedDates)

	h, err = f.store.Toggle(context.Background(), id, "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, 3, h.Streak)

	// A past day completed while today is not yields no streak.
	h, err = f.store.Toggle(context.Background(), id, "2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, 0, h.Streak)

	remote := f.collection.get(id)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, remote.CompletedDates)
	assert.Equal(t, 0, remote.Streak)
}

func TestStore_ToggleUsesLocalCalendarDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	owner := uuid.New()
	collection := newFakeCollection()
	id := uuid.New()
	collection.seed(model.Habit{ID: id, OwnerID: owner, Name: "Read"})

	// 23:30 in New York is already the next day in UTC.
	now := time.Date(2024, 1, 3, 23, 30, 0, 0, loc)
	store := New(collection, &fakeIdentity{id: &model.Identity{UserID: owner}}, testutil.MakeNoopLogger(),
		WithClock(func() time.Time { return now.UTC() }),
		WithLocation(loc),
	)
	_, err = store.Load(context.Background(), owner)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-03", store.Today())
	h, err := store.Toggle(context.Background(), id, "2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, 1, h.Streak)
}

func TestStore_ToggleLeavesOtherHabitsAlone(t *testing.T) {
	f := newStoreFixture(t)
	habits := f.add(t, "Read", "Walk")
	other := habits[1]

	toggled, err := f.store.Toggle(context.Background(), habits[0].ID, "2024-01-03")
	require.NoError(t, err)

	// Mutating the returned value must not reach the store.
	toggled.CompletedDates[0] = "1999-01-01"

	after := f.store.Habits()
	assert.Equal(t, []string{"2024-01-03"}, after[0].CompletedDates)
	assert.Equal(t, 1, after[0].Streak)
	assert.Equal(t, other, after[1])
}

func TestStore_ToggleFailureKeepsState(t *testing.T) {
	f := newStoreFixture(t)
	habits := f.add(t, "Read")
	f.collection.updateErr = func(uuid.UUID, model.HabitPatch) error { return assert.AnError }

	_, err := f.store.Toggle(context.Background(), habits[0].ID, "2024-01-03")
	assert.ErrorIs(t, err, ErrRemote)
	assert.Equal(t, habits, f.store.Habits())
}

func TestStore_ToggleValidation(t *testing.T) {
	f := newStoreFixture(t)
	f.add(t, "Read")

	_, err := f.store.Toggle(context.Background(), uuid.New(), "2024-01-03")
	assert.ErrorIs(t, err, ErrHabitNotFound)

	_, err = f.store.Toggle(context.Background(), f.store.Habits()[0].ID, "2024-13-01")
	assert.ErrorIs(t, err, ErrInvalidDayKey)
}

func TestStore_ConcurrentTogglesKeepEveryEdit(t *testing.T) {
	f := newStoreFixture(t)
	habits := f.add(t, "Read")
	id := habits[0].ID
	f.collection.delay = time.Millisecond

	const days = 30
	var wg sync.WaitGroup
	for i := 0; i < days; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.store.Toggle(context.Background(), id, fmt.Sprintf("2023-12-%02d", i+1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, f.collection.get(id).CompletedDates, days)
	assert.Len(t, f.store.Habits()[0].CompletedDates, days)
}

func TestStore_ReorderAssignsIndexPositions(t *testing.T) {
	f := newStoreFixture(t)
	habits := f.add(t, "a", "b", "c", "d")

	order := []uuid.UUID{habits[3].ID, habits[1].ID, habits[0].ID, habits[2].ID}
	require.NoError(t, f.store.Reorder(context.Background(), order))

	local := f.store.Habits()
	for i, h := range local {
		assert.Equal(t, order[i], h.ID)
		assert.Equal(t, i, h.Position)
		assert.Equal(t, i, f.collection.get(h.ID).Position)
	}

	reloaded, err := f.store.Load(context.Background(), f.owner)
	require.NoError(t, err)
	assert.Equal(t, local, reloaded)
}

func TestStore_ReorderIsAppliedBeforeRemoteConfirms(t *testing.T) {
	f := newStoreFixture(t)
	habits := f.add(t, "a", "b")

	release := make(chan struct{})
	started := make(chan struct{}, 2)
	f.collection.updateErr = func(uuid.UUID, model.HabitPatch) error {
		started <- struct{}{}
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- f.store.Reorder(context.Background(), []uuid.UUID{habits[1].ID, habits[0].ID}) }()

	<-started
	local := f.store.Habits()
	assert.Equal(t, habits[1].ID, local[0].ID)
	assert.Equal(t, habits[0].ID, local[1].ID)

	close(release)
	require.NoError(t, <-done)
}

func TestStore_ReorderFailureRefetches(t *testing.T) {
	f := newStoreFixture(t)
	habits := f.add(t, "a", "b", "c")
	failing := habits[2].ID
	f.collection.updateErr = func(id uuid.UUID, _ model.HabitPatch) error {
		if id == failing {
			return assert.AnError
		}
		return nil
	}

	err := f.store.Reorder(context.Background(), []uuid.UUID{habits[2].ID, habits[1].ID, habits[0].ID})
	assert.ErrorIs(t, err, ErrRemote)

	// Local state mirrors the remote collection, not the speculative order.
	remote, listErr := f.collection.List(context.Background(), f.owner)
	require.NoError(t, listErr)
	sortByPosition(remote)
	assert.Equal(t, remote, f.store.Habits())
}

func TestStore_ReorderFailureRestoresSnapshotWhenRefetchFails(t *testing.T) {
	f := newStoreFixture(t)
	habits := f.add(t, "a", "b")
	f.collection.updateErr = func(uuid.UUID, model.HabitPatch) error {
		f.collection.listErr = assert.AnError
		return assert.AnError
	}

	err := f.store.Reorder(context.Background(), []uuid.UUID{habits[1].ID, habits[0].ID})
	assert.ErrorIs(t, err, ErrRemote)
	assert.Equal(t, habits, f.store.Habits())
}

func TestStore_ReorderRejectsBadOrder(t *testing.T) {
	f := newStoreFixture(t)
	habits := f.add(t, "a", "b")

	tests := []struct {
		name  string
		order []uuid.UUID
	}{
		{name: "missing habit", order: []uuid.UUID{habits[0].ID}},
		{name: "duplicate", order: []uuid.UUID{habits[0].ID, habits[0].ID}},
		{name: "unknown id", order: []uuid.UUID{habits[0].ID, uuid.New()}},
		{name: "extra id", order: []uuid.UUID{habits[0].ID, habits[1].ID, uuid.New()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, f.store.Reorder(context.Background(), tt.order), ErrInvalidOrder)
			assert.Equal(t, habits, f.store.Habits())
		})
	}
}

func TestStore_DeleteThenLoad(t *testing.T) {
	f := newStoreFixture(t)
	habits := f.add(t, "a", "b", "c")
	ctx := context.Background()

	require.NoError(t, f.store.Delete(ctx, habits[1].ID))

	for _, h := range f.store.Habits() {
		assert.NotEqual(t, habits[1].ID, h.ID)
	}
	reloaded, err := f.store.Load(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, reloaded, 2)
	assert.Equal(t, []int{0, 2}, []int{reloaded[0].Position, reloaded[1].Position})

	// The next reorder compacts the gap.
	require.NoError(t, f.store.Reorder(ctx, []uuid.UUID{reloaded[0].ID, reloaded[1].ID}))
	assert.Equal(t, 1, f.collection.get(reloaded[1].ID).Position)
}

func TestStore_DeleteErrors(t *testing.T) {
	f := newStoreFixture(t)
	habits := f.add(t, "a")
	ctx := context.Background()

	assert.ErrorIs(t, f.store.Delete(ctx, uuid.New()), ErrHabitNotFound)

	f.collection.deleteErr = assert.AnError
	assert.ErrorIs(t, f.store.Delete(ctx, habits[0].ID), ErrRemote)
	assert.Len(t, f.store.Habits(), 1)

	f.collection.deleteErr = model.ErrNotFound
	assert.NoError(t, f.store.Delete(ctx, habits[0].ID))
	assert.Empty(t, f.store.Habits())
}

func TestStore_HandleIdentity(t *testing.T) {
	f := newStoreFixture(t)
	f.add(t, "Read")
	ctx := context.Background()

	f.identity.set(nil)
	require.NoError(t, f.store.HandleIdentity(ctx, nil))
	assert.Empty(t, f.store.Habits())

	other := &model.Identity{UserID: uuid.New()}
	f.collection.seed(model.Habit{ID: uuid.New(), OwnerID: other.UserID, Name: "Swim"})
	f.identity.set(other)
	require.NoError(t, f.store.HandleIdentity(ctx, other))

	habits := f.store.Habits()
	require.Len(t, habits, 1)
	assert.Equal(t, "Swim", habits[0].Name)
	assert.Equal(t, other.UserID, habits[0].OwnerID)
}

func TestStore_History(t *testing.T) {
	f := newStoreFixture(t)
	id := uuid.New()
	f.collection.seed(model.Habit{
		ID:             id,
		OwnerID:        f.owner,
		Name:           "Read",
		CompletedDates: []string{"2023-12-20", "2023-12-21", "2023-12-22", "2024-01-01", "2024-01-03"},
		Streak:         1,
	})
	_, err := f.store.Load(context.Background(), f.owner)
	require.NoError(t, err)

	history, err := f.store.History(3)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, []Day{
		{Key: "2024-01-03", Done: true},
		{Key: "2024-01-02", Done: false},
		{Key: "2024-01-01", Done: true},
	}, history[0].Days)
	assert.Equal(t, 3, history[0].Longest)

	_, err = f.store.History(0)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	var k keyedMutex
	id := uuid.New()

	unlock := k.Lock(id)
	acquired := make(chan struct{})
	go func() {
		u := k.Lock(id)
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first is held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	<-acquired

	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.locks)
}
