package habitstore

import "errors"

var (
	// ErrNoIdentity is returned by every operation while nobody is signed in.
	ErrNoIdentity = errors.New("no signed-in user")
	// ErrInvalidName is returned by Add for blank or oversized names. The store is not contacted.
	ErrInvalidName = errors.New("invalid habit name")
	// ErrInvalidDayKey is returned by Toggle for keys that are not YYYY-MM-DD calendar days.
	ErrInvalidDayKey = errors.New("invalid day key")
	// ErrHabitNotFound is returned when the id is not in the loaded list.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrInvalidOrder is returned by Reorder when the ids are not a permutation of the loaded habits.
	ErrInvalidOrder = errors.New("order must list every loaded habit exactly once")
	// ErrRemote wraps transport and remote store failures. Operations failing with it may be retried.
	ErrRemote = errors.New("remote store request failed")
)
