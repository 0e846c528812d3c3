package habitstore

import (
	"fmt"

	"github.com/ZazenCloud/Habit-Tracker/internal/daykey"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
	"github.com/ZazenCloud/Habit-Tracker/internal/streak"
)

// Day is the completion state of one habit on one calendar day.
type Day struct {
	Key  string
	Done bool
}

// HabitHistory is the recent calendar of one habit.
type HabitHistory struct {
	Habit   model.Habit
	Days    []Day // newest first
	Longest int
}

// History returns the completion calendar of the last days days, today
// included, for every loaded habit.
func (s *Store) History(days int) ([]HabitHistory, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", model.ErrValidation)
	}
	if s.identity.Identity() == nil {
		return nil, ErrNoIdentity
	}

	keys, err := daykey.LastN(s.Today(), days)
	if err != nil {
		return nil, fmt.Errorf("failed to build history window: %w", err)
	}

	habits := s.Habits()
	out := make([]HabitHistory, 0, len(habits))
	for _, h := range habits {
		calendar := make([]Day, len(keys))
		for i, k := range keys {
			calendar[i] = Day{Key: k, Done: h.Completed(k)}
		}
		out = append(out, HabitHistory{
			Habit:   h,
			Days:    calendar,
			Longest: streak.Longest(h.CompletedDates),
		})
	}
	return out, nil
}
