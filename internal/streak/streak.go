// Package streak computes consecutive-day completion counts from day keys.
package streak

import (
	"sort"

	"github.com/ZazenCloud/Habit-Tracker/internal/daykey"
)

// Compute returns the number of consecutive days ending at today that are
// present in completed. It is 0 when today itself is not completed.
func Compute(completed []string, today string) int {
	set := toSet(completed)
	if _, ok := set[today]; !ok {
		return 0
	}

	count := 0
	key := today
	for {
		if _, ok := set[key]; !ok {
			return count
		}
		count++

		prev, err := daykey.Previous(key)
		if err != nil {
			return count
		}
		key = prev
	}
}

// Longest returns the longest run of consecutive days anywhere in completed.
// Malformed keys are ignored.
func Longest(completed []string) int {
	set := toSet(completed)
	keys := make([]string, 0, len(set))
	for k := range set {
		if daykey.Valid(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	best, run := 0, 0
	prev := ""
	for _, k := range keys {
		if prev != "" {
			if next, err := daykey.Shift(prev, 1); err == nil && next == k {
				run++
			} else {
				run = 1
			}
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = k
	}
	return best
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
