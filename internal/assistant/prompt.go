package assistant

import (
	"fmt"
	"strings"

	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// Summary describes habits in plain text for the model. today is the local day key.
func Summary(habits []model.Habit, today string) string {
	if len(habits) == 0 {
		return "You don't have any habits tracked yet."
	}

	var b strings.Builder
	b.WriteString("Current habits:")
	for _, h := range habits {
		done := "Not completed today."
		if h.Completed(today) {
			done = "Completed today."
		}
		fmt.Fprintf(&b, "\n- %s: Current streak: %d days. %s", h.Name, h.Streak, done)
	}
	return b.String()
}

// SystemPrompt builds the system instruction for a user. An empty name is addressed as "there".
func SystemPrompt(name, summary string) string {
	if strings.TrimSpace(name) == "" {
		name = "there"
	}
	return fmt.Sprintf("You are a helpful assistant for a habit tracking app. You're speaking with %s. "+
		"Here is information about the user's current habits: %s", name, summary)
}
