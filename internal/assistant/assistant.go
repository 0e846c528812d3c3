// Package assistant chats with a language model about the user's habits.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// Apology is appended to the history when a reply cannot be generated.
const Apology = "Sorry, I encountered an error. Please try again later."

var (
	// ErrEmptyMessage is returned for blank messages. History is not touched.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrNotConfigured is returned when no model is available.
	ErrNotConfigured = errors.New("assistant is not configured")
)

// Role is the author of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of the conversation.
type Turn struct {
	Role    Role
	Content string
}

// Generator produces model replies.
type Generator interface {
	Generate(ctx context.Context, system string, turns []Turn) (string, error)
	// Stream yields partial chunks of the reply in order.
	Stream(ctx context.Context, system string, turns []Turn) iter.Seq2[string, error]
}

// HabitSource provides the habits described to the model.
type HabitSource interface {
	Habits() []model.Habit
	Today() string
}

// IdentitySource provides the signed-in user.
type IdentitySource interface {
	Identity() *model.Identity
}

// Assistant keeps one conversation. Sends are processed one at a time.
type Assistant struct {
	generator Generator
	habits    HabitSource
	identity  IdentitySource
	logger    *logger.Logger

	sendMu sync.Mutex

	mu      sync.RWMutex
	history []Turn
	loading bool
	// generation is bumped by Clear.
	generation uint64
}

// New creates an Assistant. A nil generator makes every send fail with ErrNotConfigured.
func New(generator Generator, habits HabitSource, identity IdentitySource, logger *logger.Logger) *Assistant {
	return &Assistant{
		generator: generator,
		habits:    habits,
		identity:  identity,
		logger:    logger,
	}
}

// Send asks the model for a reply to message and records both turns.
func (a *Assistant) Send(ctx context.Context, message string) (string, error) {
	return a.send(ctx, message, func(system string, turns []Turn) (string, error) {
		return a.generator.Generate(ctx, system, turns)
	})
}

// SendStream is like Send but calls onPartial with the reply accumulated so far
// after every chunk.
func (a *Assistant) SendStream(ctx context.Context, message string, onPartial func(string)) (string, error) {
	return a.send(ctx, message, func(system string, turns []Turn) (string, error) {
		var b strings.Builder
		for chunk, err := range a.generator.Stream(ctx, system, turns) {
			if err != nil {
				return "", err
			}
			if chunk == "" {
				continue
			}
			b.WriteString(chunk)
			if onPartial != nil {
				onPartial(b.String())
			}
		}
		return b.String(), nil
	})
}

func (a *Assistant) send(ctx context.Context, message string, generate func(system string, turns []Turn) (string, error)) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	a.sendMu.Lock()
	defer a.sendMu.Unlock()

	user := Turn{Role: RoleUser, Content: message}

	a.mu.Lock()
	turns := append(slices.Clone(a.history), user)
	a.history = append(a.history, user)
	a.loading = true
	generation := a.generation
	a.mu.Unlock()

	reply, err := a.reply(ctx, turns, generate)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = false

	// A reply to a cleared conversation is not recorded.
	cleared := a.generation != generation

	if err != nil {
		a.logger.Error("Assistant: failed to generate reply", "error", err)
		if !cleared {
			a.history = append(a.history, Turn{Role: RoleModel, Content: Apology})
		}
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	if cleared {
		a.logger.Debug("Assistant: conversation cleared while replying, reply dropped")
		return reply, nil
	}
	a.history = append(a.history, Turn{Role: RoleModel, Content: reply})
	return reply, nil
}

func (a *Assistant) reply(ctx context.Context, turns []Turn, generate func(string, []Turn) (string, error)) (string, error) {
	if a.generator == nil {
		return "", ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return generate(a.systemPrompt(), turns)
}

func (a *Assistant) systemPrompt() string {
	var name string
	if id := a.identity.Identity(); id != nil {
		name = id.DisplayName
	}
	return SystemPrompt(name, Summary(a.habits.Habits(), a.habits.Today()))
}

// History returns a copy of the conversation.
func (a *Assistant) History() []Turn {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.history)
}

// Loading reports whether a reply is being generated.
func (a *Assistant) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// Clear drops the conversation. A reply still being generated is not added
// to the new conversation.
func (a *Assistant) Clear() {
	a.mu.Lock()
	a.history = nil
	a.generation++
	a.mu.Unlock()
}
