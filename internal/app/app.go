// Package app assembles the client runtime once at startup.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"

	"github.com/ZazenCloud/Habit-Tracker/internal/assistant"
	"github.com/ZazenCloud/Habit-Tracker/internal/authgate"
	"github.com/ZazenCloud/Habit-Tracker/internal/client"
	"github.com/ZazenCloud/Habit-Tracker/internal/config"
	"github.com/ZazenCloud/Habit-Tracker/internal/habitstore"
	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// App owns the client services. Consumers receive them from here instead of globals.
type App struct {
	Gate      *authgate.Gate
	Habits    *habitstore.Store
	Assistant *assistant.Assistant
	Backups   *client.Backups

	conn        *client.Conn
	logger      *logger.Logger
	unsubscribe func()
}

// New dials the server and builds every service from cfg.
// Without a Gemini API key the assistant answers with ErrNotConfigured.
func New(ctx context.Context, cfg config.ClientConfig, logger *logger.Logger, dialOpts ...grpc.DialOption) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	conn, err := client.Dial(cfg, client.NewKeyringSessions(cfg.KeyringService), logger, dialOpts...)
	if err != nil {
		return nil, err
	}

	var generator assistant.Generator
	gemini, err := assistant.NewGemini(ctx, cfg.Gemini)
	switch {
	case err == nil:
		generator = gemini
	case errors.Is(err, assistant.ErrMissingAPIKey):
		logger.Info("App: assistant disabled, no Gemini API key")
	default:
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set up assistant: %w", err)
	}

	a := Assemble(Deps{
		Provider:   client.NewAuth(conn),
		Collection: client.NewHabits(conn),
		Generator:  generator,
		Location:   loc,
	}, logger)
	a.conn = conn
	a.Backups = client.NewBackups(conn)
	return a, nil
}

// Deps are the external collaborators of the client services.
type Deps struct {
	Provider   authgate.Provider
	Collection habitstore.Collection
	Generator  assistant.Generator
	Location   *time.Location
	Now        func() time.Time
}

// Assemble wires the services together. Identity changes of the gate drive
// the habit store.
func Assemble(deps Deps, logger *logger.Logger) *App {
	gate := authgate.New(deps.Provider, logger)

	opts := []habitstore.Option{}
	if deps.Location != nil {
		opts = append(opts, habitstore.WithLocation(deps.Location))
	}
	if deps.Now != nil {
		opts = append(opts, habitstore.WithClock(deps.Now))
	}
	store := habitstore.New(deps.Collection, gate, logger, opts...)

	a := &App{
		Gate:      gate,
		Habits:    store,
		Assistant: assistant.New(deps.Generator, store, gate, logger),
		logger:    logger,
	}

	a.unsubscribe = gate.Subscribe(func(id *model.Identity) {
		if err := store.HandleIdentity(context.Background(), id); err != nil {
			logger.Error("App: failed to switch habits to new identity", "error", err)
		}
		if id == nil {
			a.Assistant.Clear()
		}
	})

	return a
}

// Start resolves the persisted session.
func (a *App) Start(ctx context.Context) error {
	return a.Gate.Start(ctx)
}

// Close stops reacting to identity changes and closes the connection.
func (a *App) Close() error {
	a.unsubscribe()
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}
