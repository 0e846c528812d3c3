// Package authgate tracks who is signed in and decides which areas they may reach.
package authgate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// Provider is the external identity service.
type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (model.Identity, error)
	SignIn(ctx context.Context, email, password string) (model.Identity, error)
	SignOut(ctx context.Context) error
	// Restore resumes a persisted session. It returns nil when there is none.
	Restore(ctx context.Context) (*model.Identity, error)
}

// State is a snapshot of the gate.
type State struct {
	Identity *model.Identity
	Loading  bool
	Error    string
}

// Listener is notified after the identity changes. It receives nil on sign-out.
type Listener func(identity *model.Identity)

// Gate holds the current identity. It reports Loading until Start completes.
type Gate struct {
	provider Provider
	logger   *logger.Logger

	mu       sync.RWMutex
	identity *model.Identity
	loading  bool
	errMsg   string
	// version is bumped by every sign-in and sign-out.
	version uint64

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// New creates a Gate in the loading state.
func New(provider Provider, logger *logger.Logger) *Gate {
	return &Gate{
		provider:  provider,
		logger:    logger,
		loading:   true,
		listeners: make(map[int]Listener),
	}
}

// Start resolves the persisted session, if any, and leaves the loading state.
// A failed restore ends signed out. A sign-in or sign-out that completes while
// the session is being restored wins over the restored identity.
func (g *Gate) Start(ctx context.Context) error {
	g.mu.Lock()
	g.loading = true
	version := g.version
	g.mu.Unlock()

	identity, err := g.provider.Restore(ctx)
	if err != nil {
		g.logger.Warn("AuthGate: failed to restore session", "error", err)
		identity = nil
	}

	g.mu.Lock()
	superseded := g.version != version
	if !superseded {
		g.identity = cloneIdentity(identity)
	}
	g.loading = false
	g.mu.Unlock()

	if superseded {
		g.logger.Debug("AuthGate: restored session ignored, identity changed meanwhile")
	} else {
		g.notify(identity)
	}

	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	return nil
}

// Login signs in. On failure the error message is set and the state is unchanged.
func (g *Gate) Login(ctx context.Context, email, password string) error {
	g.ClearError()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return g.fail("login", fmt.Errorf("%w: email and password are required", model.ErrValidation))
	}

	identity, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		return g.fail("login", err)
	}

	g.signedIn(identity)
	return nil
}

// Register creates an account and signs in to it.
func (g *Gate) Register(ctx context.Context, email, password, displayName string) error {
	g.ClearError()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return g.fail("sign up", fmt.Errorf("%w: email and password are required", model.ErrValidation))
	}

	identity, err := g.provider.SignUp(ctx, email, password, strings.TrimSpace(displayName))
	if err != nil {
		return g.fail("sign up", err)
	}

	g.signedIn(identity)
	return nil
}

// Logout signs out. On failure the identity is kept.
func (g *Gate) Logout(ctx context.Context) error {
	g.ClearError()

	if err := g.provider.SignOut(ctx); err != nil {
		return g.fail("logout", err)
	}

	g.mu.Lock()
	g.identity = nil
	g.version++
	g.mu.Unlock()

	g.logger.Info("AuthGate: signed out")
	g.notify(nil)
	return nil
}

// Subscribe registers l for identity changes and returns a function removing it.
func (g *Gate) Subscribe(l Listener) (unsubscribe func()) {
	g.listenersMu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = l
	g.listenersMu.Unlock()

	return func() {
		g.listenersMu.Lock()
		delete(g.listeners, id)
		g.listenersMu.Unlock()
	}
}

// State returns a snapshot of the gate.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return State{
		Identity: cloneIdentity(g.identity),
		Loading:  g.loading,
		Error:    g.errMsg,
	}
}

// Identity returns the signed-in user or nil.
func (g *Gate) Identity() *model.Identity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return cloneIdentity(g.identity)
}

// ClearError drops the last error message.
func (g *Gate) ClearError() {
	g.mu.Lock()
	g.errMsg = ""
	g.mu.Unlock()
}

// Route decides whether area is reachable in the current state.
func (g *Gate) Route(area Area) Decision {
	return Decide(g.State(), area)
}

func (g *Gate) signedIn(identity model.Identity) {
	g.mu.Lock()
	g.identity = cloneIdentity(&identity)
	g.version++
	g.mu.Unlock()

	g.logger.Info("AuthGate: signed in", "user_id", identity.UserID)
	g.notify(&identity)
}

func (g *Gate) fail(op string, err error) error {
	msg := errorMessage(op, err)
	g.logger.Warn("AuthGate: "+op+" failed", "error", err)

	g.mu.Lock()
	g.errMsg = msg
	g.mu.Unlock()

	return fmt.Errorf("failed to %s: %w", op, err)
}

func (g *Gate) notify(identity *model.Identity) {
	g.listenersMu.Lock()
	listeners := make([]Listener, 0, len(g.listeners))
	for _, l := range g.listeners {
		listeners = append(listeners, l)
	}
	g.listenersMu.Unlock()

	for _, l := range listeners {
		l(cloneIdentity(identity))
	}
}

// errorMessage returns the text shown to the user for a failed operation.
func errorMessage(op string, err error) string {
	for _, known := range []error{
		model.ErrInvalidCredentials,
		model.ErrEmailTaken,
		model.ErrValidation,
		model.ErrUnauthenticated,
	} {
		if errors.Is(err, known) {
			return capitalize(err.Error())
		}
	}
	return "An unknown error occurred during " + op
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func cloneIdentity(id *model.Identity) *model.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
