package client

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/zalando/go-keyring"

	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// ErrNoSession is returned by SessionStore.Load when nothing is persisted.
var ErrNoSession = errors.New("no persisted session")

const keyringUser = "session"

// Session is the persisted part of a sign-in.
type Session struct {
	RefreshToken string         `json:"refreshToken"`
	Identity     model.Identity `json:"identity"`
}

// SessionStore persists the session between runs.
type SessionStore interface {
	Load() (Session, error)
	Save(session Session) error
	Clear() error
}

// KeyringSessions stores the session in the OS keyring.
type KeyringSessions struct {
	service string
}

func NewKeyringSessions(service string) *KeyringSessions {
	return &KeyringSessions{service: service}
}

func (k *KeyringSessions) Load() (Session, error) {
	secret, err := keyring.Get(k.service, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session from keyring: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(secret), &s); err != nil {
		return Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.RefreshToken == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

func (k *KeyringSessions) Save(session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := keyring.Set(k.service, keyringUser, string(data)); err != nil {
		return fmt.Errorf("failed to write session to keyring: %w", err)
	}
	return nil
}

// Clear removes the session. Clearing an empty keyring is not an error.
func (k *KeyringSessions) Clear() error {
	err := keyring.Delete(k.service, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete session from keyring: %w", err)
	}
	return nil
}
