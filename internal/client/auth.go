package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/rpc"
	"github.com/ZazenCloud/Habit-Tracker/internal/authgate"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

var _ authgate.Provider = (*Auth)(nil)

// Auth is the identity provider backed by the habits server.
type Auth struct {
	conn *Conn
}

func NewAuth(conn *Conn) *Auth {
	return &Auth{conn: conn}
}

func (a *Auth) SignUp(ctx context.Context, email, password, displayName string) (model.Identity, error) {
	resp, err := a.conn.auth.Register(ctx, &rpc.RegisterRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		return model.Identity{}, fromStatus(err)
	}
	return a.start(resp), nil
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (model.Identity, error) {
	resp, err := a.conn.auth.Login(ctx, &rpc.LoginRequest{Email: email, Password: password})
	if err != nil {
		return model.Identity{}, fromStatus(err)
	}
	return a.start(resp), nil
}

// SignOut revokes the refresh token and forgets the session. A token the
// server no longer knows counts as signed out.
func (a *Auth) SignOut(ctx context.Context) error {
	_, refreshToken := a.conn.tokens()
	if refreshToken != "" {
		_, err := a.conn.auth.RevokeToken(ctx, &rpc.RevokeTokenRequest{RefreshToken: refreshToken})
		if err = fromStatus(err); err != nil && !errors.Is(err, model.ErrUnauthenticated) && !errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("failed to revoke session: %w", err)
		}
	}

	a.conn.setTokens("", "")
	if err := a.conn.sessions.Clear(); err != nil {
		return err
	}
	return nil
}

// Restore resumes the persisted session. An expired session resolves to nil.
func (a *Auth) Restore(ctx context.Context) (*model.Identity, error) {
	s, err := a.conn.sessions.Load()
	if errors.Is(err, ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.conn.setTokens("", s.RefreshToken)
	if _, err := a.conn.refresh(ctx, ""); err != nil {
		if errors.Is(err, model.ErrUnauthenticated) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	me, err := a.conn.auth.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch identity: %w", fromStatus(err))
	}

	identity := me.User.Model()
	s.Identity = identity
	_, s.RefreshToken = a.conn.tokens()
	if err := a.conn.sessions.Save(s); err != nil {
		a.conn.logger.Warn("Client: failed to persist session", "error", err)
	}
	return &identity, nil
}

func (a *Auth) start(resp *rpc.SessionResponse) model.Identity {
	identity := resp.User.Model()
	a.conn.setTokens(resp.AccessToken, resp.RefreshToken)

	err := a.conn.sessions.Save(Session{RefreshToken: resp.RefreshToken, Identity: identity})
	if err != nil {
		a.conn.logger.Warn("Client: failed to persist session", "error", err)
	}
	return identity
}
