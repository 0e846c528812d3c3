// Package client talks to the habits server over gRPC and adapts it to the
// auth gate and habit store.
package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/rpc"
	"github.com/ZazenCloud/Habit-Tracker/internal/config"
	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
)

var publicMethods = map[string]struct{}{
	rpc.AuthRegisterMethod:     {},
	rpc.AuthLoginMethod:        {},
	rpc.AuthRefreshTokenMethod: {},
	rpc.AuthRevokeTokenMethod:  {},
}

// Conn is a connection to the habits server that attaches the access token
// to every protected call and refreshes it once when the server rejects it.
type Conn struct {
	cc       *grpc.ClientConn
	auth     *rpc.AuthClient
	sessions SessionStore
	logger   *logger.Logger

	mu           sync.RWMutex
	accessToken  string
	refreshToken string

	refreshMu sync.Mutex
}

// Dial creates a Conn. Extra options are appended after the defaults.
func Dial(cfg config.ClientConfig, sessions SessionStore, logger *logger.Logger, opts ...grpc.DialOption) (*Conn, error) {
	creds := insecure.NewCredentials()
	if cfg.UseTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	c := &Conn{sessions: sessions, logger: logger}

	cc, err := grpc.NewClient(cfg.ServerAddr, append([]grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithUnaryInterceptor(c.intercept),
	}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client: %w", err)
	}

	c.cc = cc
	c.auth = rpc.NewAuthClient(cc)
	return c, nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.cc.Close()
}

func (c *Conn) intercept(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	if _, public := publicMethods[method]; public {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, _ := c.tokens()
	err := invoker(withBearer(ctx, access), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated {
		return err
	}

	fresh, refreshErr := c.refresh(ctx, access)
	if refreshErr != nil {
		c.logger.Debug("Client: token refresh failed", "method", method, "error", refreshErr)
		return err
	}
	return invoker(withBearer(ctx, fresh), method, req, reply, cc, opts...)
}

// refresh exchanges the refresh token for a new pair. Concurrent callers
// holding the same stale token share one exchange.
func (c *Conn) refresh(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	access, refreshToken := c.tokens()
	if access != "" && access != stale {
		return access, nil
	}
	if refreshToken == "" {
		return "", errNoRefreshToken
	}

	resp, err := c.auth.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		if status.Code(err) == codes.Unauthenticated {
			c.dropSession()
		}
		return "", fromStatus(err)
	}

	c.setTokens(resp.AccessToken, resp.RefreshToken)
	c.persistRefreshToken(resp.RefreshToken)
	return resp.AccessToken, nil
}

var errNoRefreshToken = errors.New("no refresh token")

func (c *Conn) tokens() (access, refresh string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken, c.refreshToken
}

func (c *Conn) setTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken, c.refreshToken = access, refresh
	c.mu.Unlock()
}

func (c *Conn) persistRefreshToken(refresh string) {
	s, err := c.sessions.Load()
	if err != nil {
		c.logger.Warn("Client: failed to load session to persist rotated refresh token", "error", err)
		return
	}
	s.RefreshToken = refresh
	if err := c.sessions.Save(s); err != nil {
		c.logger.Warn("Client: failed to persist rotated refresh token", "error", err)
	}
}

func (c *Conn) dropSession() {
	c.setTokens("", "")
	if err := c.sessions.Clear(); err != nil {
		c.logger.Warn("Client: failed to clear session", "error", err)
	}
}

func withBearer(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}
