package handler

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/rpc"
	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// AuthService defines account registration and sign-in operations.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.Session, error)
	Login(ctx context.Context, email, password string) (model.Session, error)
	Me(ctx context.Context, userID uuid.UUID) (model.Identity, error)
}

// TokenService defines token refresh and revoke operations.
type TokenService interface {
	Refresh(ctx context.Context, refreshToken string) (accessToken string, newRefreshToken string, err error)
	RevokeByToken(ctx context.Context, refreshToken string) error
}

var _ rpc.AuthServer = (*Auth)(nil)

// Auth handles gRPC endpoints for authentication.
type Auth struct {
	authService    AuthService
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		tokenService:   tokenService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register creates an account and returns its first session.
func (h *Auth) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.SessionResponse, error) {
	h.logger.Debug("Auth handler: processing registration request",
		"email", req.Email)

	session, err := h.authService.Register(ctx, model.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.logger.Error("Auth handler: registration failed",
			"email", req.Email,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: registration completed",
		"user_id", session.Identity.UserID)

	return sessionResponse(session), nil
}

// Login verifies credentials and returns session tokens.
func (h *Auth) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.SessionResponse, error) {
	h.logger.Debug("Auth handler: processing login request",
		"email", req.Email)

	session, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: login failed",
			"email", req.Email,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: login completed",
		"user_id", session.Identity.UserID)

	return sessionResponse(session), nil
}

// RefreshToken exchanges a refresh token for a new token pair.
func (h *Auth) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.RefreshTokenResponse, error) {
	h.logger.Debug("Auth handler: processing token refresh request")

	if req.RefreshToken == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh token is required")
	}

	accessToken, refreshToken, err := h.tokenService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.logger.Error("Auth handler: token refresh failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: token refresh successful")

	return &rpc.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RevokeToken signs a session out by revoking its refresh token.
func (h *Auth) RevokeToken(ctx context.Context, req *rpc.RevokeTokenRequest) (*rpc.Empty, error) {
	h.logger.Debug("Auth handler: processing token revoke request")

	if req.RefreshToken == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh token is required")
	}

	if err := h.tokenService.RevokeByToken(ctx, req.RefreshToken); err != nil {
		h.logger.Error("Auth handler: token revoke failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: token revoke successful")

	return &rpc.Empty{}, nil
}

// Me returns the identity behind the access token.
func (h *Auth) Me(ctx context.Context, _ *rpc.Empty) (*rpc.MeResponse, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user ID not found in context")
	}

	identity, err := h.authService.Me(ctx, userID)
	if err != nil {
		h.logger.Error("Auth handler: identity lookup failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &rpc.MeResponse{User: rpc.NewIdentity(identity)}, nil
}

func sessionResponse(s model.Session) *rpc.SessionResponse {
	return &rpc.SessionResponse{
		User:         rpc.NewIdentity(s.Identity),
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}
