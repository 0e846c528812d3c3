package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

type Auth struct {
	userStore    model.UserStore
	tokenService *TokenService
	cost         int
	logger       *logger.Logger
	now          func() time.Time
}

func NewAuth(
	userStore model.UserStore,
	tokenService *TokenService,
	bcryptCost int,
	logger *logger.Logger,
) *Auth {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Auth{
		userStore:    userStore,
		tokenService: tokenService,
		cost:         bcryptCost,
		logger:       logger,
		now:          time.Now,
	}
}

// Register creates an account and signs it in.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.Session, error) {
	email, err := normalizeEmail(params.Email)
	if err != nil {
		return model.Session{}, err
	}
	if len(params.Password) < MinPasswordLength {
		return model.Session{}, fmt.Errorf("%w: password should be at least %d characters", model.ErrValidation, MinPasswordLength)
	}

	a.logger.Debug("Auth service: starting user registration",
		"email", email)

	existing, err := a.userStore.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if existing.ID != uuid.Nil {
		a.logger.Info("Auth service: user already exists",
			"email", email)
		return model.Session{}, model.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), a.cost)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := a.now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  strings.TrimSpace(params.DisplayName),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := a.startSession(ctx, user)
	if err != nil {
		return model.Session{}, err
	}

	a.logger.Info("Auth service: user registration completed successfully",
		"email", email,
		"user_id", user.ID)

	return session, nil
}

// Login verifies credentials and issues a session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (a *Auth) Login(ctx context.Context, email, password string) (model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return model.Session{}, fmt.Errorf("%w: email and password are required", model.ErrValidation)
	}

	a.logger.Debug("Auth service: starting user login",
		"email", email)

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		a.logger.Info("Auth service: wrong password",
			"user_id", user.ID)
		return model.Session{}, model.ErrInvalidCredentials
	}

	session, err := a.startSession(ctx, user)
	if err != nil {
		return model.Session{}, err
	}

	a.logger.Info("Auth service: login completed successfully",
		"user_id", user.ID)

	return session, nil
}

// Me returns the identity of userID.
func (a *Auth) Me(ctx context.Context, userID uuid.UUID) (model.Identity, error) {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user.Identity(), nil
}

func (a *Auth) startSession(ctx context.Context, user model.User) (model.Session, error) {
	access, refresh, err := a.tokenService.Issue(ctx, user.ID)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return model.Session{
		Identity:     user.Identity(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", model.ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email address is badly formatted", model.ErrValidation)
	}
	return email, nil
}
