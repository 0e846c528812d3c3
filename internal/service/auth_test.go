package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ZazenCloud/Habit-Tracker/internal/mocks"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
	"github.com/ZazenCloud/Habit-Tracker/internal/testutil"
)

type authFixture struct {
	users   *mocks.UserStore
	manager *mocks.TokenManager
	refresh *mocks.RefreshTokenStore
	auth    *Auth
}

func newAuthFixture(t *testing.T) authFixture {
	users := mocks.NewUserStore(t)
	manager := mocks.NewTokenManager(t)
	refresh := mocks.NewRefreshTokenStore(t)
	log := testutil.MakeNoopLogger()
	return authFixture{
		users:   users,
		manager: manager,
		refresh: refresh,
		auth:    NewAuth(users, NewTokenService(manager, refresh, log), bcrypt.MinCost, log),
	}
}

func (f authFixture) expectIssue(userID any) {
	f.manager.On("GenerateAccessToken", userID).Return("access", nil).Once()
	f.manager.On("GenerateRefreshToken", userID).Return("refresh", "jti", nil).Once()
	f.refresh.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
}

func TestAuth_Register_NewUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("GetByEmail", ctx, "ada@example.com").Return(model.User{}, model.ErrNotFound).Once()
	f.users.On("Create", ctx, mock.MatchedBy(func(u model.User) bool {
		return u.Email == "ada@example.com" &&
			u.DisplayName == "Ada" &&
			bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("secret1")) == nil
	})).Return(func(_ context.Context, u model.User) model.User { return u }, nil).Once()
	f.expectIssue(mock.Anything)

	session, err := f.auth.Register(ctx, model.RegisterParams{
		Email:       "  Ada@Example.com ",
		Password:    "secret1",
		DisplayName: " Ada ",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", session.Identity.Email)
	assert.Equal(t, "Ada", session.Identity.DisplayName)
	assert.NotEqual(t, uuid.Nil, session.Identity.UserID)
	assert.Equal(t, "access", session.AccessToken)
	assert.Equal(t, "refresh", session.RefreshToken)
}

func TestAuth_Register_ExistingUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("GetByEmail", ctx, "taken@example.com").Return(model.User{ID: uuid.New()}, nil).Once()

	_, err := f.auth.Register(ctx, model.RegisterParams{Email: "taken@example.com", Password: "secret1"})
	require.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestAuth_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params model.RegisterParams
	}{
		{name: "empty email", params: model.RegisterParams{Password: "secret1"}},
		{name: "malformed email", params: model.RegisterParams{Email: "not-an-email", Password: "secret1"}},
		{name: "short password", params: model.RegisterParams{Email: "a@b.co", Password: "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			_, err := f.auth.Register(context.Background(), tt.params)
			require.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestAuth_Register_StoreError(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("GetByEmail", ctx, "a@b.co").Return(model.User{}, assert.AnError).Once()

	_, err := f.auth.Register(ctx, model.RegisterParams{Email: "a@b.co", Password: "secret1"})
	require.ErrorIs(t, err, assert.AnError)
}

func TestAuth_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{ID: uuid.New(), Email: "ada@example.com", DisplayName: "Ada", PasswordHash: hash}

	t.Run("success", func(t *testing.T) {
		f := newAuthFixture(t)
		ctx := context.Background()
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(user, nil).Once()
		f.expectIssue(user.ID)

		session, err := f.auth.Login(ctx, "ADA@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, user.Identity(), session.Identity)
		assert.Equal(t, "access", session.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		ctx := context.Background()
		f.users.On("GetByEmail", ctx, "ada@example.com").Return(user, nil).Once()

		_, err := f.auth.Login(ctx, "ada@example.com", "wrong")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture(t)
		ctx := context.Background()
		f.users.On("GetByEmail", ctx, "nobody@example.com").Return(model.User{}, model.ErrNotFound).Once()

		_, err := f.auth.Login(ctx, "nobody@example.com", "secret1")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("empty input", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.auth.Login(context.Background(), " ", "")
		require.ErrorIs(t, err, model.ErrValidation)
	})
}

func TestAuth_Me(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := model.User{ID: uuid.New(), Email: "a@b.co", DisplayName: "A"}

	f.users.On("GetByID", ctx, user.ID).Return(user, nil).Once()

	identity, err := f.auth.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Identity(), identity)

	missing := uuid.New()
	f.users.On("GetByID", ctx, missing).Return(model.User{}, model.ErrNotFound).Once()
	_, err = f.auth.Me(ctx, missing)
	require.ErrorIs(t, err, model.ErrNotFound)
}
