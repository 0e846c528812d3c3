package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// AuthProvider is a mock of authgate.Provider.
type AuthProvider struct {
	mock.Mock
}

func NewAuthProvider(t cleanupT) *AuthProvider {
	m := &AuthProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *AuthProvider) SignUp(ctx context.Context, email, password, displayName string) (model.Identity, error) {
	args := m.Called(ctx, email, password, displayName)
	return args.Get(0).(model.Identity), args.Error(1)
}

func (m *AuthProvider) SignIn(ctx context.Context, email, password string) (model.Identity, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(model.Identity), args.Error(1)
}

func (m *AuthProvider) SignOut(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *AuthProvider) Restore(ctx context.Context) (*model.Identity, error) {
	args := m.Called(ctx)
	id, _ := args.Get(0).(*model.Identity)
	return id, args.Error(1)
}
