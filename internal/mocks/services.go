package mocks

import (
	"context"
	"net"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// AuthService is a mock of handler.AuthService.
type AuthService struct {
	mock.Mock
}

func NewAuthService(t cleanupT) *AuthService {
	m := &AuthService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *AuthService) Register(ctx context.Context, params model.RegisterParams) (model.Session, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Session), args.Error(1)
}

func (m *AuthService) Login(ctx context.Context, email, password string) (model.Session, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(model.Session), args.Error(1)
}

func (m *AuthService) Me(ctx context.Context, userID uuid.UUID) (model.Identity, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Identity), args.Error(1)
}

// TokenService is a mock of the token operations used by handlers and middleware.
type TokenService struct {
	mock.Mock
}

func NewTokenService(t cleanupT) *TokenService {
	m := &TokenService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TokenService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *TokenService) RevokeByToken(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *TokenService) GetUserID(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// HabitService is a mock of handler.HabitService.
type HabitService struct {
	mock.Mock
}

func NewHabitService(t cleanupT) *HabitService {
	m := &HabitService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *HabitService) ListHabits(ctx context.Context, callerID, ownerID uuid.UUID) ([]model.Habit, error) {
	args := m.Called(ctx, callerID, ownerID)
	habits, _ := args.Get(0).([]model.Habit)
	return habits, args.Error(1)
}

func (m *HabitService) CreateHabit(ctx context.Context, callerID uuid.UUID, params model.CreateHabitParams) (model.Habit, error) {
	args := m.Called(ctx, callerID, params)
	return args.Get(0).(model.Habit), args.Error(1)
}

func (m *HabitService) UpdateHabit(ctx context.Context, callerID, habitID uuid.UUID, patch model.HabitPatch) error {
	return m.Called(ctx, callerID, habitID, patch).Error(0)
}

func (m *HabitService) DeleteHabit(ctx context.Context, callerID, habitID uuid.UUID) error {
	return m.Called(ctx, callerID, habitID).Error(0)
}

// BackupService is a mock of handler.BackupService.
type BackupService struct {
	mock.Mock
}

func NewBackupService(t cleanupT) *BackupService {
	m := &BackupService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *BackupService) CreateBackup(ctx context.Context, ownerID uuid.UUID) (model.Backup, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(model.Backup), args.Error(1)
}

func (m *BackupService) ListBackups(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, ownerID)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

func (m *BackupService) GetBackup(ctx context.Context, ownerID uuid.UUID, key string) (model.Backup, error) {
	args := m.Called(ctx, ownerID, key)
	return args.Get(0).(model.Backup), args.Error(1)
}

func (m *BackupService) DeleteBackup(ctx context.Context, ownerID uuid.UUID, key string) error {
	return m.Called(ctx, ownerID, key).Error(0)
}

// SecurityLayer is a mock of model.SecurityLayer.
type SecurityLayer struct {
	mock.Mock
}

func NewSecurityLayer(t cleanupT) *SecurityLayer {
	m := &SecurityLayer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SecurityLayer) Listen(protocol, addr string) (net.Listener, error) {
	args := m.Called(protocol, addr)
	l, _ := args.Get(0).(net.Listener)
	return l, args.Error(1)
}
