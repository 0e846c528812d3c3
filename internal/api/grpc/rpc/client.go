package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// AuthClient calls the Auth service.
type AuthClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthClient(cc grpc.ClientConnInterface) *AuthClient {
	return &AuthClient{cc: cc}
}

func (c *AuthClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, AuthRegisterMethod, in, opts)
}

func (c *AuthClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, AuthLoginMethod, in, opts)
}

func (c *AuthClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c.cc, AuthRefreshTokenMethod, in, opts)
}

func (c *AuthClient) RevokeToken(ctx context.Context, in *RevokeTokenRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, AuthRevokeTokenMethod, in, opts)
}

func (c *AuthClient) Me(ctx context.Context, opts ...grpc.CallOption) (*MeResponse, error) {
	return invoke[MeResponse](ctx, c.cc, AuthMeMethod, &Empty{}, opts)
}

// HabitsClient calls the Habits service.
type HabitsClient struct {
	cc grpc.ClientConnInterface
}

func NewHabitsClient(cc grpc.ClientConnInterface) *HabitsClient {
	return &HabitsClient{cc: cc}
}

func (c *HabitsClient) ListHabits(ctx context.Context, in *ListHabitsRequest, opts ...grpc.CallOption) (*ListHabitsResponse, error) {
	return invoke[ListHabitsResponse](ctx, c.cc, HabitsListMethod, in, opts)
}

func (c *HabitsClient) CreateHabit(ctx context.Context, in *CreateHabitRequest, opts ...grpc.CallOption) (*CreateHabitResponse, error) {
	return invoke[CreateHabitResponse](ctx, c.cc, HabitsCreateMethod, in, opts)
}

func (c *HabitsClient) UpdateHabit(ctx context.Context, in *UpdateHabitRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, HabitsUpdateMethod, in, opts)
}

func (c *HabitsClient) DeleteHabit(ctx context.Context, in *DeleteHabitRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, HabitsDeleteMethod, in, opts)
}

// BackupClient calls the Backup service.
type BackupClient struct {
	cc grpc.ClientConnInterface
}

func NewBackupClient(cc grpc.ClientConnInterface) *BackupClient {
	return &BackupClient{cc: cc}
}

func (c *BackupClient) CreateBackup(ctx context.Context, opts ...grpc.CallOption) (*CreateBackupResponse, error) {
	return invoke[CreateBackupResponse](ctx, c.cc, BackupCreateMethod, &Empty{}, opts)
}

func (c *BackupClient) ListBackups(ctx context.Context, opts ...grpc.CallOption) (*ListBackupsResponse, error) {
	return invoke[ListBackupsResponse](ctx, c.cc, BackupListMethod, &Empty{}, opts)
}

func (c *BackupClient) GetBackup(ctx context.Context, in *BackupRequest, opts ...grpc.CallOption) (*GetBackupResponse, error) {
	return invoke[GetBackupResponse](ctx, c.cc, BackupGetMethod, in, opts)
}

func (c *BackupClient) DeleteBackup(ctx context.Context, in *BackupRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, BackupDeleteMethod, in, opts)
}
