package rpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"

	"github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/codec"
)

const (
	AuthServiceName   = "habits.v1.Auth"
	HabitsServiceName = "habits.v1.Habits"
	BackupServiceName = "habits.v1.Backup"
)

// Full method names, as seen by interceptors.
const (
	AuthRegisterMethod     = "/" + AuthServiceName + "/Register"
	AuthLoginMethod        = "/" + AuthServiceName + "/Login"
	AuthRefreshTokenMethod = "/" + AuthServiceName + "/RefreshToken"
	AuthRevokeTokenMethod  = "/" + AuthServiceName + "/RevokeToken"
	AuthMeMethod           = "/" + AuthServiceName + "/Me"

	HabitsListMethod   = "/" + HabitsServiceName + "/ListHabits"
	HabitsCreateMethod = "/" + HabitsServiceName + "/CreateHabit"
	HabitsUpdateMethod = "/" + HabitsServiceName + "/UpdateHabit"
	HabitsDeleteMethod = "/" + HabitsServiceName + "/DeleteHabit"

	BackupCreateMethod = "/" + BackupServiceName + "/CreateBackup"
	BackupListMethod   = "/" + BackupServiceName + "/ListBackups"
	BackupGetMethod    = "/" + BackupServiceName + "/GetBackup"
	BackupDeleteMethod = "/" + BackupServiceName + "/DeleteBackup"
)

// AuthServer is the server API of the Auth service.
type AuthServer interface {
	Register(context.Context, *RegisterRequest) (*SessionResponse, error)
	Login(context.Context, *LoginRequest) (*SessionResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	RevokeToken(context.Context, *RevokeTokenRequest) (*Empty, error)
	Me(context.Context, *Empty) (*MeResponse, error)
}

// HabitsServer is the server API of the Habits service.
type HabitsServer interface {
	ListHabits(context.Context, *ListHabitsRequest) (*ListHabitsResponse, error)
	CreateHabit(context.Context, *CreateHabitRequest) (*CreateHabitResponse, error)
	UpdateHabit(context.Context, *UpdateHabitRequest) (*Empty, error)
	DeleteHabit(context.Context, *DeleteHabitRequest) (*Empty, error)
}

// BackupServer is the server API of the Backup service.
type BackupServer interface {
	CreateBackup(context.Context, *Empty) (*CreateBackupResponse, error)
	ListBackups(context.Context, *Empty) (*ListBackupsResponse, error)
	GetBackup(context.Context, *BackupRequest) (*GetBackupResponse, error)
	DeleteBackup(context.Context, *BackupRequest) (*Empty, error)
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AuthRegisterMethod, AuthServer.Register),
		unary(AuthLoginMethod, AuthServer.Login),
		unary(AuthRefreshTokenMethod, AuthServer.RefreshToken),
		unary(AuthRevokeTokenMethod, AuthServer.RevokeToken),
		unary(AuthMeMethod, AuthServer.Me),
	},
}

var HabitsServiceDesc = grpc.ServiceDesc{
	ServiceName: HabitsServiceName,
	HandlerType: (*HabitsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(HabitsListMethod, HabitsServer.ListHabits),
		unary(HabitsCreateMethod, HabitsServer.CreateHabit),
		unary(HabitsUpdateMethod, HabitsServer.UpdateHabit),
		unary(HabitsDeleteMethod, HabitsServer.DeleteHabit),
	},
}

var BackupServiceDesc = grpc.ServiceDesc{
	ServiceName: BackupServiceName,
	HandlerType: (*BackupServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(BackupCreateMethod, BackupServer.CreateBackup),
		unary(BackupListMethod, BackupServer.ListBackups),
		unary(BackupGetMethod, BackupServer.GetBackup),
		unary(BackupDeleteMethod, BackupServer.DeleteBackup),
	},
}

func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

func RegisterHabitsServer(s grpc.ServiceRegistrar, srv HabitsServer) {
	s.RegisterService(&HabitsServiceDesc, srv)
}

func RegisterBackupServer(s grpc.ServiceRegistrar, srv BackupServer) {
	s.RegisterService(&BackupServiceDesc, srv)
}

// unary builds the method descriptor of fullMethod from a method expression of S.
func unary[S, Req, Resp any](fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: fullMethod[strings.LastIndexByte(fullMethod, '/')+1:],
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
