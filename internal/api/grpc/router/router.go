package router

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/handler"
	"github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/middleware"
	"github.com/ZazenCloud/Habit-Tracker/internal/api/grpc/rpc"
	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
	"github.com/ZazenCloud/Habit-Tracker/internal/model"
)

// TokenService is used both by the auth handler and the authentication middleware.
type TokenService interface {
	handler.TokenService
	middleware.TokenService
}

// Router wires handlers and interceptors into a gRPC server.
type Router struct {
	authService    handler.AuthService
	habitService   handler.HabitService
	backupService  handler.BackupService
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
	health         *health.Server
}

// New creates new gRPC Router instance.
func New(
	authService handler.AuthService,
	habitService handler.HabitService,
	backupService handler.BackupService,
	tokenService TokenService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		habitService:   habitService,
		backupService:  backupService,
		tokenService:   tokenService,
		contextManager: contextManager,
		logger:         logger,
		health:         health.NewServer(),
	}
}

var publicMethods = map[string]struct{}{
	rpc.AuthRegisterMethod:     {},
	rpc.AuthLoginMethod:        {},
	rpc.AuthRefreshTokenMethod: {},
	rpc.AuthRevokeTokenMethod:  {},
}

// authSkip reports whether the call must carry an access token.
func authSkip(_ context.Context, c interceptors.CallMeta) bool {
	if strings.HasPrefix(c.FullMethod(), "/grpc.health.v1.Health/") {
		return false
	}
	_, public := publicMethods[c.FullMethod()]
	return !public
}

// Register creates the gRPC server with every service and interceptor attached.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.Recovery(r.logger),
			logging.Unary(),
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authSkip),
			),
		),
		grpc.ChainStreamInterceptor(
			selector.StreamServerInterceptor(
				auth.StreamServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authSkip),
			),
		),
	)

	rpc.RegisterAuthServer(s, handler.NewAuth(r.authService, r.tokenService, r.contextManager, r.logger))
	rpc.RegisterHabitsServer(s, handler.NewHabit(r.habitService, r.contextManager, r.logger))
	rpc.RegisterBackupServer(s, handler.NewBackup(r.backupService, r.contextManager, r.logger))
	healthpb.RegisterHealthServer(s, r.health)

	for _, name := range []string{rpc.AuthServiceName, rpc.HabitsServiceName, rpc.BackupServiceName, ""} {
		r.health.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	return s
}

// Shutdown marks every service as not serving so health probes drain traffic.
func (r *Router) Shutdown() {
	r.health.Shutdown()
}
