package middleware

import (
	"context"
	"log/slog"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"google.golang.org/grpc"

	"github.com/ZazenCloud/Habit-Tracker/internal/logger"
)

// Logging logs the outcome and duration of every unary call.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Unary returns the interceptor. Failed calls are logged at error level by
// the default code-to-level mapping.
func (l *Logging) Unary() grpc.UnaryServerInterceptor {
	return logging.UnaryServerInterceptor(l.adapter(),
		logging.WithLogOnEvents(logging.FinishCall),
	)
}

func (l *Logging) adapter() logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		l.logger.Log(ctx, slog.Level(lvl), "gRPC "+msg, fields...)
	})
}
