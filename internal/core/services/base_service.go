package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/fx_rate_dashboard/internal/middleware"
)

// BaseService gives services a request-scoped logger tagged with the service name.
type BaseService struct {
	name string
}

func newBaseService(name string) BaseService {
	return BaseService{name: name}
}

// GetLogger returns the request logger from ctx, or the default one.
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if s.name == "" {
		return logger
	}
	return logger.With(slog.String("service", s.name))
}

func withError(err error, keyvals []any) []any {
	if err == nil {
		return keyvals
	}
	return append([]any{slog.String("error", err.Error())}, keyvals...)
}

// LogError logs msg at error level with err attached.
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	s.GetLogger(ctx).Error(msg, withError(err, keyvals)...)
}

// LogWarn logs a warning, attaching err when it is not nil.
func (s *BaseService) LogWarn(ctx context.Context, err error, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, withError(err, keyvals)...)
}

func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}
