package logging

import (
	"context"

	"go.uber.org/zap"

	"github.com/BobDeng1974/DNNCam/internal/audit"
)

// Standard structured logging keys.
const (
	FieldRequestID = "request_id"
	FieldActor     = "actor"
	FieldAddress   = "address"
	FieldRegister  = "register"
	FieldOperation = "operation"
	FieldValue     = "value"
)

// ContextFields extracts the request fields carried by ctx.
func ContextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields := make([]zap.Field, 0, 2)
	if rid, ok := audit.RequestIDFromContext(ctx); ok {
		fields = append(fields, zap.String(FieldRequestID, rid))
	}
	if actor, ok := audit.ActorFromContext(ctx); ok {
		fields = append(fields, zap.String(FieldActor, actor))
	}
	return fields
}

// WithContext returns logger augmented with the request fields of ctx.
func WithContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
