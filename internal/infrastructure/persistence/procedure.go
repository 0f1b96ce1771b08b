package persistence

import (
	"context"

	"github.com/marketplace/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FallbackRecorder is notified every time a stored procedure call fails
// and the inline query is used instead.
type FallbackRecorder interface {
	RecordProcedureFallback(ctx context.Context, procedure string)
}

type nopFallbackRecorder struct{}

func (nopFallbackRecorder) RecordProcedureFallback(context.Context, string) {}

// procedureRunner calls a stored function and falls back to an equivalent inline query
type procedureRunner struct {
	logger   *zap.Logger
	recorder FallbackRecorder
}

func newProcedureRunner(zapLogger *zap.Logger, recorder FallbackRecorder) procedureRunner {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopFallbackRecorder{}
	}
	return procedureRunner{logger: zapLogger, recorder: recorder}
}

func (p procedureRunner) warnFallback(ctx context.Context, procedure string, err error) {
	fields := []zap.Field{zap.String("procedure", procedure), zap.Error(err)}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	p.logger.Warn("Stored procedure failed, falling back to inline query", fields...)
	p.recorder.RecordProcedureFallback(ctx, procedure)
}

// queryWithFallback scans the rows returned by the stored function into dest.
// When the call fails, dest is reset and filled by the inline query.
func queryWithFallback[T any](ctx context.Context, db *gorm.DB, p procedureRunner, procedure, call string, args []any, inline func(tx *gorm.DB) *gorm.DB) ([]T, error) {
	var rows []T
	err := db.WithContext(ctx).Raw(call, args...).Scan(&rows).Error
	if err == nil {
		return rows, nil
	}

	p.warnFallback(ctx, procedure, err)
	rows = nil
	if err := inline(db.WithContext(ctx)).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// execWithFallback runs a stored function for its side effect, falling back to inline statements
func execWithFallback(ctx context.Context, db *gorm.DB, p procedureRunner, procedure, call string, args []any, inline func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Exec(call, args...).Error
	if err == nil {
		return nil
	}

	p.warnFallback(ctx, procedure, err)
	return inline(db.WithContext(ctx))
}
