package ledger

import (
	"context"

	"github.com/dmagro/coverchain/internal/logger"
	"go.uber.org/zap"
)

// LogRecorder writes records to the structured log. It is the recorder used
// when no broker is configured.
type LogRecorder struct {
	logger *zap.Logger
}

func NewLogRecorder(l *zap.Logger) *LogRecorder {
	return &LogRecorder{logger: logger.OrNop(l)}
}

func (r *LogRecorder) Record(_ context.Context, rec Record) error {
	fields := []zap.Field{
		zap.String("recordId", rec.ID.String()),
		zap.String("operation", string(rec.Operation)),
		zap.String("txHash", rec.TxHash),
		zap.Uint64("blockNumber", rec.BlockNumber),
		zap.Uint64("gasUsed", rec.GasUsed),
		zap.String("actor", rec.Actor),
	}
	if rec.EntityID != nil {
		fields = append(fields, zap.String("entityId", rec.EntityID.String()))
	}
	if rec.AmountWei != nil {
		fields = append(fields, zap.String("amountWei", rec.AmountWei.String()))
	}
	if rec.Approved != nil {
		fields = append(fields, zap.Bool("approved", *rec.Approved))
	}
	r.logger.Info("ledger record", fields...)
	return nil
}

func (r *LogRecorder) Close() error { return nil }

var _ Recorder = (*LogRecorder)(nil)
