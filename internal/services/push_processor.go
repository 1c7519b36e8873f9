package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/academy/internal/infrastructure/buffer"
	"github.com/fastygo/academy/usecase/push"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// OutboxStore is the retry buffer drained by PushProcessor.
type OutboxStore interface {
	GetBatch(limit int) ([]buffer.Item, error)
	Remove(item buffer.Item) error
	Requeue(item buffer.Item) error
	Size() (int, error)
	Cleanup(olderThan time.Time) error
}

// ProcessorConfig controls how frequently the outbox is drained. Items
// enqueued longer than Retention ago are pruned hourly whether or not the
// gateway is reachable.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// PushProcessor retries buffered push token registrations on a cron schedule.
type PushProcessor struct {
	store   OutboxStore
	monitor ConnectionHealth
	sender  push.Sender
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
}

func NewPushProcessor(
	store OutboxStore,
	monitor ConnectionHealth,
	sender push.Sender,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *PushProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pp := &PushProcessor{
		store:   store,
		monitor: monitor,
		sender:  sender,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	seconds := int(cfg.Interval.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	_, _ = pp.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := pp.Drain(ctx); err != nil {
			pp.logger.Error("push outbox drain failed", zap.Error(err))
		}
	})
	_, _ = pp.cron.AddFunc("@hourly", func() {
		if err := pp.Prune(time.Now()); err != nil {
			pp.logger.Error("push outbox prune failed", zap.Error(err))
		}
	})

	return pp
}

// Start launches the cron scheduler.
func (pp *PushProcessor) Start() {
	if pp == nil || pp.cron == nil {
		return
	}
	pp.cron.Start()
	pp.logger.Info("push processor started")
}

// Stop waits for a running drain or ctx, whichever comes first.
func (pp *PushProcessor) Stop(ctx context.Context) {
	if pp == nil || pp.cron == nil {
		return
	}
	stopCtx := pp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	pp.logger.Info("push processor stopped")
}

// Drain processes buffered registrations synchronously.
func (pp *PushProcessor) Drain(ctx context.Context) error {
	if pp == nil || pp.store == nil || pp.sender == nil {
		return nil
	}
	if pp.monitor != nil && !pp.monitor.IsOnline() {
		pp.logger.Debug("skipping push outbox drain (gateway offline)")
		return nil
	}

	items, err := pp.store.GetBatch(pp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := pp.processItem(ctx, item); err != nil {
			pp.logger.Warn("failed to deliver buffered registration",
				zap.String("item_id", item.ID),
				zap.String("account_id", item.AccountID),
				zap.Int("retries", item.Retries),
				zap.Error(err))

			item.Retries++
			if item.Retries >= pp.cfg.MaxRetries {
				pp.logger.Warn("dropping buffered registration (max retries reached)", zap.String("item_id", item.ID))
				if err := pp.store.Remove(item); err != nil {
					pp.logger.Error("failed to drop buffered registration",
						zap.String("item_id", item.ID),
						zap.Error(err))
				}
				continue
			}
			if err := pp.store.Requeue(item); err != nil {
				pp.logger.Error("failed to requeue buffered registration", zap.Error(err))
			}
			continue
		}

		if err := pp.store.Remove(item); err != nil {
			pp.logger.Warn("failed to purge delivered registration", zap.Error(err))
		}
	}
	return nil
}

// Prune discards registrations older than the retention window.
func (pp *PushProcessor) Prune(now time.Time) error {
	if pp == nil || pp.store == nil {
		return nil
	}
	return pp.store.Cleanup(now.Add(-pp.cfg.Retention))
}

// Size returns the number of buffered registrations.
func (pp *PushProcessor) Size() int {
	if pp == nil || pp.store == nil {
		return 0
	}
	size, err := pp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (pp *PushProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if item.Entity != buffer.EntityPushToken || item.Operation != buffer.OperationRegister {
		return fmt.Errorf("unsupported outbox item %s/%s", item.Entity, item.Operation)
	}
	var reg push.Registration
	if err := item.Decode(&reg); err != nil {
		return err
	}
	return pp.sender.Send(ctx, reg)
}
