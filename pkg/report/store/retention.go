package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig contains retention settings for stored events.
type RetentionConfig struct {
	// Days is how long events are kept. 0 disables pruning.
	Days int

	// Schedule is the cron expression for scheduled pruning, e.g.
	// "0 3 * * *" for daily at 3 AM. Empty disables the scheduler.
	Schedule string
}

// Pruner enforces the retention period on the event store, on demand via
// Prune or on a cron schedule via Start.
type Pruner struct {
	store  *SQLiteStore
	cfg    RetentionConfig
	logger *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewPruner creates a retention pruner for the store.
func NewPruner(store *SQLiteStore, cfg RetentionConfig, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "report.retention"),
		cron:   cron.New(),
	}
}

// Prune deletes events older than the retention period and returns how
// many were removed. With retention disabled it does nothing.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.cfg.Days <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -p.cfg.Days)
	deleted, err := p.store.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention prune failed: %w", err)
	}

	if deleted > 0 {
		p.logger.Info("pruned stored attack events",
			"deleted", deleted,
			"cutoff", cutoff,
		)
	}
	return deleted, nil
}

// Start schedules pruning per the cron expression. It is a no-op when
// retention or the schedule is disabled.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}
	if p.cfg.Days <= 0 || p.cfg.Schedule == "" {
		p.logger.Info("event retention disabled, scheduler not started")
		return nil
	}

	if _, err := cron.ParseStandard(p.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", p.cfg.Schedule, err)
	}

	_, err := p.cron.AddFunc(p.cfg.Schedule, func() {
		if _, err := p.Prune(ctx); err != nil {
			p.logger.Error("scheduled prune failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("retention scheduler started",
		"schedule", p.cfg.Schedule,
		"retention_days", p.cfg.Days,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()
	return nil
}

// Stop halts scheduled pruning. A prune in progress finishes.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	stopCtx := p.cron.Stop()
	<-stopCtx.Done()
	p.running = false
	p.logger.Info("retention scheduler stopped")
}
