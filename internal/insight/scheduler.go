package insight

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/itaysc/foozool-ai-support-sub000/internal/analytics"
	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

// SchedulerConfig controls the periodic aggregation sweep.
type SchedulerConfig struct {
	Interval  time.Duration
	Window    time.Duration
	BatchSize int64
}

// ApplyDefaults fills zero fields with production defaults.
func (c *SchedulerConfig) ApplyDefaults() {
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
	if c.Window <= 0 {
		c.Window = 30 * 24 * time.Hour
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
}

// Scheduler periodically re-aggregates the recent analytics window so
// insights surface even for tenants with no fresh ticket traffic.
type Scheduler struct {
	cfg        SchedulerConfig
	records    analytics.Store
	aggregator *Aggregator
	logger     *zap.Logger

	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

func NewScheduler(cfg SchedulerConfig, records analytics.Store, aggregator *Aggregator, logger *zap.Logger) *Scheduler {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cfg:        cfg,
		records:    records,
		aggregator: aggregator,
		logger:     logger,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start launches the sweep loop. It returns immediately; call Stop to halt.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		s.logger.Info("aggregation scheduler started",
			zap.Duration("interval", s.cfg.Interval),
			zap.Duration("window", s.cfg.Window))
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				if err := s.Sweep(ctx); err != nil {
					s.logger.Error("aggregation sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop halts the loop and waits for the current sweep to finish.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stopCh) })
	<-s.doneCh
}

// Sweep aggregates the recent record window once, per tenant scope.
func (s *Scheduler) Sweep(ctx context.Context) error {
	records, err := s.records.QueryRecent(ctx, analytics.QueryFilter{
		Since: time.Now().Add(-s.cfg.Window),
		Limit: s.cfg.BatchSize,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	groups := make(map[Scope][]ticket.AnalyticsRecord)
	for _, r := range records {
		scope := Scope{Organization: r.Organization, ProductID: r.ProductID}
		groups[scope] = append(groups[scope], r)
	}
	scopes := make([]Scope, 0, len(groups))
	for scope := range groups {
		scopes = append(scopes, scope)
	}
	sort.Slice(scopes, func(a, b int) bool {
		if scopes[a].Organization != scopes[b].Organization {
			return scopes[a].Organization < scopes[b].Organization
		}
		return scopes[a].ProductID < scopes[b].ProductID
	})

	for _, scope := range scopes {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.aggregator.Aggregate(ctx, groups[scope], scope); err != nil {
			s.logger.Error("scope aggregation failed",
				zap.String("organization", scope.Organization),
				zap.String("product_id", scope.ProductID),
				zap.Error(err))
		}
	}
	return nil
}
