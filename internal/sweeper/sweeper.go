// Package sweeper retires tests whose window has closed. Expiry is lazy
// everywhere else (reads filter on active), so the sweep only exists to keep
// the active set small and the results listing honest.
package sweeper

import (
	"context"
	"time"

	"gitlab.com/assess-2025.net/internal/config"
	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
)

type Sweeper struct {
	cfg      *config.SweeperConfig
	testRepo secondary.TestRepository
	logger   primary.Logger
}

func New(cfg *config.SweeperConfig, testRepo secondary.TestRepository, logger primary.Logger) *Sweeper {
	return &Sweeper{
		cfg:      cfg,
		testRepo: testRepo,
		logger:   logger,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *Sweeper) sweep(ctx context.Context) {
	retired, err := s.testRepo.DeactivateExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error("Failed to sweep expired tests", "error", err)
		return
	}
	if retired > 0 {
		s.logger.Info("Retired expired tests", "count", retired)
	}
}
