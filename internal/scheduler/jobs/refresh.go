package jobs

import (
	"context"
	"fmt"

	"github.com/duelist/stockduel/internal/bracket"
	"github.com/duelist/stockduel/pkg/logger"
)

// BracketRefreshJob sweeps every non-completed bracket: re-fetches
// prices, advances lifecycles and scores brackets whose window closed.
// Per-bracket failures are absorbed inside the sweep; the job only
// fails when the active list itself cannot be loaded.
type BracketRefreshJob struct {
	service  *bracket.Service
	logger   *logger.Logger
	schedule string
}

// NewBracketRefreshJob creates the refresh sweep job
func NewBracketRefreshJob(service *bracket.Service, log *logger.Logger, schedule string) *BracketRefreshJob {
	return &BracketRefreshJob{
		service:  service,
		logger:   log,
		schedule: schedule,
	}
}

// Name returns the job name
func (j *BracketRefreshJob) Name() string {
	return "bracket_refresh"
}

// Schedule returns the cron expression
func (j *BracketRefreshJob) Schedule() string {
	return j.schedule
}

// Run executes one refresh sweep
func (j *BracketRefreshJob) Run(ctx context.Context) error {
	if err := j.service.RefreshAll(ctx); err != nil {
		return fmt.Errorf("bracket refresh sweep: %w", err)
	}
	return nil
}
