// Package scheduler runs the daily feed import on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/robfig/cron/v3"

	"pricewatch/internal/ingest"
)

// DefaultDailyCron imports shortly after midnight, once the day's feed
// has been published.
const DefaultDailyCron = "0 30 0 * * *"

// Scheduler manages the recurring import job.
type Scheduler struct {
	cron     *cron.Cron
	importer *ingest.Importer
	ctx      context.Context
	logger   *log.Logger
}

// New creates a Scheduler for the importer.
func New(ctx context.Context, importer *ingest.Importer, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(os.Stdout, "[scheduler] ", log.LstdFlags)
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		importer: importer,
		ctx:      ctx,
		logger:   logger,
	}
}

// Register adds the daily import at the given cron spec. An empty spec
// uses DefaultDailyCron.
func (s *Scheduler) Register(dailyCron string) error {
	if dailyCron == "" {
		dailyCron = DefaultDailyCron
	}
	if _, err := s.cron.AddFunc(dailyCron, s.dailyImport); err != nil {
		return fmt.Errorf("register daily import: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Println("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Println("scheduler stopped")
}

// RunNow executes the daily import immediately (for manual trigger).
func (s *Scheduler) RunNow() {
	s.dailyImport()
}

func (s *Scheduler) dailyImport() {
	s.logger.Println("running daily import")

	report, err := s.importer.ImportDaily(s.ctx)
	if err != nil {
		s.logger.Printf("daily import failed: %v", err)
		return
	}

	s.logger.Printf("run %s: %d rows, %d inserted, %d unchanged, %d duplicates, %d errors in %v",
		report.RunID, report.RowsRead, report.RecordsInserted, report.UnchangedSkipped,
		report.DuplicatesSkipped, len(report.Errors), report.Elapsed)
	for _, msg := range report.Errors {
		s.logger.Printf("import error: %s", msg)
	}
}
