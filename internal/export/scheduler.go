package export

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/internal/report"
	"github.com/reportdeck/reportdeck/pkg/idgen"
	"github.com/reportdeck/reportdeck/pkg/logger"
)

// Source supplies the report to export on each run
type Source func() (*report.Report, error)

// RunResult summarizes one scheduled run
type RunResult struct {
	ID       string
	Report   string // report title
	Started  time.Time
	Duration time.Duration
	Paths    []string
	// Failures maps a format to its error message
	Failures map[Format]string
	// Err is set when the report could not be loaded and nothing ran
	Err error
}

// Failed reports whether any part of the run failed
func (r RunResult) Failed() bool {
	return r.Err != nil || len(r.Failures) > 0
}

// Scheduler writes snapshot exports on a cron schedule
type Scheduler struct {
	manager   *Manager
	source    Source
	schedule  string
	formats   []Format
	outputDir string
	timeout   time.Duration
	onRun     func(context.Context, RunResult)

	cron    *cron.Cron
	entryID cron.EntryID
	mu      sync.Mutex
	running bool
}

// SchedulerConfig configures a Scheduler
type SchedulerConfig struct {
	Schedule  string // standard 5-field cron spec
	Formats   []Format
	OutputDir string
	Timeout   time.Duration // per run
	// OnRun, when set, receives the result of every run
	OnRun func(context.Context, RunResult)
}

// NewScheduler creates a stopped scheduler
func NewScheduler(manager *Manager, source Source, cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		manager:   manager,
		source:    source,
		schedule:  cfg.Schedule,
		formats:   cfg.Formats,
		outputDir: cfg.OutputDir,
		timeout:   cfg.Timeout,
		onRun:     cfg.OnRun,
		cron:      cron.New(),
	}
}

// Start registers the job and starts the cron loop
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(context.Background()) })
	if err != nil {
		logger.Error("Failed to schedule exports", zap.String("schedule", s.schedule), zap.Error(err))
		return err
	}
	s.entryID = entryID
	s.cron.Start()
	s.running = true

	logger.Info("Export scheduler started",
		zap.String("schedule", s.schedule),
		zap.Int("formats", len(s.formats)),
		zap.String("output_dir", s.outputDir),
	)
	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	logger.Info("Stopping export scheduler")
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.running = false
	logger.Info("Export scheduler stopped")
}

// Next returns the next scheduled run, or zero when stopped
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// RunOnce exports every configured format and returns the written paths.
// A failing format is logged and does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) []string {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res := RunResult{ID: idgen.NewExportID(), Started: time.Now()}
	log := logger.With(zap.String(logger.FieldExportID, res.ID))
	defer func() {
		if s.onRun != nil {
			s.onRun(ctx, res)
		}
	}()

	r, err := s.source()
	if err != nil {
		log.Error("Scheduled export skipped: report unavailable", zap.Error(err))
		res.Err = err
		return nil
	}
	res.Report = r.Title

	for _, f := range s.formats {
		path, err := s.manager.ExportToFile(ctx, r, f, s.outputDir)
		if err != nil {
			log.Error("Scheduled export failed",
				zap.String(logger.FieldFormat, string(f)),
				zap.Error(err),
			)
			if res.Failures == nil {
				res.Failures = make(map[Format]string)
			}
			res.Failures[f] = err.Error()
			continue
		}
		res.Paths = append(res.Paths, path)
	}
	res.Duration = time.Since(res.Started)

	log.Info("Scheduled export completed",
		zap.Int("written", len(res.Paths)),
		zap.Int("formats", len(s.formats)),
		zap.Duration("duration", res.Duration),
	)
	return res.Paths
}
