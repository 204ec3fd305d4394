package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/roylee0704/gron"

	"fms/internal/providers"
	"fms/internal/services"
	"fms/internal/snapshot/interfaces"
	"fms/internal/structures"
	"fms/internal/timewindow"
)

// jobTimeout bounds the role lookups made by the weekly reset.
const jobTimeout = 2 * time.Minute

// Scheduler drives the two maintenance jobs and periodic persistence.
//
// The maintenance tick fires every minute; at the community-local reset hour
// it runs the daily snapshot once per report date, and on a report date that
// begins a week (Sunday) it runs the weekly reset right after the daily one.
// Both run under opsMu, so the two jobs can never interleave even when they
// coincide.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	service     services.FulfillmentServiceInterface
	fileManager *FileManager
	calc        *timewindow.Calculator
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
	now         func() time.Time

	lastDaily  string
	lastWeekly string
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.FulfillmentServiceInterface, fileManager *FileManager, calc *timewindow.Calculator, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		service:     service,
		fileManager: fileManager,
		calc:        calc,
		metrics:     metrics,
		now:         time.Now,
	}
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		start := time.Now()
		err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
			return
		}
		s.metrics.ObservePersistenceDuration(time.Since(start))
		s.logger.Debugf(providers.TypeApp, "Persisted document to %s", s.config.Persistence.FilePath)
	})

	s.cron.AddFunc(gron.Every(time.Minute), s.maintenanceTick)

	s.cron.Start()
}

// maintenanceTick checks whether the community-local reset hour has been
// reached for a report date that has not been processed yet.
func (s *Scheduler) maintenanceTick() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	now := s.now()
	if s.calc.LocalTime(now).Hour() != s.calc.ResetHour() {
		return
	}
	reportDate := s.calc.ReportDate(now)

	if s.lastDaily != reportDate {
		s.runDaily(reportDate)
	}
	if s.calc.WeekStart(reportDate) == reportDate && s.lastWeekly != reportDate {
		s.runWeekly(reportDate)
	}
}

func (s *Scheduler) runDaily(reportDate string) {
	runID := uuid.NewString()
	s.logger.Infof(providers.TypeJob, "Daily reset starting: run=%s date=%s", runID, reportDate)

	start := time.Now()
	if err := s.service.DailyAutoReset(); err != nil {
		s.logger.Errorf(providers.TypeJob, "Daily reset failed: run=%s err=%s", runID, err)
		return
	}
	s.lastDaily = reportDate
	s.metrics.ObserveJobDuration("daily", time.Since(start))

	if err := s.persistLocked(); err != nil {
		return
	}
	s.logger.Infof(providers.TypeJob, "Daily reset done: run=%s", runID)
}

func (s *Scheduler) runWeekly(reportDate string) {
	runID := uuid.NewString()
	s.logger.Infof(providers.TypeJob, "Weekly reset starting: run=%s date=%s", runID, reportDate)

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := s.service.WeeklyAutoReset(ctx); err != nil {
		// Partial failure: the next scheduled run re-attempts, no retry here.
		s.logger.Errorf(providers.TypeJob, "Weekly reset incomplete: run=%s err=%s", runID, err)
	} else {
		s.lastWeekly = reportDate
	}
	s.metrics.ObserveJobDuration("weekly", time.Since(start))

	if err := s.persistLocked(); err != nil {
		return
	}
	s.logger.Infof(providers.TypeJob, "Weekly reset done: run=%s", runID)
}

func (s *Scheduler) persistLocked() error {
	start := time.Now()
	if err := s.fileManager.SaveToFile(s.config.Persistence.FilePath); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	if err := s.fileManager.LoadFromFile(s.config.Persistence.FilePath); err != nil {
		return err
	}
	s.service.InitWeekIfEmpty()
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting document to file...")
	return s.persistLocked()
}
