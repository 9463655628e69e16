package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const DefaultIngestInterval = time.Minute

type IngestRunnerInterface interface {
	IngestAll(ctx context.Context) error
}

// IngestScheduler runs the ingest on a fixed interval, skipping a run while the previous one is busy.
type IngestScheduler struct {
	Ingest   IngestRunnerInterface
	Ctx      *context.Context
	Interval time.Duration

	cron *cron.Cron
}

func (s *IngestScheduler) Start() error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultIngestInterval
	}

	s.cron = cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval.String()), s.Run)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Infof("Ingest is scheduled every %s", interval.String())

	return nil
}

// Run ingests once; errors are logged since nothing waits for a scheduled run.
func (s *IngestScheduler) Run() {
	if err := s.Ingest.IngestAll(*s.Ctx); err != nil {
		log.Warnf("Scheduled ingest: %s", err.Error())
	}
}

// Stop waits for a running ingest to finish.
func (s *IngestScheduler) Stop() {
	if s.cron == nil {
		return
	}

	<-s.cron.Stop().Done()
}
