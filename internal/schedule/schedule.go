// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schedule runs the fetch stage as a cron-driven daemon. Job
// failures are logged and counted but do not stop the daemon; the one-shot
// fetch command is the exit-code surface for external schedulers.
package schedule

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pdiddy/arxiv-harvester/internal/fetch"
	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// Scheduler fires fetch runs on a cron expression.
type Scheduler struct {
	Client   *fetch.Client
	Feeds    []fetch.Feed
	Recorder fetch.Recorder
	Config   types.ScheduleConfig
	Logger   *logrus.Logger

	registry *prometheus.Registry
	metrics  *metrics

	// startupRuns tracks the optional run-on-start job so shutdown can
	// wait for it the same way cron.Stop waits for scheduled jobs.
	startupRuns sync.WaitGroup
}

// NewLogger builds the daemon logger. With a log file configured, output
// goes through lumberjack rotation; otherwise it goes to stderr.
func NewLogger(cfg types.ScheduleConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.LogFile != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		})
	}
	return logger
}

// New builds a Scheduler. The caller owns the client, feeds, and recorder.
func New(client *fetch.Client, feeds []fetch.Feed, rec fetch.Recorder, cfg types.ScheduleConfig, logger *logrus.Logger) *Scheduler {
	reg := prometheus.NewRegistry()
	return &Scheduler{
		Client:   client,
		Feeds:    feeds,
		Recorder: rec,
		Config:   cfg,
		Logger:   logger,
		registry: reg,
		metrics:  newMetrics(reg),
	}
}

// Run blocks until ctx is cancelled, firing the fetch job per the cron
// expression. An in-flight run finishes before Run returns, bounded by the
// per-run timeout; overlapping triggers are skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	spec := s.Config.Cron
	if spec == "" {
		spec = "0 6 * * *"
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return err
	}

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger{s.Logger}),
		cron.Recover(cronLogger{s.Logger}),
	))
	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return err
	}

	var metricsSrv *http.Server
	if s.Config.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler(s.registry))
		metricsSrv = &http.Server{Addr: s.Config.MetricsAddr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.Logger.WithError(err).Error("metrics listener failed")
			}
		}()
		s.Logger.WithField("addr", s.Config.MetricsAddr).Info("metrics endpoint up")
	}

	s.Logger.WithFields(logrus.Fields{
		"cron":  spec,
		"feeds": len(s.Feeds),
	}).Info("scheduler started")

	if s.Config.RunOnStart {
		s.startupRuns.Add(1)
		go func() {
			defer s.startupRuns.Done()
			s.runOnce()
		}()
	}
	c.Start()

	<-ctx.Done()
	s.Logger.Info("shutting down")

	// Wait for scheduled and startup jobs to drain. Runs are bounded by
	// the run timeout, so the wait is too.
	drained := make(chan struct{})
	go func() {
		<-c.Stop().Done()
		s.startupRuns.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(s.runTimeout()):
		s.Logger.Warn("gave up waiting for in-flight run")
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}

func (s *Scheduler) runTimeout() time.Duration {
	if s.Config.RunTimeout > 0 {
		return s.Config.RunTimeout
	}
	return 5 * time.Minute
}

// runOnce executes all feeds, one feed at a time so the metrics carry
// per-feed labels. The context is detached from the shutdown signal: an
// in-flight run finishes during shutdown, bounded only by the run timeout.
func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout())
	defer cancel()

	started := time.Now()
	w := s.Logger.WriterLevel(logrus.InfoLevel)
	defer w.Close()

	for _, feed := range s.Feeds {
		err := fetch.RunFeed(ctx, s.Client, feed, s.Recorder, time.Now, w)
		status := fetch.StatusFor(err)
		s.metrics.runsTotal.WithLabelValues(feed.Name, status).Inc()
		if err != nil {
			s.metrics.runFailures.WithLabelValues(feed.Name).Inc()
			s.Logger.WithFields(logrus.Fields{
				"feed":   feed.Name,
				"status": status,
			}).WithError(err).Error("fetch run failed")
			continue
		}
		s.metrics.lastSuccessUnix.WithLabelValues(feed.Name).SetToCurrentTime()
		s.Logger.WithFields(logrus.Fields{
			"feed":   feed.Name,
			"output": feed.OutputPath,
		}).Info("fetch run completed")
	}

	s.metrics.runDuration.Observe(time.Since(started).Seconds())
}

// cronLogger adapts logrus to the cron logging interface.
type cronLogger struct {
	logger *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.WithField("cron", keysAndValues).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.WithField("cron", keysAndValues).WithError(err).Error(msg)
}
