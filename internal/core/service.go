package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/dedup"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/discovery"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/fetcher"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/observability"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/store"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/webhook"
)

// SyncService runs the fetch pipeline for configured targets and fans the
// results out to storage and webhook delivery. Store, deduplicator, sender,
// and prober are all optional; a nil component is skipped.
type SyncService struct {
	orchestrator *fetcher.Orchestrator
	store        *store.Store
	dedup        *dedup.Deduplicator
	sender       *webhook.Sender
	prober       *discovery.Prober
	stats        *observability.Stats
	targets      []jobs.TargetConfig
}

func NewSyncService(orch *fetcher.Orchestrator, st *store.Store, dd *dedup.Deduplicator, sender *webhook.Sender, prober *discovery.Prober, targets []jobs.TargetConfig) *SyncService {
	return &SyncService{
		orchestrator: orch,
		store:        st,
		dedup:        dd,
		sender:       sender,
		prober:       prober,
		stats:        orch.Stats(),
		targets:      targets,
	}
}

// Stats exposes the counter set shared with the orchestrator.
func (s *SyncService) Stats() *observability.Stats { return s.stats }

func (s *SyncService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	go s.syncLoop(ctx, interval)
	if s.store != nil {
		go s.cleanupLoop(ctx, 24*time.Hour, 90*24*time.Hour)
	}
}

func (s *SyncService) syncLoop(ctx context.Context, interval time.Duration) {
	s.SyncAll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SyncAll(ctx)
		}
	}
}

func (s *SyncService) SyncAll(ctx context.Context) {
	for _, target := range s.targets {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.SyncTarget(ctx, target)
	}
}

// SyncTarget fetches one company, persists and delivers the outcome, and
// returns the fetch result. Storage and delivery failures are logged but
// do not change the result.
func (s *SyncService) SyncTarget(ctx context.Context, cfg jobs.TargetConfig) jobs.FetchResult {
	s.stats.IncSyncRun()
	started := time.Now()

	cfg = s.resolveCareersURL(ctx, cfg)

	source := cfg.CompanyID
	result := s.orchestrator.FetchJobs(ctx, cfg, source)
	s.stats.ObserveFetchDuration(time.Since(started).Seconds())

	s.recordRun(ctx, cfg, result, started)

	if !result.Success {
		return result
	}

	if s.store != nil {
		for _, job := range result.Jobs {
			if err := s.store.SaveJob(ctx, cfg.CompanyID, job); err != nil {
				slog.Warn("failed to save job", "company", cfg.CompanyID, "job_id", job.ID, "error", err)
			}
		}
	}

	fresh := result.Jobs
	if s.dedup != nil {
		var err error
		fresh, err = s.dedup.FilterNew(ctx, source, result.Jobs)
		if err != nil {
			slog.Warn("dedup filter failed, delivering all jobs", "company", cfg.CompanyID, "error", err)
			fresh = result.Jobs
		}
	}

	if s.sender != nil && len(fresh) > 0 {
		delivery := result
		delivery.Jobs = fresh
		delivery.TotalCount = len(fresh)
		if err := s.sender.Send(ctx, delivery, source); err != nil {
			slog.Error("webhook delivery failed", "company", cfg.CompanyID, "error", err)
		} else {
			s.stats.IncWebhookDelivered()
			slog.Info("webhook delivered", "company", cfg.CompanyID, "jobs", len(fresh))
		}
	}

	return result
}

func (s *SyncService) resolveCareersURL(ctx context.Context, cfg jobs.TargetConfig) jobs.TargetConfig {
	if s.prober == nil || cfg.CareersURL == "" {
		return cfg
	}
	resolved, err := s.prober.CareersURL(ctx, cfg.CareersURL)
	if err != nil {
		slog.Debug("careers url probe failed", "company", cfg.CompanyID, "error", err)
		return cfg
	}
	if resolved != cfg.CareersURL {
		slog.Info("resolved careers url", "company", cfg.CompanyID, "url", resolved)
		cfg.CareersURL = resolved
	}
	return cfg
}

func (s *SyncService) recordRun(ctx context.Context, cfg jobs.TargetConfig, result jobs.FetchResult, started time.Time) {
	if s.store == nil {
		return
	}
	run := store.SyncRun{
		CompanyID: cfg.CompanyID,
		Source:    cfg.CompanyID,
		Method:    result.Method,
		Success:   result.Success,
		JobCount:  result.TotalCount,
		Error:     result.Error,
		StartedAt: started.UTC(),
	}
	if _, err := s.store.SaveSyncRun(ctx, run); err != nil {
		slog.Warn("failed to record sync run", "company", cfg.CompanyID, "error", err)
	}
}

func (s *SyncService) cleanupLoop(ctx context.Context, interval, retention time.Duration) {
	s.cleanup(ctx, retention)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup(ctx, retention)
		}
	}
}

func (s *SyncService) cleanup(ctx context.Context, retention time.Duration) {
	deleted, err := s.store.DeleteOldJobs(ctx, retention)
	if err != nil {
		slog.Warn("job retention cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("job retention cleanup", "deleted", deleted)
	}
}
