package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/observability"
)

// AllFailedMessage is the error string carried by a total-failure result.
const AllFailedMessage = "All fetch strategies failed"

// Orchestrator tries an ordered, fixed list of strategies and normalizes
// the first success. It performs no retries of its own; retries live inside
// the HTTP client and the browser strategy.
type Orchestrator struct {
	strategies []Strategy
	pipeline   *jobs.Pipeline
	stats      *observability.Stats
	now        func() time.Time
}

// NewOrchestrator wires the production strategy order: cheapest and most
// specific first, the browser last. The stats instance is shared with
// whatever drives the orchestrator; pass nil to get a private one.
func NewOrchestrator(client HTTPDoer, driver BrowserDriver, stats *observability.Stats) *Orchestrator {
	return NewOrchestratorWith(stats,
		NewAPIStrategy(client),
		NewJSONStrategy(client),
		NewHTMLStrategy(client),
		NewEmbeddedStrategy(client),
		NewBrowserStrategy(driver),
	)
}

// NewOrchestratorWith builds an orchestrator over an explicit strategy
// list. Tests use it to substitute fakes.
func NewOrchestratorWith(stats *observability.Stats, strategies ...Strategy) *Orchestrator {
	if stats == nil {
		stats = observability.NewStats()
	}
	return &Orchestrator{
		strategies: strategies,
		pipeline:   jobs.NewPipeline(),
		stats:      stats,
		now:        time.Now,
	}
}

// Stats exposes the counter set this orchestrator reports into.
func (o *Orchestrator) Stats() *observability.Stats { return o.stats }

// FetchJobs runs the strategy chain for one target. It never returns an
// error for expected failure modes; total failure is a FetchResult with
// Success false.
func (o *Orchestrator) FetchJobs(ctx context.Context, cfg jobs.TargetConfig, source string) jobs.FetchResult {
	if source == "" {
		source = jobs.DefaultSource
	}

	for _, strat := range o.strategies {
		if !strat.CanHandle(cfg) {
			continue
		}
		o.stats.IncStrategyAttempt(strat.Name())

		raw, err := strat.FetchJobs(ctx, cfg)
		if err != nil {
			o.stats.IncStrategyFailure(strat.Name(), observability.ClassifyError(err))
			slog.Warn("fetch strategy failed",
				"strategy", strat.Name(),
				"company", cfg.CompanyID,
				"error", err)
			continue
		}

		normalized := o.pipeline.Normalize(raw, source)
		o.stats.AddJobsFetched(strat.Name(), len(normalized))
		slog.Info("fetch strategy succeeded",
			"strategy", strat.Name(),
			"company", cfg.CompanyID,
			"raw", len(raw),
			"normalized", len(normalized))
		return jobs.Succeeded(strat.Name(), normalized, o.now().UTC())
	}

	slog.Error("all fetch strategies failed", "company", cfg.CompanyID)
	return jobs.Failed(AllFailedMessage, o.now().UTC())
}
