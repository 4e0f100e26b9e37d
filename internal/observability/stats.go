package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	SyncsRun          uint64            `json:"syncs_run"`
	JobsFetched       uint64            `json:"jobs_fetched"`
	WebhooksDelivered uint64            `json:"webhooks_delivered"`
	ErrorsTotal       uint64            `json:"errors_total"`
	FetchSecondsAvg   float64           `json:"fetch_seconds_avg"`
	StrategyAttempts  map[string]uint64 `json:"strategy_attempts,omitempty"`
	StrategyFailures  map[string]uint64 `json:"strategy_failures,omitempty"`
	JobsByStrategy    map[string]uint64 `json:"jobs_by_strategy,omitempty"`
	ErrorsByType      map[string]uint64 `json:"errors_by_type,omitempty"`
}

// Stats collects runtime counters for one service instance. Construct with
// NewStats and share the pointer between the components that report into it.
// A nil *Stats discards everything, so optional wiring stays simple.
type Stats struct {
	syncsRun          uint64
	jobsFetched       uint64
	webhooksDelivered uint64
	errorsTotal       uint64

	fetchCount uint64
	fetchNanos uint64

	mu               sync.Mutex
	strategyAttempts map[string]uint64
	strategyFailures map[string]uint64
	jobsByStrategy   map[string]uint64
	errorsByType     map[string]uint64
}

func NewStats() *Stats {
	return &Stats{
		strategyAttempts: map[string]uint64{},
		strategyFailures: map[string]uint64{},
		jobsByStrategy:   map[string]uint64{},
		errorsByType:     map[string]uint64{},
	}
}

func (s *Stats) IncSyncRun() {
	if s == nil {
		return
	}
	atomic.AddUint64(&s.syncsRun, 1)
}

func (s *Stats) IncWebhookDelivered() {
	if s == nil {
		return
	}
	atomic.AddUint64(&s.webhooksDelivered, 1)
}

func (s *Stats) IncStrategyAttempt(strategy string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.strategyAttempts[strategy]++
	s.mu.Unlock()
}

func (s *Stats) IncStrategyFailure(strategy, errType string) {
	if s == nil {
		return
	}
	if errType == "" {
		errType = ErrorUnknown
	}
	atomic.AddUint64(&s.errorsTotal, 1)
	s.mu.Lock()
	s.strategyFailures[strategy]++
	s.errorsByType[errType]++
	s.mu.Unlock()
}

func (s *Stats) AddJobsFetched(strategy string, n int) {
	if s == nil || n < 0 {
		return
	}
	atomic.AddUint64(&s.jobsFetched, uint64(n))
	s.mu.Lock()
	s.jobsByStrategy[strategy] += uint64(n)
	s.mu.Unlock()
}

func (s *Stats) ObserveFetchDuration(seconds float64) {
	if s == nil || seconds <= 0 {
		return
	}
	atomic.AddUint64(&s.fetchCount, 1)
	atomic.AddUint64(&s.fetchNanos, uint64(seconds*1e9))
}

func (s *Stats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{
			StrategyAttempts: map[string]uint64{},
			StrategyFailures: map[string]uint64{},
			JobsByStrategy:   map[string]uint64{},
			ErrorsByType:     map[string]uint64{},
		}
	}

	s.mu.Lock()
	attemptsCopy := copyMap(s.strategyAttempts)
	failuresCopy := copyMap(s.strategyFailures)
	jobsCopy := copyMap(s.jobsByStrategy)
	errorsCopy := copyMap(s.errorsByType)
	s.mu.Unlock()

	count := atomic.LoadUint64(&s.fetchCount)
	avg := 0.0
	if count > 0 {
		avg = float64(atomic.LoadUint64(&s.fetchNanos)) / float64(count) / 1e9
	}

	return StatsSnapshot{
		SyncsRun:          atomic.LoadUint64(&s.syncsRun),
		JobsFetched:       atomic.LoadUint64(&s.jobsFetched),
		WebhooksDelivered: atomic.LoadUint64(&s.webhooksDelivered),
		ErrorsTotal:       atomic.LoadUint64(&s.errorsTotal),
		FetchSecondsAvg:   avg,
		StrategyAttempts:  attemptsCopy,
		StrategyFailures:  failuresCopy,
		JobsByStrategy:    jobsCopy,
		ErrorsByType:      errorsCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
