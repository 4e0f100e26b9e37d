package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/browser"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

type fakePage struct {
	bodyText       string
	structured     []any
	jsonldBlocks   []any
	gotoErr        error
	selectorErr    error
	evalErrs       map[string]error
	evalCalls      []string
	networkIdleRan bool
}

func (p *fakePage) Goto(url string, timeout time.Duration) error { return p.gotoErr }
func (p *fakePage) WaitForSelector(selector string, timeout time.Duration) error {
	return p.selectorErr
}
func (p *fakePage) WaitForNetworkIdle(timeout time.Duration) error {
	p.networkIdleRan = true
	return nil
}
func (p *fakePage) Evaluate(script string) (any, error) {
	p.evalCalls = append(p.evalCalls, script)
	if err, ok := p.evalErrs[script]; ok {
		return nil, err
	}
	switch script {
	case browser.ScriptBodyText:
		return p.bodyText, nil
	case browser.ScriptExpandListings:
		return float64(0), nil
	case browser.ScriptScrapeStructured:
		return p.structured, nil
	case browser.ScriptCollectJSONLD:
		return p.jsonldBlocks, nil
	}
	return nil, errors.New("unknown script")
}
func (p *fakePage) Screenshot(path string) error { return nil }
func (p *fakePage) URL() string                  { return "https://acme.example/careers" }
func (p *fakePage) Close() error                 { return nil }

type fakeSession struct {
	page    *fakePage
	pageErr error
	closed  bool
}

func (s *fakeSession) NewPage() (browser.Page, error) {
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	return s.page, nil
}
func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeDriver struct {
	session    *fakeSession
	launchErrs []error
	launches   int
}

func (d *fakeDriver) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Session, error) {
	d.launches++
	if len(d.launchErrs) > 0 {
		err := d.launchErrs[0]
		d.launchErrs = d.launchErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return d.session, nil
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func browserTarget() jobs.TargetConfig {
	return jobs.TargetConfig{
		CompanyID:  "acme",
		CareersURL: "https://acme.example/careers",
		MaxRetries: 3,
	}
}

func newTestBrowserStrategy(d *fakeDriver) *BrowserStrategy {
	s := NewBrowserStrategy(d)
	s.sleep = noSleep
	return s
}

func TestBrowserStrategyStructuredTactic(t *testing.T) {
	page := &fakePage{
		bodyText: "Open Positions",
		structured: []any{
			map[string]any{"title": "Backend Engineer", "location": "Remote"},
		},
	}
	driver := &fakeDriver{session: &fakeSession{page: page}}

	s := newTestBrowserStrategy(driver)
	recs, err := s.FetchJobs(context.Background(), browserTarget())

	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, "Backend Engineer", recs[0]["title"])
	assert.Equal(t, 1, driver.launches)
	assert.True(t, driver.session.closed)
}

func TestBrowserStrategyFallsBackToJSONLD(t *testing.T) {
	page := &fakePage{
		bodyText:   "Open Positions",
		structured: []any{},
		jsonldBlocks: []any{
			`{"@type": "JobPosting", "title": "One"}`,
			`{"@type": "JobPosting", "title": "Two"}`,
		},
	}
	driver := &fakeDriver{session: &fakeSession{page: page}}

	s := newTestBrowserStrategy(driver)
	recs, err := s.FetchJobs(context.Background(), browserTarget())

	assert.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Contains(t, page.evalCalls, browser.ScriptScrapeStructured)
	assert.Contains(t, page.evalCalls, browser.ScriptCollectJSONLD)
}

func TestBrowserStrategyNoPositionsShortCircuit(t *testing.T) {
	page := &fakePage{bodyText: "Sorry, no open positions available right now."}
	driver := &fakeDriver{session: &fakeSession{page: page}}

	s := newTestBrowserStrategy(driver)
	recs, err := s.FetchJobs(context.Background(), browserTarget())

	assert.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
	assert.NotContains(t, page.evalCalls, browser.ScriptScrapeStructured)
}

func TestBrowserStrategyTextPatternTactic(t *testing.T) {
	page := &fakePage{
		bodyText:     "We are hiring a Senior Engineer for the platform team and a Data Analyst for insights",
		structured:   []any{},
		jsonldBlocks: []any{},
	}
	driver := &fakeDriver{session: &fakeSession{page: page}}

	s := newTestBrowserStrategy(driver)
	recs, err := s.FetchJobs(context.Background(), browserTarget())

	assert.NoError(t, err)
	assert.NotEmpty(t, recs)
	assert.Contains(t, recs[0]["title"], "Engineer")
}

func TestBrowserStrategyRetriesSetupFailures(t *testing.T) {
	page := &fakePage{bodyText: "Open Positions", structured: []any{map[string]any{"title": "SRE"}}}
	driver := &fakeDriver{
		session:    &fakeSession{page: page},
		launchErrs: []error{errors.New("crashed"), errors.New("crashed again"), nil},
	}

	s := newTestBrowserStrategy(driver)
	recs, err := s.FetchJobs(context.Background(), browserTarget())

	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, 3, driver.launches)
}

func TestBrowserStrategyExhaustsRetryBudget(t *testing.T) {
	driver := &fakeDriver{
		launchErrs: []error{errors.New("a"), errors.New("b"), errors.New("c")},
	}

	s := newTestBrowserStrategy(driver)
	cfg := browserTarget()
	_, err := s.FetchJobs(context.Background(), cfg)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, driver.launches)
}

func TestBrowserStrategySelectorTimeoutDegrades(t *testing.T) {
	page := &fakePage{
		bodyText:    "Open Positions",
		structured:  []any{map[string]any{"title": "Engineer"}},
		selectorErr: errors.New("timeout waiting for selector"),
	}
	driver := &fakeDriver{session: &fakeSession{page: page}}

	s := newTestBrowserStrategy(driver)
	recs, err := s.FetchJobs(context.Background(), browserTarget())

	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.True(t, page.networkIdleRan)
}

func TestBrowserStrategyNavigationErrorIsRetried(t *testing.T) {
	page := &fakePage{bodyText: "irrelevant", gotoErr: errors.New("net::ERR_TIMED_OUT")}
	driver := &fakeDriver{session: &fakeSession{page: page}}

	s := newTestBrowserStrategy(driver)
	cfg := browserTarget()
	cfg.MaxRetries = 2
	_, err := s.FetchJobs(context.Background(), cfg)

	assert.Error(t, err)
	assert.Equal(t, 2, driver.launches)
}

func TestBrowserStrategyEmptyPageIsEmptySuccess(t *testing.T) {
	page := &fakePage{bodyText: "Nothing interesting here", structured: []any{}, jsonldBlocks: []any{}}
	driver := &fakeDriver{session: &fakeSession{page: page}}

	s := newTestBrowserStrategy(driver)
	recs, err := s.FetchJobs(context.Background(), browserTarget())

	assert.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}
