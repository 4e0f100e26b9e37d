package fetcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/httpx"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

// fakeDoer serves canned responses keyed by URL. Unknown URLs fail with a
// network error.
type fakeDoer struct {
	responses map[string]*httpx.Response
	errs      map[string]error
	calls     []string
}

func (f *fakeDoer) Get(ctx context.Context, rawURL string, headers map[string]string) (*httpx.Response, error) {
	f.calls = append(f.calls, rawURL)
	if err, ok := f.errs[rawURL]; ok {
		return nil, err
	}
	if resp, ok := f.responses[rawURL]; ok {
		return resp, nil
	}
	return nil, &httpx.ClientError{NetworkError: true, Err: errors.New("no route to host")}
}

func jsonResponse(status int, data any) *httpx.Response {
	return &httpx.Response{
		Status:  status,
		Data:    data,
		Success: status >= 200 && status < 300,
	}
}

func htmlResponse(status int, markup string) *httpx.Response {
	return &httpx.Response{
		Status:  status,
		Data:    markup,
		Body:    []byte(markup),
		Success: status >= 200 && status < 300,
	}
}

type fakeStrategy struct {
	name    string
	canDo   bool
	records []jobs.RawRecord
	err     error
	calls   int
}

func (f *fakeStrategy) Name() string                         { return f.name }
func (f *fakeStrategy) CanHandle(cfg jobs.TargetConfig) bool { return f.canDo }
func (f *fakeStrategy) FetchJobs(ctx context.Context, cfg jobs.TargetConfig) ([]jobs.RawRecord, error) {
	f.calls++
	return f.records, f.err
}

func TestOrchestratorUsesFirstSuccessfulStrategy(t *testing.T) {
	skipped := &fakeStrategy{name: "api", canDo: false}
	failing := &fakeStrategy{name: "json", canDo: true, err: &httpx.ClientError{NetworkError: true, Err: errors.New("down")}}
	winning := &fakeStrategy{name: "html", canDo: true, records: []jobs.RawRecord{
		{"title": "Backend Engineer"},
		{"location": "untitled, dropped in normalization"},
	}}

	o := NewOrchestratorWith(nil, skipped, failing, winning)
	result := o.FetchJobs(context.Background(), jobs.TargetConfig{CompanyID: "acme"}, "acme")

	assert.True(t, result.Success)
	assert.Equal(t, "html", result.Method)
	assert.Equal(t, 1, result.TotalCount)
	assert.Len(t, result.Jobs, 1)
	assert.Equal(t, "Backend Engineer", result.Jobs[0].Title)

	assert.Equal(t, 0, skipped.calls)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, winning.calls)
}

func TestOrchestratorFallsThroughScriptRenderedPage(t *testing.T) {
	spa := `<html><body><div id="root"></div><script src="/bundle.js"></script></body></html>`
	doer := &fakeDoer{responses: map[string]*httpx.Response{
		"https://acme.example/careers":           htmlResponse(200, spa),
		"https://acme.example/careers/jobs.json": htmlResponse(404, "not found"),
	}}
	browserLike := &fakeStrategy{name: "browser", canDo: true, records: []jobs.RawRecord{
		{"title": "Platform Engineer"},
	}}

	o := NewOrchestratorWith(nil,
		NewJSONStrategy(doer),
		NewHTMLStrategy(doer),
		NewEmbeddedStrategy(doer),
		browserLike,
	)
	result := o.FetchJobs(context.Background(), jobs.TargetConfig{CompanyID: "acme", CareersURL: "https://acme.example/careers"}, "acme")

	assert.True(t, result.Success)
	assert.Equal(t, "browser", result.Method)
	assert.Equal(t, 1, result.TotalCount)
	assert.Equal(t, "Platform Engineer", result.Jobs[0].Title)
	assert.Equal(t, 1, browserLike.calls)
}

func TestOrchestratorAllStrategiesFail(t *testing.T) {
	a := &fakeStrategy{name: "api", canDo: true, err: errors.New("boom")}
	b := &fakeStrategy{name: "browser", canDo: true, err: errors.New("boom too")}

	o := NewOrchestratorWith(nil, a, b)
	result := o.FetchJobs(context.Background(), jobs.TargetConfig{CompanyID: "acme"}, "acme")

	assert.False(t, result.Success)
	assert.Equal(t, "none", result.Method)
	assert.Equal(t, AllFailedMessage, result.Error)
	assert.NotNil(t, result.Jobs)
	assert.Empty(t, result.Jobs)
}

func TestOrchestratorNoApplicableStrategy(t *testing.T) {
	o := NewOrchestratorWith(nil, &fakeStrategy{name: "api", canDo: false})
	result := o.FetchJobs(context.Background(), jobs.TargetConfig{}, "")

	assert.False(t, result.Success)
	assert.Equal(t, "none", result.Method)
	assert.Equal(t, AllFailedMessage, result.Error)
}

func TestOrchestratorEmptySuccessIsSuccess(t *testing.T) {
	empty := &fakeStrategy{name: "browser", canDo: true, records: []jobs.RawRecord{}}

	o := NewOrchestratorWith(nil, empty)
	result := o.FetchJobs(context.Background(), jobs.TargetConfig{CompanyID: "acme"}, "acme")

	assert.True(t, result.Success)
	assert.Equal(t, "browser", result.Method)
	assert.Equal(t, 0, result.TotalCount)
	assert.NotNil(t, result.Jobs)
}

func TestOrchestratorDefaultsSource(t *testing.T) {
	winning := &fakeStrategy{name: "json", canDo: true, records: []jobs.RawRecord{{"title": "Engineer"}}}

	o := NewOrchestratorWith(nil, winning)
	result := o.FetchJobs(context.Background(), jobs.TargetConfig{CompanyID: "acme"}, "")

	assert.True(t, result.Success)
	assert.Equal(t, jobs.DefaultSource, result.Jobs[0].Source)
}
