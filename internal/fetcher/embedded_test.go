package fetcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/httpx"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

func embeddedTarget() jobs.TargetConfig {
	return jobs.TargetConfig{CareersURL: "https://acme.example/careers"}
}

func TestEmbeddedStrategyJSONLD(t *testing.T) {
	markup := `<html><head>
		<script type="application/ld+json">{
			"@type": "JobPosting",
			"identifier": "job-123",
			"title": "Backend Engineer",
			"hiringOrganization": {"name": "Acme"}
		}</script>
	</head></html>`
	doer := &fakeDoer{responses: map[string]*httpx.Response{
		"https://acme.example/careers": htmlResponse(200, markup),
	}}

	s := NewEmbeddedStrategy(doer)
	recs, err := s.FetchJobs(context.Background(), embeddedTarget())

	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, "job-123", recs[0]["id"])
	assert.Equal(t, "Backend Engineer", recs[0]["title"])
	assert.Equal(t, "Acme", recs[0]["department"])
}

func TestEmbeddedStrategyFallsBackToScriptLiterals(t *testing.T) {
	markup := `<html><head>
		<script type="application/ld+json">{"@type": "WebPage"}</script>
		<script>window.__DATA__ = {"jobs": [{"title": "SRE", "location": "Remote"}]};</script>
	</head></html>`
	doer := &fakeDoer{responses: map[string]*httpx.Response{
		"https://acme.example/careers": htmlResponse(200, markup),
	}}

	s := NewEmbeddedStrategy(doer)
	recs, err := s.FetchJobs(context.Background(), embeddedTarget())

	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, "SRE", recs[0]["title"])
}

func TestEmbeddedStrategyNoEmbeddedData(t *testing.T) {
	doer := &fakeDoer{responses: map[string]*httpx.Response{
		"https://acme.example/careers": htmlResponse(200, "<html><body>static page</body></html>"),
	}}

	s := NewEmbeddedStrategy(doer)
	_, err := s.FetchJobs(context.Background(), embeddedTarget())

	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, "no embedded data found", pe.Reason)
}

func TestEmbeddedStrategyPageNotAccessible(t *testing.T) {
	doer := &fakeDoer{responses: map[string]*httpx.Response{
		"https://acme.example/careers": htmlResponse(500, "oops"),
	}}

	s := NewEmbeddedStrategy(doer)
	_, err := s.FetchJobs(context.Background(), embeddedTarget())

	var se *httpx.StatusError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, 500, se.Code)
}
