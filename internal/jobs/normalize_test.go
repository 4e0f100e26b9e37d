package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedPipeline(at time.Time) *Pipeline {
	p := NewPipeline()
	p.now = func() time.Time { return at }
	return p
}

func TestNormalizeDropsRecordsWithoutTitle(t *testing.T) {
	p := NewPipeline()
	raw := []RawRecord{
		{"title": "Backend Engineer"},
		{"location": "Remote"},
		{"title": "   "},
		{"name": "Data Analyst"},
	}

	out := p.Normalize(raw, "acme")

	assert.Len(t, out, 2)
	assert.Equal(t, "Backend Engineer", out[0].Title)
	assert.Equal(t, "Data Analyst", out[1].Title)
}

func TestNormalizeSharesProcessedAt(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := fixedPipeline(at)

	out := p.Normalize([]RawRecord{
		{"title": "One"},
		{"title": "Two"},
	}, "acme")

	assert.Len(t, out, 2)
	assert.Equal(t, at, out[0].ProcessedAt)
	assert.Equal(t, at, out[1].ProcessedAt)
}

func TestNormalizeResolvesAliases(t *testing.T) {
	p := NewPipeline()
	out := p.Normalize([]RawRecord{{
		"jobTitle":       "Platform Engineer",
		"job_id":         "plt-42",
		"jobDescription": "Build things",
		"city":           "Berlin",
		"team":           "Infrastructure",
		"employmentType": "Full-time",
		"datePosted":     "2025-02-10",
		"absolute_url":   "https://acme.example/jobs/42",
	}}, "acme")

	assert.Len(t, out, 1)
	j := out[0]
	assert.Equal(t, "plt-42", j.ID)
	assert.Equal(t, "Platform Engineer", j.Title)
	assert.Equal(t, "Build things", j.Description)
	assert.Equal(t, "Berlin", j.Location)
	assert.Equal(t, "Infrastructure", j.Department)
	assert.Equal(t, "Full-time", j.Type)
	assert.Equal(t, "2025-02-10T00:00:00Z", j.PostedDate)
	assert.Equal(t, "https://acme.example/jobs/42", j.ApplyURL)
	assert.Equal(t, "acme", j.Source)
}

func TestNormalizeDerivesMissingID(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := fixedPipeline(at)

	out := p.Normalize([]RawRecord{{"title": "Senior Gopher!"}}, "acme")

	assert.Len(t, out, 1)
	assert.Equal(t, "senior-gopher-1740830400", out[0].ID)
}

func TestNormalizeDerivedIDsUniqueWithinBatch(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := fixedPipeline(at)

	out := p.Normalize([]RawRecord{
		{"title": "Software Engineer", "location": "Berlin"},
		{"title": "Software Engineer", "location": "Lisbon"},
		{"title": "Software Engineer", "location": "Toronto"},
	}, "acme")

	assert.Len(t, out, 3)
	assert.Equal(t, "software-engineer-1740830400", out[0].ID)
	assert.Equal(t, "software-engineer-1740830400-2", out[1].ID)
	assert.Equal(t, "software-engineer-1740830400-3", out[2].ID)
}

func TestNormalizeDefaultsSource(t *testing.T) {
	p := NewPipeline()
	out := p.Normalize([]RawRecord{{"title": "Engineer"}}, "")

	assert.Len(t, out, 1)
	assert.Equal(t, DefaultSource, out[0].Source)
}

func TestNormalizeFallsBackToProcessedAtForBadDates(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := fixedPipeline(at)

	out := p.Normalize([]RawRecord{{"title": "Engineer", "posted_date": "sometime soon"}}, "acme")

	assert.Len(t, out, 1)
	assert.Equal(t, at.Format(time.RFC3339), out[0].PostedDate)
}

func TestNormalizeStripsMarkupFromDescription(t *testing.T) {
	p := NewPipeline()
	out := p.Normalize([]RawRecord{{
		"title":       "Engineer",
		"description": "<p>Build   <b>resilient</b> services</p>\n<script>alert(1)</script>",
	}}, "acme")

	assert.Len(t, out, 1)
	assert.Equal(t, "Build resilient services", out[0].Description)
}

func TestNormalizePreservesRawData(t *testing.T) {
	p := NewPipeline()
	rec := RawRecord{"title": "Engineer", "custom_field": "kept"}
	out := p.Normalize([]RawRecord{rec}, "acme")

	assert.Len(t, out, 1)
	assert.Equal(t, "kept", out[0].RawData["custom_field"])

	// Mutating the input record must not leak into the normalized job.
	rec["custom_field"] = "changed"
	assert.Equal(t, "kept", out[0].RawData["custom_field"])
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "senior-go-engineer", Slugify("Senior Go Engineer"))
	assert.Equal(t, "ete-developpeur", Slugify("Été Développeur"))
	assert.Equal(t, "c-engineer-remote", Slugify("C++ Engineer (Remote)"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestRawRecordString(t *testing.T) {
	rec := RawRecord{"title": "  Engineer  ", "count": float64(3), "empty": ""}

	assert.Equal(t, "Engineer", rec.String("missing", "title"))
	assert.Equal(t, "3", rec.String("count"))
	assert.Equal(t, "", rec.String("empty", "missing"))
}
