package jobs

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Alias tables map each canonical field to the raw key names sources use
// for it, in resolution order. A tagged lookup, not reflection.
var (
	titleAliases       = []string{"title", "position_title", "job_title", "jobTitle", "name", "position"}
	idAliases          = []string{"id", "job_id", "jobId", "identifier", "slug", "reference"}
	descriptionAliases = []string{"description", "job_description", "jobDescription", "summary", "content"}
	locationAliases    = []string{"location", "job_location", "jobLocation", "city", "office", "address"}
	departmentAliases  = []string{"department", "team", "category", "division", "hiring_organization"}
	typeAliases        = []string{"type", "employment_type", "employmentType", "job_type", "jobType"}
	postedDateAliases  = []string{"posted_date", "postedDate", "created_at", "createdAt", "date_posted", "datePosted", "published_at"}
	applyURLAliases    = []string{"apply_url", "applyUrl", "url", "absolute_url", "hostedUrl", "link", "href"}
)

var postedDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
}

// Pipeline converts raw records into canonical jobs. The zero value is not
// usable; construct with NewPipeline.
type Pipeline struct {
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// Normalize maps every raw record with a resolvable title onto the
// canonical schema. Records without a title are dropped, never reported as
// errors. Output order follows input order and every job in one call
// shares the same ProcessedAt.
func (p *Pipeline) Normalize(raw []RawRecord, source string) []Job {
	if source == "" {
		source = DefaultSource
	}
	processedAt := p.now().UTC()

	derived := map[string]int{}
	out := make([]Job, 0, len(raw))
	for _, rec := range raw {
		title := rec.String(titleAliases...)
		if title == "" {
			continue
		}

		id := rec.String(idAliases...)
		if id == "" {
			id = deriveID(title, processedAt)
			// Same title twice in one batch would collide; an ordinal
			// keeps every derived id unique within the result set.
			derived[id]++
			if n := derived[id]; n > 1 {
				id = fmt.Sprintf("%s-%d", id, n)
			}
		}

		posted := rec.String(postedDateAliases...)
		postedDate := processedAt.Format(time.RFC3339)
		if t, ok := parsePostedDate(posted); ok {
			postedDate = t.Format(time.RFC3339)
		}

		out = append(out, Job{
			ID:          id,
			Title:       title,
			Description: p.cleanText(rec.String(descriptionAliases...)),
			Location:    rec.String(locationAliases...),
			Department:  rec.String(departmentAliases...),
			Type:        rec.String(typeAliases...),
			PostedDate:  postedDate,
			ApplyURL:    rec.String(applyURLAliases...),
			Source:      source,
			ProcessedAt: processedAt,
			RawData:     rec.Clone(),
		})
	}
	return out
}

// cleanText strips markup from source-supplied text and collapses the
// leftover whitespace.
func (p *Pipeline) cleanText(s string) string {
	if s == "" {
		return ""
	}
	cleaned := p.sanitizer.Sanitize(s)
	return strings.Join(strings.Fields(cleaned), " ")
}

func parsePostedDate(val string) (time.Time, bool) {
	if val == "" {
		return time.Time{}, false
	}
	for _, layout := range postedDateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// deriveID builds a deterministic id for records the source left unkeyed.
func deriveID(title string, processedAt time.Time) string {
	return fmt.Sprintf("%s-%d", Slugify(title), processedAt.Unix())
}

// Slugify lowercases a title, strips diacritics, and joins the remaining
// alphanumeric runs with dashes.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	flat, _, err := transform.String(t, s)
	if err != nil {
		flat = s
	}
	flat = strings.ToLower(flat)

	var b strings.Builder
	lastDash := true
	for _, r := range flat {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
