package content

import (
	"encoding/json"
	"strings"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

// ParseJSONLD decodes one <script type="application/ld+json"> block and
// returns a raw record for every JobPosting it describes. Blocks that fail
// to parse yield nothing; a bad block never aborts the caller.
func ParseJSONLD(raw string) []jobs.RawRecord {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	var out []jobs.RawRecord
	collectJobPostings(payload, &out)
	return out
}

func collectJobPostings(payload any, out *[]jobs.RawRecord) {
	switch t := payload.(type) {
	case map[string]any:
		if isJobPostingType(t["@type"]) {
			*out = append(*out, recordFromJobPosting(t))
			return
		}
		if graph, ok := t["@graph"].([]any); ok {
			for _, item := range graph {
				collectJobPostings(item, out)
			}
		}
	case []any:
		for _, item := range t {
			collectJobPostings(item, out)
		}
	}
}

func isJobPostingType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "JobPosting"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

// recordFromJobPosting flattens the schema.org shape into the raw field
// names the normalization pipeline resolves.
func recordFromJobPosting(posting map[string]any) jobs.RawRecord {
	rec := jobs.RawRecord{}

	if id := stringField(posting["identifier"]); id != "" {
		rec["id"] = id
	} else {
		setIfPresent(rec, "id", posting["id"])
	}
	setIfPresent(rec, "title", posting["title"])
	setIfPresent(rec, "description", posting["description"])
	if loc := locationField(posting["jobLocation"]); loc != "" {
		rec["location"] = loc
	}
	if dep := organizationName(posting["hiringOrganization"]); dep != "" {
		rec["department"] = dep
	} else {
		setIfPresent(rec, "department", posting["department"])
	}
	setIfPresent(rec, "type", posting["employmentType"])
	setIfPresent(rec, "postedDate", posting["datePosted"])
	if u := stringField(posting["url"]); u != "" {
		rec["applyUrl"] = u
	} else {
		setIfPresent(rec, "applyUrl", posting["applicationUrl"])
	}
	return rec
}

func setIfPresent(rec jobs.RawRecord, key string, v any) {
	if s := stringField(v); s != "" {
		rec[key] = s
	}
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if val, ok := t["@value"]; ok {
			if s, ok2 := val.(string); ok2 {
				return strings.TrimSpace(s)
			}
		}
	case []any:
		for _, item := range t {
			if s := stringField(item); s != "" {
				return s
			}
		}
	}
	return ""
}

func organizationName(v any) string {
	if org, ok := v.(map[string]any); ok {
		if name := stringField(org["name"]); name != "" {
			return name
		}
	}
	return stringField(v)
}

func locationField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if loc := locationField(item); loc != "" {
				return loc
			}
		}
	case map[string]any:
		if addr, ok := t["address"].(map[string]any); ok {
			if locality := stringField(addr["addressLocality"]); locality != "" {
				return locality
			}
			return joinParts(
				stringField(addr["addressRegion"]),
				stringField(addr["addressCountry"]),
			)
		}
		if name := stringField(t["name"]); name != "" {
			return name
		}
	}
	return ""
}

func joinParts(parts ...string) string {
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(p))
	}
	return strings.Join(out, ", ")
}
