package content

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

// assignmentPattern finds variable assignments whose right-hand side opens a
// JSON-like object or array literal.
var assignmentPattern = regexp.MustCompile(`(?:var|let|const|window\.\w+|self\.\w+)?\s*[\w.$]*\s*=\s*([\[{])`)

// jobHintKeys must appear inside a candidate literal before we bother
// decoding it.
var jobHintKeys = []string{`"title"`, `"position_title"`, `"job_title"`, `"jobs"`, `"positions"`}

// ScanScriptLiterals inspects inline script bodies for assigned JSON
// literals that plausibly hold job data and converts any matches into raw
// records using the same field mapping as JSON-LD extraction.
func ScanScriptLiterals(scripts []string) []jobs.RawRecord {
	for _, script := range scripts {
		if !looksJobRelated(script) {
			continue
		}
		for _, loc := range assignmentPattern.FindAllStringSubmatchIndex(script, -1) {
			start := loc[2] // first byte of the opening bracket
			literal, err := extractJSONValue(script, start)
			if err != nil {
				continue
			}
			if recs := recordsFromLiteral(literal); len(recs) > 0 {
				return recs
			}
		}
	}
	return nil
}

func looksJobRelated(script string) bool {
	for _, key := range jobHintKeys {
		if strings.Contains(script, key) {
			return true
		}
	}
	return false
}

func recordsFromLiteral(literal string) []jobs.RawRecord {
	var payload any
	if err := json.Unmarshal([]byte(literal), &payload); err != nil {
		return nil
	}

	var items []any
	switch t := payload.(type) {
	case []any:
		items = t
	case map[string]any:
		for _, key := range []string{"jobs", "positions", "data", "openings"} {
			if arr, ok := t[key].([]any); ok {
				items = arr
				break
			}
		}
		if items == nil {
			items = []any{t}
		}
	default:
		return nil
	}

	var out []jobs.RawRecord
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var rec jobs.RawRecord
		if isJobPostingType(obj["@type"]) {
			rec = recordFromJobPosting(obj)
		} else {
			rec = jobs.RawRecord(obj)
		}
		if rec.String("title", "position_title", "job_title", "name") != "" {
			out = append(out, rec)
		}
	}
	return out
}

// extractJSONValue returns the balanced object or array literal starting at
// the given offset, tolerating braces inside string values.
func extractJSONValue(body string, start int) (string, error) {
	if start >= len(body) {
		return "", errors.New("literal start out of range")
	}
	open := body[start]
	var close byte
	switch open {
	case '{':
		close = '}'
	case '[':
		close = ']'
	default:
		return "", errors.New("not a literal start")
	}

	depth := 0
	inString := false
	escape := false
	for i := start; i < len(body); i++ {
		c := body[i]
		if inString {
			if escape {
				escape = false
				continue
			}
			if c == '\\' {
				escape = true
				continue
			}
			if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return body[start : i+1], nil
			}
		}
	}
	return "", errors.New("literal end not found")
}
