// Package discovery locates a company's careers page when the target
// config only names the company site. It probes well-known paths and
// follows career-looking anchors on the landing page.
package discovery

import (
	"context"
	"log/slog"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/gocolly/colly/v2"
)

var careersProbePaths = []string{
	"/careers",
	"/jobs",
	"/careers/jobs",
	"/join-us",
	"/work-with-us",
	"/about/careers",
}

var careerLinkHints = []string{"career", "job", "opening", "position", "join", "hiring", "vacanc"}

// atsHosts are hosted applicant tracking systems. A link to one of these
// beats any path on the company's own domain.
var atsHosts = []string{
	"boards.greenhouse.io",
	"jobs.lever.co",
	"jobs.ashbyhq.com",
	"apply.workable.com",
	"jobs.smartrecruiters.com",
	"myworkdayjobs.com",
	"bamboohr.com",
	"recruitee.com",
}

type Prober struct {
	fetcher *politeFetcher
}

func NewProber(userAgent string) *Prober {
	return &Prober{fetcher: newPoliteFetcher(userAgent)}
}

type candidate struct {
	url   string
	score int
}

// CareersURL resolves the most likely careers page for a company site.
// The site root itself is returned when nothing better is found.
func (p *Prober) CareersURL(ctx context.Context, siteURL string) (string, error) {
	base, err := url.Parse(siteURL)
	if err != nil {
		return "", err
	}
	if base.Scheme == "" {
		base.Scheme = "https"
	}

	seen := map[string]struct{}{}
	var candidates []candidate
	add := func(raw string, score int) {
		if raw == "" {
			return
		}
		if _, ok := seen[raw]; ok {
			return
		}
		seen[raw] = struct{}{}
		candidates = append(candidates, candidate{url: raw, score: score})
	}

	for _, link := range p.collectCareerLinks(ctx, base.String(), base) {
		add(link.url, link.score)
	}

	for _, probe := range probeURLs(base) {
		status, err := p.fetcher.fetch(ctx, probe, nil)
		if err != nil {
			slog.Debug("careers probe failed", "url", probe, "status", status, "error", err)
			continue
		}
		add(probe, scoreLink(probe, base))
	}

	if len(candidates) == 0 {
		return base.String(), nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	return candidates[0].url, nil
}

func (p *Prober) collectCareerLinks(ctx context.Context, target string, base *url.URL) []candidate {
	var out []candidate
	_, err := p.fetcher.fetch(ctx, target, func(c *colly.Collector) {
		c.OnHTML("a[href]", func(e *colly.HTMLElement) {
			href := e.Attr("href")
			resolved := resolveLink(base, href)
			if resolved == "" {
				return
			}
			score := scoreLink(resolved, base)
			if score <= 0 {
				// Anchor text can still mark a bland URL as careers.
				if containsHint(strings.ToLower(e.Text)) {
					score = 1
				} else {
					return
				}
			}
			out = append(out, candidate{url: resolved, score: score})
		})
	})
	if err != nil {
		slog.Debug("careers link scan failed", "url", target, "error", err)
	}
	return out
}

func probeURLs(base *url.URL) []string {
	var out []string
	for _, p := range careersProbePaths {
		res := *base
		res.Path = path.Clean(p)
		res.RawQuery = ""
		out = append(out, res.String())
	}
	return out
}

func scoreLink(raw string, base *url.URL) int {
	u, err := url.Parse(raw)
	if err != nil {
		return 0
	}
	host := normalizeHost(u.Hostname())
	for _, ats := range atsHosts {
		if host == ats || strings.HasSuffix(host, "."+ats) {
			return 10
		}
	}
	lower := strings.ToLower(u.Path)
	if base != nil && host != normalizeHost(base.Hostname()) {
		// External non-ATS links are rarely the careers page.
		return 0
	}
	for _, hint := range careerLinkHints {
		if strings.Contains(lower, hint) {
			return 5
		}
	}
	return 0
}

func containsHint(s string) bool {
	for _, hint := range careerLinkHints {
		if strings.Contains(s, hint) {
			return true
		}
	}
	return false
}

func resolveLink(base *url.URL, href string) string {
	if href == "" || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "#") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}
