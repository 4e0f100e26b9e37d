package content

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
)

// listingSelectors are the container/sub-selector patterns we know careers
// pages to use, tried in order until one matches anything.
var listingSelectors = []struct {
	Container string
	Title     string
	Location  string
	Dept      string
	Link      string
}{
	{Container: ".job-listing, .job-item, .career-item", Title: ".job-title, h3, h4", Location: ".job-location, .location", Dept: ".job-department, .department", Link: "a[href]"},
	{Container: "[class*=opening], .opening", Title: "a", Location: ".location", Dept: ".department, .team", Link: "a[href]"},
	{Container: "li.position, .position", Title: ".title, h3", Location: ".location", Dept: ".category", Link: "a[href]"},
}

// ParseJobs extracts raw job records from static careers-page markup.
// Relative apply links are resolved against baseURL.
func ParseJobs(markup, baseURL string) ([]jobs.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, _ := url.Parse(baseURL)

	for _, sel := range listingSelectors {
		var records []jobs.RawRecord
		doc.Find(sel.Container).Each(func(_ int, s *goquery.Selection) {
			title := strings.TrimSpace(s.Find(sel.Title).First().Text())
			if title == "" {
				return
			}
			rec := jobs.RawRecord{"title": title}
			if loc := strings.TrimSpace(s.Find(sel.Location).First().Text()); loc != "" {
				rec["location"] = loc
			}
			if dept := strings.TrimSpace(s.Find(sel.Dept).First().Text()); dept != "" {
				rec["department"] = dept
			}
			if href, ok := s.Find(sel.Link).First().Attr("href"); ok && href != "" {
				rec["apply_url"] = ResolveURL(base, href)
			}
			records = append(records, rec)
		})
		if len(records) > 0 {
			return records, nil
		}
	}
	return nil, nil
}

// ScriptBlocks returns the text of every script element matching the given
// type attribute; pass an empty typeAttr for untyped inline scripts.
func ScriptBlocks(markup, typeAttr string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	selector := "script"
	if typeAttr != "" {
		selector = fmt.Sprintf("script[type='%s']", typeAttr)
	}
	var blocks []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if typeAttr == "" {
			if t, ok := s.Attr("type"); ok && t != "" && t != "text/javascript" {
				return
			}
			if _, external := s.Attr("src"); external {
				return
			}
		}
		if text := s.Text(); strings.TrimSpace(text) != "" {
			blocks = append(blocks, text)
		}
	})
	return blocks, nil
}

// ResolveURL makes an href absolute against the page it came from.
func ResolveURL(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	return u.String()
}

// PlainText flattens markup to its visible text.
func PlainText(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return markup
	}
	text := extractText(doc)
	return strings.Join(strings.Fields(text), " ")
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return ""
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(extractText(c))
		sb.WriteByte(' ')
	}
	return sb.String()
}
