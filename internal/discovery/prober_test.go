package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreLinkPrefersATSHosts(t *testing.T) {
	base, _ := url.Parse("https://acme.example")

	assert.Equal(t, 10, scoreLink("https://boards.greenhouse.io/acme", base))
	assert.Equal(t, 10, scoreLink("https://jobs.lever.co/acme", base))
	assert.Equal(t, 5, scoreLink("https://acme.example/careers", base))
	assert.Equal(t, 0, scoreLink("https://acme.example/blog", base))
	assert.Equal(t, 0, scoreLink("https://unrelated.example/careers", base))
}

func TestResolveLink(t *testing.T) {
	base, _ := url.Parse("https://acme.example/about")

	assert.Equal(t, "https://acme.example/careers", resolveLink(base, "/careers"))
	assert.Equal(t, "https://other.example/jobs", resolveLink(base, "https://other.example/jobs"))
	assert.Equal(t, "", resolveLink(base, "mailto:hr@acme.example"))
	assert.Equal(t, "", resolveLink(base, "#openings"))
	assert.Equal(t, "", resolveLink(base, "javascript:void(0)"))
}

func TestProbeURLs(t *testing.T) {
	base, _ := url.Parse("https://acme.example")

	probes := probeURLs(base)

	assert.Contains(t, probes, "https://acme.example/careers")
	assert.Contains(t, probes, "https://acme.example/jobs")
}

func TestCareersURLFollowsCareerLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nAllow: /\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="/join-us">Careers at Acme</a></body></html>`))
	})
	mux.HandleFunc("/join-us", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>Open roles</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewProber("test-bot/1.0")
	resolved, err := p.CareersURL(context.Background(), srv.URL)

	assert.NoError(t, err)
	assert.Equal(t, srv.URL+"/join-us", resolved)
}

func TestCareersURLFallsBackToSiteRoot(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nAllow: /\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><body><a href="/blog">Blog</a></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewProber("test-bot/1.0")
	resolved, err := p.CareersURL(context.Background(), srv.URL)

	assert.NoError(t, err)
	assert.Equal(t, srv.URL, resolved)
}
