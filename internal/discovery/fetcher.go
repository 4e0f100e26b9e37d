package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// politeFetcher wraps Colly with per-host rate limits and robots.txt checks
// so probing a company site stays well behaved.
type politeFetcher struct {
	userAgent string
	timeout   time.Duration
	client    *http.Client

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	robots   map[string]*robotstxt.RobotsData
}

func newPoliteFetcher(userAgent string) *politeFetcher {
	if userAgent == "" {
		userAgent = "drivehr-sync-bot/1.0"
	}
	return &politeFetcher{
		userAgent: userAgent,
		timeout:   15 * time.Second,
		client:    &http.Client{Timeout: 15 * time.Second},
		limiters:  map[string]*rate.Limiter{},
		robots:    map[string]*robotstxt.RobotsData{},
	}
}

func (f *politeFetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Every(time.Second), 2) // 1 req/s, burst 2
	f.limiters[host] = l
	return l
}

func (f *politeFetcher) robotsFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	host := u.Hostname()
	f.mu.Lock()
	if data, ok := f.robots[host]; ok {
		f.mu.Unlock()
		return data, nil
	}
	f.mu.Unlock()

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	if err := f.limiterFor(host).Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.robots[host] = data
	f.mu.Unlock()
	return data, nil
}

func (f *politeFetcher) allowed(ctx context.Context, u *url.URL) bool {
	data, err := f.robotsFor(ctx, u)
	if err != nil {
		return true // fail open to avoid blocking everything
	}
	group := data.FindGroup(f.userAgent)
	if group == nil {
		group = data.FindGroup("*")
	}
	if group == nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

// fetch runs a Colly collector against target after rate-limit and robots
// checks, returning the final status code.
func (f *politeFetcher) fetch(ctx context.Context, target string, register func(*colly.Collector)) (int, error) {
	u, err := url.Parse(target)
	if err != nil {
		return 0, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
		target = u.String()
	}

	if !f.allowed(ctx, u) {
		return 0, fmt.Errorf("blocked by robots.txt: %s", target)
	}
	if err := f.limiterFor(u.Hostname()).Wait(ctx); err != nil {
		return 0, err
	}

	c := colly.NewCollector(colly.UserAgent(f.userAgent))
	c.SetRequestTimeout(f.timeout)
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	status := 0
	var reqErr error
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})
	if register != nil {
		register(c)
	}

	if err := c.Visit(target); err != nil {
		return status, err
	}
	if reqErr != nil {
		return status, reqErr
	}
	if status == 0 {
		status = http.StatusOK
	}
	if status >= 400 {
		return status, errors.New(http.StatusText(status))
	}
	return status, nil
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
