// Package browser wraps browser automation behind the narrow capability
// surface the dynamic fetch strategy needs: navigation, selector waits,
// in-page script evaluation, and screenshots. Callers never touch the
// underlying automation library directly, so tests can substitute fakes.
package browser

import (
	"context"
	"time"
)

// Viewport is the fixed page size every session opens with.
type Viewport struct {
	Width  int
	Height int
}

// LaunchOptions configures one browser session.
type LaunchOptions struct {
	Headless         bool
	Args             []string
	UserAgent        string
	Debug            bool
	BlockStylesheets bool
	Viewport         Viewport
	DefaultTimeout   time.Duration
}

// Driver starts browser sessions.
type Driver interface {
	Launch(ctx context.Context, opts LaunchOptions) (Session, error)
}

// Session owns a browser plus one context; Close releases both.
type Session interface {
	NewPage() (Page, error)
	Close() error
}

// Page is a single tab. Every blocking call honours the timeout it is
// given; a timeout surfaces as an error, never a hang.
type Page interface {
	Goto(url string, timeout time.Duration) error
	WaitForSelector(selector string, timeout time.Duration) error
	WaitForNetworkIdle(timeout time.Duration) error
	// Evaluate runs one of the fixed scripts in page context and returns
	// its JSON-serializable result.
	Evaluate(script string) (any, error)
	Screenshot(path string) error
	URL() string
	Close() error
}

// DefaultViewport matches what the production configuration uses.
var DefaultViewport = Viewport{Width: 1280, Height: 1024}
