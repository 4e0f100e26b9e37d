package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// blockedResourceTypes never affect extracted data, only page weight.
var blockedResourceTypes = map[string]bool{
	"image": true,
	"font":  true,
	"media": true,
}

// PlaywrightDriver launches Chromium through playwright.
type PlaywrightDriver struct{}

func NewPlaywrightDriver() *PlaywrightDriver {
	return &PlaywrightDriver{}
}

func (d *PlaywrightDriver) Launch(ctx context.Context, opts LaunchOptions) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if len(opts.Args) > 0 {
		launchOpts.Args = opts.Args
	}
	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	viewport := opts.Viewport
	if viewport.Width == 0 || viewport.Height == 0 {
		viewport = DefaultViewport
	}
	ctxOpts := playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
		Viewport:          &playwright.Size{Width: viewport.Width, Height: viewport.Height},
	}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	bctx, err := b.NewContext(ctxOpts)
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("new browser context: %w", err)
	}

	return &playwrightSession{pw: pw, browser: b, ctx: bctx, opts: opts}, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	ctx     playwright.BrowserContext
	opts    LaunchOptions
}

func (s *playwrightSession) NewPage() (Page, error) {
	p, err := s.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	if s.opts.DefaultTimeout > 0 {
		p.SetDefaultTimeout(float64(s.opts.DefaultTimeout.Milliseconds()))
		p.SetDefaultNavigationTimeout(float64(s.opts.DefaultTimeout.Milliseconds()))
	}

	blockStyles := s.opts.BlockStylesheets
	err = p.Route("**/*", func(route playwright.Route) {
		kind := route.Request().ResourceType()
		if blockedResourceTypes[kind] || (blockStyles && kind == "stylesheet") {
			route.Abort()
			return
		}
		route.Continue()
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("install request filter: %w", err)
	}

	if s.opts.Debug {
		p.OnConsole(func(msg playwright.ConsoleMessage) {
			slog.Debug("page console", "type", msg.Type(), "text", msg.Text())
		})
	}

	return &playwrightPage{page: p}, nil
}

func (s *playwrightSession) Close() error {
	// Close failures are reported but must never mask the fetch result.
	var firstErr error
	if err := s.ctx.Close(); err != nil {
		firstErr = err
	}
	if err := s.browser.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.pw.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) WaitForSelector(selector string, timeout time.Duration) error {
	err := p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (p *playwrightPage) WaitForNetworkIdle(timeout time.Duration) error {
	err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("wait for network idle: %w", err)
	}
	return nil
}

func (p *playwrightPage) Evaluate(script string) (any, error) {
	return p.page.Evaluate(script)
}

func (p *playwrightPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func (p *playwrightPage) URL() string { return p.page.URL() }

func (p *playwrightPage) Close() error { return p.page.Close() }
