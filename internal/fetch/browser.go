// Package fetch - browser.go provides headless browser rendering for script-rendered sites.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	jsBodyText = `document.body ? document.body.innerText : ""`
	jsMainText = `(function () {
		var el = document.querySelector("main") || document.body;
		return el ? el.innerText : "";
	})()`
	jsLinks = `Array.from(document.querySelectorAll("a[href]"), function (a) { return a.href; })`
)

// BrowserOptions configures the headless browser process.
type BrowserOptions struct {
	Headless  bool
	ExecPath  string
	UserAgent string
	Width     int
	Height    int
}

// VisitOptions bounds each stage of a page visit. Zero values skip the stage.
type VisitOptions struct {
	NavigationTimeout  time.Duration
	NetworkIdleTimeout time.Duration
	BodyWaitTimeout    time.Duration
	SettleDelay        time.Duration
}

// RenderedPage is the DOM state of a page after rendering.
type RenderedPage struct {
	URL      string
	Title    string
	HTML     string
	Text     string
	MainText string
	Links    []string
}

// Browser is one headless Chrome process. Each Visit runs in its own tab.
// A Browser must be closed with Close.
type Browser struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	closeOnce   sync.Once
}

// OpenBrowser launches a headless browser. The browser lives until Close is
// called or ctx is cancelled. Requires Chrome/Chromium to be installed.
func OpenBrowser(ctx context.Context, opts BrowserOptions) (*Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.Width > 0 && opts.Height > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.Width, opts.Height))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// An empty Run starts the process so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Browser{
		ctx:         browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (b *Browser) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = chromedp.Cancel(b.ctx)
		b.cancelCtx()
		b.cancelAlloc()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	})
	return err
}

// Visit renders pageURL in a new tab: navigate, wait (bounded) for network
// idle, wait for <body>, let scripts settle, then read the DOM.
// Network idle that never arrives is not an error.
func (b *Browser) Visit(ctx context.Context, pageURL string, opts VisitOptions) (*RenderedPage, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.ctx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var armed atomic.Bool
	idle := make(chan struct{})
	var idleOnce sync.Once
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" && armed.Load() {
			idleOnce.Do(func() { close(idle) })
		}
	})

	var rendered RenderedPage
	err := chromedp.Run(tabCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			armed.Store(true)
			return withTimeout(ctx, opts.NavigationTimeout, chromedp.Navigate(pageURL))
		}),
		waitNetworkIdle(idle, opts.NetworkIdleTimeout),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return withTimeout(ctx, opts.BodyWaitTimeout, chromedp.WaitReady("body", chromedp.ByQuery))
		}),
		chromedp.Sleep(opts.SettleDelay),
		chromedp.Location(&rendered.URL),
		chromedp.Title(&rendered.Title),
		chromedp.Evaluate(jsBodyText, &rendered.Text),
		chromedp.Evaluate(jsMainText, &rendered.MainText),
		chromedp.Evaluate(jsLinks, &rendered.Links),
		chromedp.OuterHTML("html", &rendered.HTML, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Error{URL: pageURL, Message: "browser rendering failed", Cause: err}
	}
	return &rendered, nil
}

func withTimeout(ctx context.Context, timeout time.Duration, action chromedp.Action) error {
	if timeout <= 0 {
		return action.Do(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return action.Do(ctx)
}

func waitNetworkIdle(idle <-chan struct{}, timeout time.Duration) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		if timeout <= 0 {
			return nil
		}
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-idle:
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}
}
