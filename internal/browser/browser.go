// Package browser wraps chromedp behind the small surface the pipeline
// needs. One Browser owns the Chrome process; every work unit gets its own
// Session (a fresh tab context) so cookies and navigation history never
// leak between units.
package browser

import (
	"context"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// Session is the automation collaborator boundary. Everything above this
// package talks to a Session, never to chromedp, which keeps the
// orchestration testable against fakes.
type Session interface {
	// Navigate loads url and waits for the document body to be ready.
	Navigate(ctx context.Context, url string) error
	// WaitForAny polls until one of the selectors matches at least one
	// element, returning the selector that hit.
	WaitForAny(ctx context.Context, selectors []string, timeout time.Duration) (string, error)
	// Texts returns the visible text of every element matching selector.
	Texts(ctx context.Context, selector string) ([]string, error)
	// Links returns the href of every anchor matching selector whose href
	// contains the given substring. Duplicates are removed, order kept.
	Links(ctx context.Context, selector, hrefContains string) ([]string, error)
	// HTML returns a snapshot of the current document.
	HTML(ctx context.Context) (string, error)
	// DismissConsent best-effort clicks through a cookie consent
	// interstitial. Failure is not an error.
	DismissConsent(ctx context.Context)
	// Screenshot captures the viewport to path. Diagnostic only.
	Screenshot(ctx context.Context, path string) error
	// Close releases the tab context.
	Close()
}

// Options tunes Chrome startup.
type Options struct {
	Headless bool
	// ExecPath overrides the Chrome binary; empty uses CHROME_PATH or the
	// chromedp default lookup.
	ExecPath string
}

// Browser owns the shared Chrome allocator that sessions are spawned from.
type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// New starts the Chrome allocator. Callers must Close it.
func New(parent context.Context, opts Options) *Browser {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) "+
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"),
	)

	execPath := opts.ExecPath
	if execPath == "" {
		execPath = os.Getenv("CHROME_PATH")
	}
	if execPath != "" {
		execOpts = append(execOpts, chromedp.ExecPath(execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, execOpts...)
	return &Browser{allocCtx: allocCtx, allocCancel: allocCancel}
}

// NewSession opens an isolated tab context.
func (b *Browser) NewSession() Session {
	tabCtx, cancel := chromedp.NewContext(b.allocCtx)
	return &chromeSession{ctx: tabCtx, cancel: cancel}
}

// Close tears down the allocator and every remaining session.
func (b *Browser) Close() {
	b.allocCancel()
}
