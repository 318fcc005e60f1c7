package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// consentSelectors dismiss the cookie interstitial Google serves on first
// contact from a fresh browsing context.
var consentSelectors = []string{
	`button[aria-label="Accept all"]`,
	`button[aria-label="I agree"]`,
	`button[aria-label="Accept all cookies"]`,
	`button[jsname="b3VHJd"]`,
}

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := s.merged(ctx)
	defer cancel()

	if err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *chromeSession) WaitForAny(ctx context.Context, selectors []string, timeout time.Duration) (string, error) {
	runCtx, cancel := s.merged(ctx)
	defer cancel()

	deadline := time.Now().Add(timeout)
	for {
		for _, sel := range selectors {
			var count int
			script := fmt.Sprintf(`document.querySelectorAll(%q).length`, sel)
			if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &count)); err == nil && count > 0 {
				return sel, nil
			}
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("no selector matched within %s", timeout)
		}
		select {
		case <-runCtx.Done():
			return "", runCtx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func (s *chromeSession) Texts(ctx context.Context, selector string) ([]string, error) {
	runCtx, cancel := s.merged(ctx)
	defer cancel()

	script := fmt.Sprintf(`(function() {
        const els = Array.from(document.querySelectorAll(%q));
        const out = [];
        for (const el of els) {
            const t = (el.innerText || el.textContent || '').trim();
            if (t) out.push(t);
        }
        return out;
    })()`, selector)

	var texts []string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &texts)); err != nil {
		return nil, fmt.Errorf("read texts %q: %w", selector, err)
	}
	return texts, nil
}

func (s *chromeSession) Links(ctx context.Context, selector, hrefContains string) ([]string, error) {
	runCtx, cancel := s.merged(ctx)
	defer cancel()

	script := fmt.Sprintf(`(function() {
        const els = Array.from(document.querySelectorAll(%q));
        const seen = new Set();
        const out = [];
        for (const el of els) {
            const href = el.href || el.getAttribute('href');
            if (href && href.includes(%q) && !seen.has(href)) {
                seen.add(href);
                out.push(href);
            }
        }
        return out;
    })()`, selector, hrefContains)

	var hrefs []string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &hrefs)); err != nil {
		return nil, fmt.Errorf("read links %q: %w", selector, err)
	}
	return hrefs, nil
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := s.merged(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("snapshot html: %w", err)
	}
	return html, nil
}

func (s *chromeSession) DismissConsent(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return
	}

	for _, sel := range consentSelectors {
		err := chromedp.Run(runCtx,
			chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible),
		)
		if err == nil {
			chromedp.Run(runCtx, chromedp.Sleep(time.Second)) //nolint:errcheck
			return
		}
	}
}

func (s *chromeSession) Screenshot(ctx context.Context, path string) error {
	runCtx, cancel := s.merged(ctx)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	return os.WriteFile(path, buf, 0o644)
}

func (s *chromeSession) Close() {
	s.cancel()
}

// merged ties the caller's deadline/cancellation to the tab context: the
// chromedp context carries the tab, the caller context carries the budget.
func (s *chromeSession) merged(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
