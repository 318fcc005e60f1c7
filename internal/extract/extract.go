// Package extract pulls address-bearing text off a loaded result page.
//
// The page's structure is not a contract: class names rotate and data
// attributes disappear. Extraction therefore runs an ordered list of
// independent strategies and the first qualifying hit wins. Each strategy is
// a plain descriptor so it can be tested, reordered, or replaced without
// touching the orchestration.
package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zipscout/zipscout/internal/address"
	"github.com/zipscout/zipscout/internal/browser"
	"github.com/zipscout/zipscout/internal/textnorm"
)

// Source says how a strategy reads the page.
type Source int

const (
	// SourceSelector reads the visible text of elements matching Selector.
	SourceSelector Source = iota
	// SourceSnapshot parses a full HTML snapshot and scans the elements
	// matching Selector for address-shaped text. Slower, used as the broad
	// fallback.
	SourceSnapshot
)

// Strategy is one way of locating address text on the page.
type Strategy struct {
	Name     string
	Selector string
	Source   Source
}

// DefaultStrategies is the production strategy order: attribute-anchored
// address fields first, class-based text fields next, then the broad
// snapshot scan over generic text-bearing elements.
var DefaultStrategies = []Strategy{
	{Name: "address-button", Selector: `button[data-item-id="address"]`, Source: SourceSelector},
	{Name: "address-item", Selector: `[data-item-id="address"]`, Source: SourceSelector},
	{Name: "address-aria", Selector: `button[aria-label*="Address"]`, Source: SourceSelector},
	{Name: "info-text", Selector: `div.Io6YTe`, Source: SourceSelector},
	{Name: "info-row", Selector: `div.rogA2c`, Source: SourceSelector},
	{Name: "snapshot-scan", Selector: `div, span, p, td, li`, Source: SourceSnapshot},
}

const (
	// minTextLen rejects fragments too short to hold "number + street".
	minTextLen = 10
	// maxTextLen rejects container elements whose text is a whole pane.
	maxTextLen = 250
)

// Candidate is address-looking text found by one strategy.
type Candidate struct {
	Raw        string
	Normalized string
	Strategy   string
}

// FromResultPage tries each strategy in order against the loaded page and
// returns the first qualifying candidate. found is false when no strategy
// produced one; err is non-nil only when every strategy failed to read the
// page at all.
func FromResultPage(ctx context.Context, sess browser.Session, strategies []Strategy) (c Candidate, found bool, err error) {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}

	var lastErr error
	reads := 0
	for _, st := range strategies {
		texts, rerr := readTexts(ctx, sess, st)
		if rerr != nil {
			lastErr = rerr
			continue
		}
		reads++
		for _, raw := range texts {
			norm := textnorm.Normalize(raw)
			if !qualifies(norm) {
				continue
			}
			return Candidate{Raw: raw, Normalized: norm, Strategy: st.Name}, true, nil
		}
	}

	if reads == 0 && lastErr != nil {
		return Candidate{}, false, lastErr
	}
	return Candidate{}, false, nil
}

func readTexts(ctx context.Context, sess browser.Session, st Strategy) ([]string, error) {
	switch st.Source {
	case SourceSnapshot:
		html, err := sess.HTML(ctx)
		if err != nil {
			return nil, err
		}
		return ScanSnapshot(html, st.Selector), nil
	default:
		return sess.Texts(ctx, st.Selector)
	}
}

// ScanSnapshot parses an HTML document and returns the text of elements
// matching selector, leaf-most first: an element whose text equals a
// child's contributes nothing new and is skipped.
func ScanSnapshot(html, selector string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" || len(text) > maxTextLen {
			return
		}
		if s.Children().Length() > 0 && strings.TrimSpace(s.Children().Text()) == text {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		out = append(out, text)
	})
	return out
}

// qualifies is the address-shape gate: enough text, a digit, and a street
// suffix somewhere after it.
func qualifies(norm string) bool {
	if len(norm) < minTextLen || len(norm) > maxTextLen {
		return false
	}
	return address.LooksLikeAddress(norm)
}
