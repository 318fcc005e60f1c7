// Package search resolves one work unit to a terminal outcome by driving a
// browser session through the map search flow: search by term variant,
// walk the top result entries, extract and validate an address, fall back
// until something sticks or everything is exhausted.
package search

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/zipscout/zipscout/internal/address"
	"github.com/zipscout/zipscout/internal/browser"
	"github.com/zipscout/zipscout/internal/cleanerr"
	"github.com/zipscout/zipscout/internal/extract"
	"github.com/zipscout/zipscout/internal/store"
	"github.com/zipscout/zipscout/internal/worker"
)

// Orchestrator resolves work units. It is stateless across units; all
// per-unit state lives on the stack of Resolve.
type Orchestrator struct {
	Entry      EntryPolicy
	Strategies []extract.Strategy

	// NavTimeout bounds the wait for search results to render.
	NavTimeout time.Duration

	// ScreenshotDir, when set, receives a diagnostic capture on navigation
	// faults.
	ScreenshotDir string

	// Logf defaults to log.Printf.
	Logf func(format string, args ...any)
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// SearchURL builds the map search URL for a term and unit.
func SearchURL(term string, unit store.WorkUnit) string {
	query := fmt.Sprintf("%s %s %s", term, unit.Zipcode, unit.State)
	return searchBaseURL + strings.ReplaceAll(query, " ", "+")
}

// Resolve runs one attempt for the unit and always returns a terminal
// outcome: Valid on the first validated and geo-consistent candidate,
// NotFound when every term and entry is exhausted, Error on the first hard
// navigation fault. Per-entry extraction misses and validation rejections
// are absorbed here and never surface.
func (o *Orchestrator) Resolve(ctx context.Context, sess browser.Session, unit store.WorkUnit) store.Outcome {
	entry := o.Entry.withDefaults()
	navTimeout := o.NavTimeout
	if navTimeout <= 0 {
		navTimeout = 30 * time.Second
	}

	for _, term := range entry.Terms {
		searchURL := SearchURL(term, unit)
		if err := sess.Navigate(ctx, searchURL); err != nil {
			return o.fault(ctx, sess, unit, fmt.Errorf("search %q: %w", term, err))
		}
		sess.DismissConsent(ctx)

		matched, err := sess.WaitForAny(ctx, resultWaitSelectors, navTimeout)
		if err != nil {
			return o.fault(ctx, sess, unit, fmt.Errorf("results for %q: %w", term, err))
		}

		links, err := o.resultLinks(ctx, sess)
		if err != nil {
			return o.fault(ctx, sess, unit, fmt.Errorf("result entries for %q: %w", term, err))
		}
		if len(links) > entry.EntriesPerTerm {
			links = links[:entry.EntriesPerTerm]
		}

		if len(links) == 0 {
			// A search can resolve straight to a single place page with no
			// result list; evaluate the current page as the only entry.
			if matched == placeHeaderSelector {
				if out, ok, err := o.evaluateEntry(ctx, sess, unit); err != nil {
					return o.fault(ctx, sess, unit, err)
				} else if ok {
					return out
				}
			}
			o.logf("unit %s: term %q produced no entries", unit, term)
			continue
		}

		for i, link := range links {
			if err := sess.Navigate(ctx, link); err != nil {
				return o.fault(ctx, sess, unit, fmt.Errorf("entry %d for %q: %w", i, term, err))
			}
			out, ok, err := o.evaluateEntry(ctx, sess, unit)
			if err != nil {
				return o.fault(ctx, sess, unit, err)
			}
			if ok {
				o.logf("unit %s: resolved via term %q entry %d", unit, term, i)
				return out
			}
		}
	}

	return store.Outcome{Unit: unit, Status: store.StatusNotFound}
}

// evaluateEntry extracts, parses, and validates the currently loaded entry.
// ok=false means the entry is rejected (extraction miss, validation reject,
// or geographic drift) and the walk should continue.
func (o *Orchestrator) evaluateEntry(ctx context.Context, sess browser.Session, unit store.WorkUnit) (store.Outcome, bool, error) {
	cand, found, err := extract.FromResultPage(ctx, sess, o.Strategies)
	if err != nil {
		return store.Outcome{}, false, err
	}
	if !found {
		return store.Outcome{}, false, nil
	}

	parsed := address.Parse(cand.Normalized)
	if !address.Valid(parsed) {
		return store.Outcome{}, false, nil
	}
	if !geoConsistent(cand.Normalized, unit) {
		o.logf("unit %s: candidate %q rejected for geographic drift", unit, cand.Normalized)
		return store.Outcome{}, false, nil
	}

	return store.Outcome{
		Unit:        unit,
		AddressLine: parsed.StreetLine,
		City:        parsed.City,
		Status:      store.StatusValid,
	}, true, nil
}

// resultLinks collects place links using the selector fallback list.
func (o *Orchestrator) resultLinks(ctx context.Context, sess browser.Session) ([]string, error) {
	var lastErr error
	read := false
	for _, sel := range resultLinkSelectors {
		links, err := sess.Links(ctx, sel, placeLinkFragment)
		if err != nil {
			lastErr = err
			continue
		}
		read = true
		if len(links) > 0 {
			return links, nil
		}
	}
	if read {
		return nil, nil
	}
	return nil, lastErr
}

func (o *Orchestrator) fault(ctx context.Context, sess browser.Session, unit store.WorkUnit, err error) store.Outcome {
	o.logf("unit %s: fault: %v", unit, err)
	if o.ScreenshotDir != "" {
		shot := filepath.Join(o.ScreenshotDir, fmt.Sprintf("fault_%s_%s.png", unit.Zipcode, unit.State))
		if serr := sess.Screenshot(ctx, shot); serr != nil {
			o.logf("unit %s: screenshot failed: %v", unit, serr)
		}
	}
	return store.Outcome{
		Unit:        unit,
		Status:      store.StatusError,
		ErrorDetail: cleanerr.Detail(err),
	}
}

var stateBeforeZipRe = regexp.MustCompile(`\b([A-Z]{2})\s+\d{5}(?:-\d{4})?\b`)

// geoConsistent rejects candidates whose text names a different ZIP or
// state than the unit asked for. Text with no parseable ZIP or state is
// accepted; drift can only be detected when the page states a location.
func geoConsistent(text string, unit store.WorkUnit) bool {
	zips := address.Zips(text)
	if len(zips) > 0 {
		match := false
		for _, z := range zips {
			if z == unit.Zipcode {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}

	if m := stateBeforeZipRe.FindStringSubmatch(text); m != nil {
		if !strings.EqualFold(m[1], unit.State) {
			return false
		}
	}
	return true
}

// ResolveWithRetry runs Resolve up to 1+policy.MaxRetries times, retrying
// only Error outcomes, with exponential backoff between attempts. Each
// attempt gets a fresh session from newSession. Valid and NotFound are
// accepted immediately; after the budget is spent the last Error stands.
func (o *Orchestrator) ResolveWithRetry(
	ctx context.Context,
	newSession func() browser.Session,
	unit store.WorkUnit,
	policy UnitRetryPolicy,
) store.Outcome {
	policy = policy.withDefaults()

	var out store.Outcome
	for attempt := 0; ; attempt++ {
		sess := newSession()
		out = o.Resolve(ctx, sess, unit)
		sess.Close()

		if out.Status != store.StatusError || attempt >= policy.MaxRetries {
			return out
		}
		if ctx.Err() != nil {
			return out
		}

		sleep := worker.Backoff(policy.BackoffInitial, policy.BackoffMax, policy.JitterFrac, attempt)
		o.logf("unit %s: attempt %d failed, retrying in %s", unit, attempt+1, sleep)
		t := time.NewTimer(sleep)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return out
		}
	}
}
