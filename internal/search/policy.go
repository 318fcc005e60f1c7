package search

import "time"

// Retry happens at two separate layers and they must not blur together:
// EntryPolicy walks alternate search terms and result entries inside a
// single attempt and never sleeps; UnitRetryPolicy re-runs a whole attempt
// after a hard fault, with backoff. NotFound is a terminal answer and is
// never retried by either layer.

// EntryPolicy bounds the inner, fault-free fallback walk.
type EntryPolicy struct {
	// Terms are the search-term variants tried in priority order.
	Terms []string
	// EntriesPerTerm caps how many result entries are evaluated per term.
	EntriesPerTerm int
}

func (p EntryPolicy) withDefaults() EntryPolicy {
	if len(p.Terms) == 0 {
		p.Terms = []string{"post office"}
	}
	if p.EntriesPerTerm < 1 {
		p.EntriesPerTerm = 3
	}
	return p
}

// UnitRetryPolicy bounds the outer re-run of a unit after it resolved to
// Error. A unit consumes at most 1+MaxRetries attempts.
type UnitRetryPolicy struct {
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	JitterFrac     float64
}

func (p UnitRetryPolicy) withDefaults() UnitRetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BackoffInitial <= 0 {
		p.BackoffInitial = 2 * time.Second
	}
	if p.BackoffMax <= 0 {
		p.BackoffMax = 30 * time.Second
	}
	return p
}
