package pagination

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for pagination runs.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sypht_pagination_pages_total",
		Help: "Total pages fetched by operation",
	}, []string{"operation"})

	limitExceededTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sypht_pagination_limit_exceeded_total",
		Help: "Total pagination runs aborted by the record limit, by operation",
	}, []string{"operation"})
)

// DefaultRecordLimit bounds how many records one pagination run may fetch
// before it is aborted.
const DefaultRecordLimit = 20000

// PageFunc fetches a single page. The offset is a zero-based page index,
// not a record index; the pager increments it by one per successful page.
type PageFunc[P any] func(ctx context.Context, offset int) (P, error)

// ExtractFunc extracts the ordered record sequence from a page response.
// An empty result terminates the run cleanly.
type ExtractFunc[P, R any] func(page P) ([]R, error)

// Identity is the extractor for endpoints whose response already is the
// record sequence.
func Identity[R any](page []R) ([]R, error) {
	return page, nil
}

// Option configures a Pager.
type Option func(*options)

type options struct {
	limit int
}

// WithRecordLimit overrides DefaultRecordLimit for one pager.
func WithRecordLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// Pager drives one pagination run. It is single-use and not safe for
// concurrent use.
type Pager[P, R any] struct {
	name    string
	fetch   PageFunc[P]
	extract ExtractFunc[P, R]
	limit   int

	offset  int
	pages   int
	records int
	done    bool
}

// New creates a pager named for the operation it serves; the name shows up
// in errors, logs and metrics.
func New[P, R any](name string, fetch PageFunc[P], extract ExtractFunc[P, R], opts ...Option) *Pager[P, R] {
	o := options{limit: DefaultRecordLimit}
	for _, opt := range opts {
		opt(&o)
	}

	return &Pager[P, R]{
		name:    name,
		fetch:   fetch,
		extract: extract,
		limit:   o.limit,
	}
}

// Next fetches and returns the next page. ok is false once the run has
// terminated: cleanly on the first empty page, or with the error that
// aborted it. After termination every further call returns ok=false.
func (p *Pager[P, R]) Next(ctx context.Context) (page P, ok bool, err error) {
	var zero P

	if p.done {
		return zero, false, nil
	}

	// Enforce the record budget before fetching again, so the page that
	// overshoots the limit is still handed to the consumer first.
	if p.records > p.limit {
		p.done = true
		limitExceededTotal.WithLabelValues(p.name).Inc()
		log.Warn().
			Str("operation", p.name).
			Int("records", p.records).
			Int("limit", p.limit).
			Msg("Pagination record limit exceeded")
		return zero, false, &LimitError{Op: p.name, Limit: p.limit, Records: p.records}
	}

	page, err = p.fetch(ctx, p.offset)
	if err != nil {
		p.done = true
		return zero, false, &FetchError{
			Op:      p.name,
			Offset:  p.offset,
			Pages:   p.pages,
			Records: p.records,
			Err:     err,
		}
	}

	records, err := p.extract(page)
	if err != nil {
		p.done = true
		return zero, false, &ExtractError{
			Op:      p.name,
			Offset:  p.offset,
			Pages:   p.pages,
			Records: p.records,
			Err:     err,
		}
	}

	if len(records) == 0 {
		p.done = true
		log.Debug().
			Str("operation", p.name).
			Int("pages", p.pages).
			Int("records", p.records).
			Msg("Pagination complete")
		return zero, false, nil
	}

	p.records += len(records)
	p.offset++
	p.pages++
	pagesFetchedTotal.WithLabelValues(p.name).Inc()

	return page, true, nil
}

// Pages returns how many non-empty pages the run has yielded so far.
func (p *Pager[P, R]) Pages() int {
	return p.pages
}

// Records returns the running record total.
func (p *Pager[P, R]) Records() int {
	return p.records
}
