// Package marketdata loads par quote sets for curve building. Sources hide
// where quotes come from (Postgres, JSON files, in-memory fixtures) behind one
// interface; filters narrow a raw quote list to the pillars a curve should
// actually be built from.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/market"
)

// ErrNotFound reports that a source holds no quote set for a request.
var ErrNotFound = errors.New("marketdata: no quotes found")

// CurveType distinguishes the two quote families a curve date carries.
type CurveType string

const (
	OIS CurveType = "OIS"
	IRS CurveType = "IRS"
)

// Request identifies one quote set: a curve date, the quote family, the
// reference index and the contributing source (for instance "BGN").
type Request struct {
	Date   time.Time
	Type   CurveType
	Index  market.ReferenceIndex
	Source string
}

func (r Request) String() string {
	return fmt.Sprintf("%s %s %s %s", r.Date.Format("2006-01-02"), r.Type, r.Index, r.Source)
}

// Source supplies quotes for a request. Implementations that hold external
// handles also implement io.Closer.
type Source interface {
	Quotes(ctx context.Context, req Request) ([]bootstrap.Quote, error)
}

// payload is the stored quote set shape, shared by the file and Postgres
// sources: {"quotes": [{"tenor": "1Y", "rate": 3.25}, ...]}.
type payload struct {
	Quotes []quoteRow `json:"quotes" validate:"required,min=1,dive"`
}

type quoteRow struct {
	Tenor string  `json:"tenor" validate:"required"`
	Rate  float64 `json:"rate"`
}

var validate = validator.New()

func (p payload) toQuotes() ([]bootstrap.Quote, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("marketdata: invalid quote payload: %w", err)
	}
	out := make([]bootstrap.Quote, len(p.Quotes))
	for i, q := range p.Quotes {
		out[i] = bootstrap.Quote{Tenor: q.Tenor, Rate: q.Rate}
	}
	return out, nil
}

// StaticSource serves quote sets from memory. Useful in tests and one-off
// scripts where wiring a database or file tree is overkill.
type StaticSource struct {
	sets map[Request][]bootstrap.Quote
}

func NewStaticSource() *StaticSource {
	return &StaticSource{sets: map[Request][]bootstrap.Quote{}}
}

// Add registers a quote set for a request, replacing any previous one.
func (s *StaticSource) Add(req Request, quotes []bootstrap.Quote) {
	s.sets[req] = quotes
}

func (s *StaticSource) Quotes(_ context.Context, req Request) ([]bootstrap.Quote, error) {
	quotes, ok := s.sets[req]
	if !ok {
		return nil, fmt.Errorf("StaticSource: %s: %w", req, ErrNotFound)
	}
	out := make([]bootstrap.Quote, len(quotes))
	copy(out, quotes)
	return out, nil
}

// Filtered decorates a source with a filter chain applied in order.
type Filtered struct {
	src     Source
	filters []Filter
}

// NewFiltered wraps src so every quote set passes through the given filters.
func NewFiltered(src Source, filters ...Filter) *Filtered {
	return &Filtered{src: src, filters: filters}
}

func (f *Filtered) Quotes(ctx context.Context, req Request) ([]bootstrap.Quote, error) {
	quotes, err := f.src.Quotes(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, flt := range f.filters {
		quotes = flt.Apply(quotes)
	}
	return quotes, nil
}
