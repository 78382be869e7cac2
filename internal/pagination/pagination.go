// Package pagination implements page/limit windowing over read-model
// queries. A query is evaluated twice: once for its total count and once
// for the windowed slice; callers see a single page envelope. No isolation
// is guaranteed between the two evaluations.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a validated page/limit pair. The zero value is not valid;
// build one via ParseParams or Clamp.
type Params struct {
	Page  int
	Limit int
}

// ParseParams reads page and limit from query values. Non-numeric or
// non-positive values fall back to the defaults rather than erroring.
func ParseParams(q url.Values) Params {
	return Params{
		Page:  parsePositive(q.Get("page"), DefaultPage),
		Limit: parsePositive(q.Get("limit"), DefaultLimit),
	}.Clamp()
}

// Clamp normalizes out-of-range values onto the defaults and cap.
func (p Params) Clamp() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset converts the 1-indexed page into a row offset.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

func parsePositive(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Page is the envelope returned by every listing endpoint.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalItems int64 `json:"totalItems"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPage wraps a windowed slice and its total count in a page envelope.
// TotalPages is ceil(total/limit).
func NewPage[T any](items []T, total int64, p Params) Page[T] {
	p = p.Clamp()
	if items == nil {
		items = []T{}
	}

	totalPages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		totalPages++
	}

	return Page[T]{
		Items:      items,
		TotalItems: total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
		HasNext:    int64(p.Page) < totalPages,
		HasPrev:    p.Page > 1 && total > 0,
	}
}
