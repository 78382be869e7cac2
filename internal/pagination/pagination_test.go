package pagination

import (
	"net/url"
	"testing"
)

func TestParseParamsDefaults(t *testing.T) {
	cases := []struct {
		name  string
		query string
		page  int
		limit int
	}{
		{"empty", "", 1, 10},
		{"explicit", "page=3&limit=25", 3, 25},
		{"zero page", "page=0&limit=5", 1, 5},
		{"negative", "page=-2&limit=-1", 1, 10},
		{"garbage", "page=abc&limit=xyz", 1, 10},
		{"over cap", "page=1&limit=5000", 1, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values, err := url.ParseQuery(tc.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			p := ParseParams(values)
			if p.Page != tc.page || p.Limit != tc.limit {
				t.Fatalf("got page=%d limit=%d, want page=%d limit=%d", p.Page, p.Limit, tc.page, tc.limit)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Limit: 10}
	if got := p.Offset(); got != 20 {
		t.Fatalf("unexpected offset: got %d want 20", got)
	}
}

func TestNewPageMath(t *testing.T) {
	items := []string{"a", "b", "c"}

	page := NewPage(items, 23, Params{Page: 2, Limit: 10})
	if page.TotalPages != 3 {
		t.Fatalf("total pages must round up: got %d want 3", page.TotalPages)
	}
	if !page.HasNext || !page.HasPrev {
		t.Fatalf("unexpected flags: %+v", page)
	}

	last := NewPage(items, 23, Params{Page: 3, Limit: 10})
	if last.HasNext {
		t.Fatal("last page must not report a next page")
	}
}

func TestNewPageEmpty(t *testing.T) {
	page := NewPage[string](nil, 0, Params{Page: 1, Limit: 10})
	if page.Items == nil {
		t.Fatal("items must serialize as an empty array, not null")
	}
	if page.TotalPages != 0 || page.HasNext || page.HasPrev {
		t.Fatalf("unexpected empty page: %+v", page)
	}
}

func TestNewPageBeyondEnd(t *testing.T) {
	page := NewPage([]string{}, 15, Params{Page: 9, Limit: 10})
	if len(page.Items) != 0 {
		t.Fatalf("expected empty window, got %d items", len(page.Items))
	}
	if page.TotalItems != 15 || page.TotalPages != 2 {
		t.Fatalf("totals must still reflect the full set: %+v", page)
	}
	if page.HasNext {
		t.Fatal("page beyond the end must not report a next page")
	}
}
