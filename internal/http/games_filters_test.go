package httpserver

import (
	"net/url"
	"strings"
	"testing"
)

func TestBuildGameFilters(t *testing.T) {
	values, _ := url.ParseQuery("q=portal&genre=Puzzle&maxPrice=19.99&limit=10&offset=5")
	filters, err := buildGameFilters(values)
	if err != nil {
		t.Fatalf("buildGameFilters: %v", err)
	}
	if filters.Query == nil || *filters.Query != "portal" {
		t.Fatalf("Query = %v", filters.Query)
	}
	if filters.Genre == nil || *filters.Genre != "Puzzle" {
		t.Fatalf("Genre = %v", filters.Genre)
	}
	if filters.MaxPrice == nil || *filters.MaxPrice != 19.99 {
		t.Fatalf("MaxPrice = %v", filters.MaxPrice)
	}
	if filters.Limit != 10 || filters.Offset != 5 {
		t.Fatalf("Limit/Offset = %d/%d", filters.Limit, filters.Offset)
	}
}

func TestBuildGameFiltersEmpty(t *testing.T) {
	filters, err := buildGameFilters(url.Values{})
	if err != nil {
		t.Fatalf("buildGameFilters: %v", err)
	}
	if filters.Query != nil || filters.Genre != nil || filters.MaxPrice != nil {
		t.Fatalf("expected zero filters, got %+v", filters)
	}
}

func TestBuildGameFiltersRejections(t *testing.T) {
	tests := []string{
		"q=" + strings.Repeat("a", maxSearchQueryLen+1),
		"maxPrice=abc",
		"maxPrice=-5",
		"limit=abc",
		"limit=-1",
		"offset=abc",
		"offset=-1",
	}
	for _, raw := range tests {
		values, _ := url.ParseQuery(raw)
		if _, err := buildGameFilters(values); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestSplitList(t *testing.T) {
	if got := splitList(nil); got == nil || len(got) != 0 {
		t.Fatalf("splitList(nil) = %v, want empty slice", got)
	}
	raw := "Action, Indie ,,RPG"
	got := splitList(&raw)
	if len(got) != 3 || got[1] != "Indie" {
		t.Fatalf("splitList = %v", got)
	}
}
