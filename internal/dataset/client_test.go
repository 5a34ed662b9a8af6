package dataset

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestClient(baseURL string) *Client {
	c := NewClient(baseURL, 5*time.Second, log.New(io.Discard, "", 0))
	// No throttling against the local test server.
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func TestFetchPageDecodesRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("offset"); got != "0" {
			t.Errorf("offset = %s, want 0", got)
		}
		if got := r.URL.Query().Get("length"); got != "2" {
			t.Errorf("length = %s, want 2", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
            "num_rows_total": 2,
            "rows": [
                {"row_idx": 0, "row": {"AppID": 10, "Name": "Alpha", "Price": 9.99, "Metacritic score": 88, "Positive": 100, "Negative": 25, "Recommendations": 5000, "Genres": "Action", "Developers": "Studio X"}},
                {"row_idx": 1, "row": {"AppID": "20", "Name": "Beta", "Price": 0}}
            ]
        }`)
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL).FetchPage(context.Background(), 0, 2)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if page.NumRowsTotal != 2 {
		t.Fatalf("NumRowsTotal = %d, want 2", page.NumRowsTotal)
	}
	if len(page.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(page.Rows))
	}
	first := page.Rows[0].Row
	if first.Name != "Alpha" || first.MetacriticScore != 88 || first.Recommendations != 5000 {
		t.Fatalf("first row decoded wrong: %+v", first)
	}
	appID, err := first.AppID.Int64()
	if err != nil || appID != 10 {
		t.Fatalf("numeric AppID = %v (%v), want 10", appID, err)
	}
	// The dataset serves AppID as both number and string; json.Number
	// accepts the numeric form only, so the string form must error.
	if _, err := page.Rows[1].Row.AppID.Int64(); err == nil {
		t.Fatalf("expected string AppID %q to fail Int64()", page.Rows[1].Row.AppID)
	}
}

func TestFetchPageRetriesOnThrottle(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"num_rows_total": 1, "rows": [{"row_idx": 0, "row": {"AppID": 10, "Name": "Alpha"}}]}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page, err := client.FetchPage(ctx, 0, 1)
	if err != nil {
		t.Fatalf("FetchPage after retries: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if len(page.Rows) != 1 || page.Rows[0].Row.Name != "Alpha" {
		t.Fatalf("page = %+v", page)
	}
}

func TestFetchPageFailsFastOnClientError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchPage(context.Background(), 0, 1)
	if err == nil {
		t.Fatalf("expected error on 404")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no retries on client error)", calls)
	}
}

func TestFetchPagePagination(t *testing.T) {
	const total = 5
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		length, _ := strconv.Atoi(r.URL.Query().Get("length"))
		end := offset + length
		if end > total {
			end = total
		}
		fmt.Fprintf(w, `{"num_rows_total": %d, "rows": [`, total)
		for i := offset; i < end; i++ {
			if i > offset {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"row_idx": %d, "row": {"AppID": %d, "Name": "Game %d"}}`, i, 100+i, i)
		}
		fmt.Fprint(w, `]}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	ctx := context.Background()

	var rows []RowEnvelope
	pageSize := 2
	for offset := 0; ; offset += pageSize {
		page, err := client.FetchPage(ctx, offset, pageSize)
		if err != nil {
			t.Fatalf("FetchPage offset %d: %v", offset, err)
		}
		rows = append(rows, page.Rows...)
		if len(page.Rows) < pageSize {
			break
		}
	}

	if len(rows) != total {
		t.Fatalf("collected %d rows, want %d", len(rows), total)
	}
	for i, env := range rows {
		if env.RowIdx != i {
			t.Fatalf("row %d has idx %d", i, env.RowIdx)
		}
	}
}
