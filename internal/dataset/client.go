// Package dataset fetches catalog rows from the upstream dataset API, which
// serves paginated JSON under offset/length query parameters.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxRetries     = 5
	initialBackoff = 1 * time.Second
	maxBackoff     = 32 * time.Second
)

// GameRow is one catalog entry as the upstream API serves it. Field names
// follow the dataset's column headers verbatim.
type GameRow struct {
	AppID           json.Number `json:"AppID"`
	Name            string      `json:"Name"`
	ReleaseDate     string      `json:"Release date"`
	Price           float64     `json:"Price"`
	UserScore       float64     `json:"User score"`
	MetacriticScore int         `json:"Metacritic score"`
	Positive        int         `json:"Positive"`
	Negative        int         `json:"Negative"`
	Recommendations int         `json:"Recommendations"`
	Genres          string      `json:"Genres"`
	Developers      string      `json:"Developers"`
	Publishers      string      `json:"Publishers"`
	HeaderImage     string      `json:"Header image"`
	About           string      `json:"About the game"`
}

// RowEnvelope wraps a row with its absolute index in the dataset.
type RowEnvelope struct {
	RowIdx int     `json:"row_idx"`
	Row    GameRow `json:"row"`
}

// PageResponse is one page of the dataset.
type PageResponse struct {
	NumRowsTotal int           `json:"num_rows_total"`
	Rows         []RowEnvelope `json:"rows"`
}

// Client talks to the dataset API. Requests are rate limited and retried
// with exponential backoff on throttling and transient failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewClient builds a Client for the given base URL. The URL already carries
// the dataset/config/split query parameters; FetchPage appends offset and
// length.
func NewClient(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		// The upstream API throttles aggressively; one request every two
		// seconds stays well under its limit.
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		logger:  logger,
	}
}

// FetchPage retrieves rows [offset, offset+length) from the dataset.
func (c *Client) FetchPage(ctx context.Context, offset, length int) (PageResponse, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return PageResponse{}, fmt.Errorf("parse dataset url: %w", err)
	}
	q := u.Query()
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(length))
	u.RawQuery = q.Encode()

	backoff := initialBackoff
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return PageResponse{}, err
		}

		page, retryable, err := c.fetchOnce(ctx, u.String())
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryable {
			return PageResponse{}, err
		}

		c.logger.Printf("dataset: attempt %d/%d at offset %d failed: %v", attempt, maxRetries, offset, err)
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return PageResponse{}, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return PageResponse{}, fmt.Errorf("fetch page at offset %d: %w", offset, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, pageURL string) (PageResponse, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return PageResponse{}, false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PageResponse{}, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fallthrough to decode
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return PageResponse{}, true, fmt.Errorf("dataset api status %d", resp.StatusCode)
	default:
		io.Copy(io.Discard, resp.Body)
		return PageResponse{}, false, fmt.Errorf("dataset api status %d", resp.StatusCode)
	}

	var page PageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return PageResponse{}, false, fmt.Errorf("decode page: %w", err)
	}
	return page, false, nil
}
