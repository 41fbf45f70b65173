// Package predictions provides the HTTP client for the upstream prediction
// feed: per-game predicted outcomes, candidate value bets, and injury
// reports. The feed's computation (power ratings, regression, edge math) is
// upstream's business; this client only consumes the data contract.
package predictions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/sharpline/sharpline-alerts/internal/engine"
)

// Client is the prediction feed HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a prediction feed client with rate limiting.
func NewClient(baseURL, apiKey string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// feedResponse is the feed's response wrapper.
type feedResponse struct {
	Data []engine.GameWithPrediction `json:"data"`
}

// UpcomingGames fetches the games with predictions for one sport. Pass an
// empty sport to fetch every supported league in one call.
func (c *Client) UpcomingGames(ctx context.Context, sport engine.Sport) ([]engine.GameWithPrediction, error) {
	params := url.Values{}
	if sport != "" {
		params.Set("sport", string(sport))
	}

	resp, err := c.get(ctx, "/v1/games/upcoming", params)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Fetched prediction feed", "sport", string(sport), "games", len(resp.Data))
	return resp.Data, nil
}

// get performs a rate-limited GET request against the feed.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*feedResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prediction feed %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	var result feedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
