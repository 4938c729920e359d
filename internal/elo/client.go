package elo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"console-warden/internal/domain"
	"console-warden/internal/metrics"
)

// Client talks to the external rating service. The JSON API accepts a
// batch of nicknames in one request; the per-player profile page is the
// scrape fallback when the API is unavailable.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// NewTestClient creates a client with custom base URL for testing
func NewTestClient(baseURL string) *Client {
	return NewClient(baseURL)
}

type modeRating struct {
	Elo int `json:"elo"`
}

type playerRatings struct {
	Nick string     `json:"nick"`
	Duel modeRating `json:"duel"`
	FFA  modeRating `json:"ffa"`
	TDM  modeRating `json:"tdm"`
	CA   modeRating `json:"ca"`
	CTF  modeRating `json:"ctf"`
}

type ratingsResponse struct {
	Players []playerRatings `json:"players"`
}

// GetRatings fetches ratings for the given names in a single batch
// request. The service is best-effort: names it does not know are
// simply absent from the result map. Result keys are roster keys.
func (c *Client) GetRatings(ctx context.Context, names []string) (map[string]domain.EloRecord, error) {
	if len(names) == 0 {
		return map[string]domain.EloRecord{}, nil
	}

	escaped := make([]string, len(names))
	for i, name := range names {
		escaped[i] = url.QueryEscape(name)
	}
	u := fmt.Sprintf("%s/api.aspx?nick=%s", c.baseURL, strings.Join(escaped, "+"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ratings request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.EloRequests.WithLabelValues("api", "error").Inc()
		return nil, fmt.Errorf("failed to fetch ratings: %w", err)
	}
	defer resp.Body.Close()
	metrics.EloRequestDuration.WithLabelValues("api", resp.Status).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.EloRequests.WithLabelValues("api", "error").Inc()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var data ratingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		metrics.EloRequests.WithLabelValues("api", "error").Inc()
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	metrics.EloRequests.WithLabelValues("api", "ok").Inc()

	out := make(map[string]domain.EloRecord, len(data.Players))
	for _, p := range data.Players {
		out[domain.Key(p.Nick)] = domain.EloRecord{
			Duel: p.Duel.Elo,
			FFA:  p.FFA.Elo,
			TDM:  p.TDM.Elo,
			CA:   p.CA.Elo,
			CTF:  p.CTF.Elo,
		}
	}
	return out, nil
}

// FetchProfile scrapes a single player's profile page. Used as a
// fallback when the JSON API is down.
func (c *Client) FetchProfile(ctx context.Context, name string) (*domain.EloRecord, error) {
	u := fmt.Sprintf("%s/players/%s", c.baseURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.EloRequests.WithLabelValues("profile", "error").Inc()
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	defer resp.Body.Close()
	metrics.EloRequestDuration.WithLabelValues("profile", resp.Status).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.EloRequests.WithLabelValues("profile", "error").Inc()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	rec, err := ParseProfile(resp.Body)
	if err != nil {
		metrics.EloRequests.WithLabelValues("profile", "error").Inc()
		return nil, err
	}
	metrics.EloRequests.WithLabelValues("profile", "ok").Inc()
	return rec, nil
}
