// Package flightdata resolves scheduled flight times from an
// aviationstack-compatible API.
//
// Lookups are strictly best effort: any failure — missing API key, transport
// error, malformed payload, no matching flight — resolves to "no time", never
// to an error. A trip without a resolved time still renders; a trip blocked
// on a flaky flight API does not.
package flightdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public aviationstack endpoint root.
const DefaultBaseURL = "http://api.aviationstack.com"

// Client looks up scheduled departure and arrival times by flight number.
// It implements service.FlightResolver.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a flight data client. An empty baseURL selects the
// public API. An empty apiKey disables lookups — every call resolves to
// "no time".
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type flightsResponse struct {
	Data []struct {
		Departure struct {
			Scheduled string `json:"scheduled"`
		} `json:"departure"`
		Arrival struct {
			Scheduled string `json:"scheduled"`
		} `json:"arrival"`
	} `json:"data"`
}

// ScheduledTime returns the scheduled HH:MM for the flight on the given
// date — departure time when outbound, arrival time otherwise.
func (c *Client) ScheduledTime(ctx context.Context, flightNumber, date string, outbound bool) (string, bool) {
	flightNumber = strings.TrimSpace(flightNumber)
	if flightNumber == "" || date == "" || c.apiKey == "" {
		return "", false
	}

	q := url.Values{}
	q.Set("access_key", c.apiKey)
	q.Set("flight_iata", flightNumber)
	q.Set("flight_date", date)
	q.Set("limit", "1")
	reqURL := fmt.Sprintf("%s/v1/flights?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("flight lookup failed", "flight", flightNumber, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("flight lookup failed", "flight", flightNumber, "status", resp.Status)
		return "", false
	}

	var payload flightsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Warn("flight lookup failed", "flight", flightNumber, "error", err)
		return "", false
	}
	if len(payload.Data) == 0 {
		slog.Debug("no flight data", "flight", flightNumber, "date", date)
		return "", false
	}

	scheduled := payload.Data[0].Departure.Scheduled
	if !outbound {
		scheduled = payload.Data[0].Arrival.Scheduled
	}
	return clockFromTimestamp(scheduled)
}

// clockFromTimestamp extracts HH:MM from an ISO-8601 timestamp such as
// "2026-04-01T09:30:00+00:00". The time is kept as-is — the API reports
// local airport time, which is exactly what travellers want to see.
func clockFromTimestamp(ts string) (string, bool) {
	_, clock, found := strings.Cut(ts, "T")
	if !found || len(clock) < 5 {
		return "", false
	}
	return clock[:5], true
}
