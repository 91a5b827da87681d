// internal/adapter/forecast/client.go

package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gathering/internal/domain/plan"
	"gathering/internal/observability"
)

// DefaultBaseURL is the public forecast API for Japanese cities
const DefaultBaseURL = "https://weather.tsukumijima.net"

// Client fetches city forecasts
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	metrics    *observability.Collector
}

// cityForecastResponse is the relevant subset of the forecast API response
type cityForecastResponse struct {
	Forecasts []struct {
		Date      string `json:"date"`
		DateLabel string `json:"dateLabel"`
		Telop     string `json:"telop"`
	} `json:"forecasts"`
}

// NewClient creates a new forecast client
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Collector) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		BaseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
	}
}

// Forecast returns the per-day forecasts for cityCode, today first
func (c *Client) Forecast(ctx context.Context, cityCode string) ([]plan.DailyForecast, error) {
	const op = "forecast.city"
	start := time.Now()

	url := fmt.Sprintf("%s/api/forecast/city/%s", c.BaseURL, cityCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.metrics.ObserveCall("forecast", observability.OutcomeUnavailable, time.Since(start))
		return nil, plan.E(plan.KindServiceUnavailable, op, "weather information could not be retrieved", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.ObserveCall("forecast", observability.OutcomeUnavailable, time.Since(start))
		return nil, plan.E(plan.KindServiceUnavailable, op, "weather information could not be retrieved",
			fmt.Errorf("forecast API returned status code %d", resp.StatusCode))
	}

	var body cityForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.metrics.ObserveCall("forecast", observability.OutcomeError, time.Since(start))
		return nil, plan.E(plan.KindServiceUnavailable, op, "weather information could not be retrieved",
			fmt.Errorf("failed to decode forecast response: %w", err))
	}

	days := make([]plan.DailyForecast, len(body.Forecasts))
	for i, f := range body.Forecasts {
		days[i] = plan.DailyForecast{Date: f.Date, Label: f.Telop}
	}
	c.metrics.ObserveCall("forecast", observability.OutcomeOK, time.Since(start))
	return days, nil
}
