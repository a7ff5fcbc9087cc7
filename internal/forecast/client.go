package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/rylanturner02/weather-microservice/internal/upstream"
)

// Client talks to the National Weather Service API: a points lookup that
// validates the configured coordinates, and the hourly forecast for the grid
// point covering them.
type Client struct {
	baseURL   string
	hourlyURL string
	lat, lon  float64
	httpCfg   upstream.Config
	pointsCB  *gobreaker.CircuitBreaker
	hourlyCB  *gobreaker.CircuitBreaker
}

func NewClient(client *http.Client, userAgent, baseURL, hourlyURL string, lat, lon float64) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		hourlyURL: hourlyURL,
		lat:       lat,
		lon:       lon,
		httpCfg: upstream.Config{
			Client:    client,
			UserAgent: userAgent,
		},
		pointsCB: upstream.NewBreaker("nws-points"),
		hourlyCB: upstream.NewBreaker("nws-hourly"),
	}
}

// CheckGridPoint verifies that the configured coordinates resolve to a
// forecast grid. Only the status gate matters; the response body is not
// consumed downstream.
func (c *Client) CheckGridPoint(ctx context.Context) error {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/points/%g,%g", c.baseURL, c.lat, c.lon)
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := upstream.Do(ctx, c.httpCfg, c.pointsCB, buildRequest)
	if err != nil {
		return upstream.WithStage(err, "grid point")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &upstream.Error{Stage: "grid point", StatusCode: resp.StatusCode}
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

// HourlyForecast fetches the hourly forecast series for the configured grid
// point.
func (c *Client) HourlyForecast(ctx context.Context) ([]Period, error) {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, c.hourlyURL, nil)
	}

	resp, err := upstream.Do(ctx, c.httpCfg, c.hourlyCB, buildRequest)
	if err != nil {
		return nil, upstream.WithStage(err, "forecast")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &upstream.Error{Stage: "forecast", StatusCode: resp.StatusCode}
	}

	var payload hourlyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding hourly forecast response: %w", err)
	}
	return payload.Properties.Periods, nil
}
