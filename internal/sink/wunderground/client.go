// Package wunderground uploads readings with the Weather Underground PWS
// updateraw protocol.
package wunderground

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"piweather/internal/types"
	"piweather/internal/units"
)

const maxBody = 4 << 10

// Result is the raw server reply. The body is not interpreted.
type Result struct {
	StatusCode int
	Body       string
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wunderground http %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	h          *http.Client
	endpoint   string
	stationID  string
	stationKey string
}

func NewClient(endpoint, stationID, stationKey string, timeout time.Duration) *Client {
	return &Client{
		h:          &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		stationID:  stationID,
		stationKey: stationKey,
	}
}

// Query builds the updateraw parameters for r.
func (c *Client) Query(r types.Reading) url.Values {
	q := url.Values{}
	q.Set("action", "updateraw")
	q.Set("ID", c.stationID)
	q.Set("PASSWORD", c.stationKey)
	q.Set("dateutc", "now")
	q.Set("tempf", format(units.Round(r.TempF, 1)))
	q.Set("dewPtF", format(r.BlendedDewPointF))
	q.Set("humidity", format(r.GPIOHumidity))
	q.Set("baromin", format(units.Round(r.PressureInHg, 1)))
	return q
}

// Upload sends r once. There is no retry; the next official reading is
// the next attempt.
func (c *Client) Upload(ctx context.Context, r types.Reading) (Result, error) {
	endpoint := c.endpoint
	if strings.Contains(endpoint, "?") {
		endpoint += "&"
	} else {
		endpoint += "?"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+c.Query(r).Encode(), nil)
	if err != nil {
		return Result{}, err
	}

	resp, err := c.h.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Result{StatusCode: resp.StatusCode}, fmt.Errorf("read response: %w", err)
	}
	res := Result{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res, &StatusError{StatusCode: res.StatusCode, Body: res.Body}
	}
	return res, nil
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
