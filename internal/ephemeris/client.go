// Package ephemeris talks to the external chart-computation service and
// provides the deterministic mean-motion generator used by offline
// calibration. This engine never computes real ephemerides itself.
package ephemeris

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lox/astrometer/internal/chart"
	"github.com/lox/astrometer/internal/httputil"
)

// Client fetches natal and transit charts from the chart service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a client for the chart service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  httputil.NewClient(),
	}
}

// FetchNatal retrieves and validates the natal chart for a user.
func (c *Client) FetchNatal(userID string) (*chart.NatalChart, error) {
	var natal chart.NatalChart
	u := fmt.Sprintf("%s/v1/charts/natal/%s", c.baseURL, url.PathEscape(userID))
	if err := c.getJSON(u, &natal); err != nil {
		return nil, fmt.Errorf("fetch natal %s: %w", userID, err)
	}
	if err := natal.Validate(); err != nil {
		return nil, fmt.Errorf("fetch natal %s: %w", userID, err)
	}
	return &natal, nil
}

// FetchTransit retrieves and validates the transit chart for a date.
func (c *Client) FetchTransit(date time.Time) (*chart.TransitChart, error) {
	var transit chart.TransitChart
	u := fmt.Sprintf("%s/v1/charts/transit?date=%s", c.baseURL, date.Format("2006-01-02"))
	if err := c.getJSON(u, &transit); err != nil {
		return nil, fmt.Errorf("fetch transit %s: %w", date.Format("2006-01-02"), err)
	}
	if transit.Date.IsZero() {
		transit.Date = date
	}
	if err := transit.Validate(); err != nil {
		return nil, fmt.Errorf("fetch transit %s: %w", date.Format("2006-01-02"), err)
	}
	return &transit, nil
}

func (c *Client) getJSON(u string, out interface{}) error {
	var body []byte
	operation := func() error {
		resp, err := c.client.Get(u)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("chart service: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("chart service: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, bo); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
