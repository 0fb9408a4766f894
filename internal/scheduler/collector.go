package scheduler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/model"
)

// Collector produces the current measured value for an indicator.
type Collector interface {
	Collect(ctx context.Context, ind model.Indicator) (float64, error)
}

// HTTPCollector fetches an indicator's target URL and parses the
// response body as a single float. It covers the common case of metric
// endpoints that expose one number; richer collectors implement the
// Collector interface themselves.
type HTTPCollector struct {
	client *http.Client
}

// NewHTTPCollector creates a collector with a per-request timeout.
func NewHTTPCollector(timeout time.Duration) *HTTPCollector {
	return &HTTPCollector{
		client: &http.Client{Timeout: timeout},
	}
}

// maxBodySize caps how much of a collector response is read.
const maxBodySize = 1 << 16

func (c *HTTPCollector) Collect(ctx context.Context, ind model.Indicator) (float64, error) {
	if ind.Target == "" {
		return 0, fmt.Errorf("indicator %s has no collector target", ind.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ind.Target, nil)
	if err != nil {
		return 0, fmt.Errorf("building collect request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("collecting from %s: %w", ind.Target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s from %s", resp.Status, ind.Target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, fmt.Errorf("reading collect response: %w", err)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(string(body)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing collect response from %s: %w", ind.Target, err)
	}
	return value, nil
}
