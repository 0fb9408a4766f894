package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/config"
	"github.com/Uri-do/monitoringgrid/internal/logs"
	"github.com/Uri-do/monitoringgrid/internal/metrics"
	"github.com/Uri-do/monitoringgrid/internal/model"
)

// Notification is the JSON body posted to webhook channels when an
// alert is raised.
type Notification struct {
	AlertID       string    `json:"alert_id"`
	IndicatorID   string    `json:"indicator_id"`
	IndicatorName string    `json:"indicator_name"`
	Owner         string    `json:"owner"`
	TriggeredAt   time.Time `json:"triggered_at"`
	DeviationPct  *float64  `json:"deviation_pct,omitempty"`
	Message       string    `json:"message"`
}

// Notifier delivers alert notifications to webhook channels.
//
// Dispatch does not block the caller: one goroutine per channel posts
// the payload, retrying with backoff. A suspended channel gets a single
// probe attempt per alert so it can recover without absorbing the full
// retry budget.
type Notifier struct {
	channels *ChannelManager
	policy   config.NotifyPolicy
	client   *http.Client
	logger   *logs.Logger
	metrics  *metrics.Metrics
}

// NewNotifier creates a webhook notifier.
func NewNotifier(channels *ChannelManager, policy config.NotifyPolicy, logger *logs.Logger, m *metrics.Metrics) *Notifier {
	return &Notifier{
		channels: channels,
		policy:   policy,
		client:   &http.Client{Timeout: policy.Timeout},
		logger:   logger,
		metrics:  m,
	}
}

// Dispatch fans the alert out to every registered channel. Delivery is
// detached from the caller's cancellation so a returning HTTP handler
// does not abort notifications raised during the request; the caller's
// values are retained.
func (n *Notifier) Dispatch(ctx context.Context, alert model.AlertLog, ind model.Indicator) {
	payload := Notification{
		AlertID:       alert.ID.String(),
		IndicatorID:   ind.ID.String(),
		IndicatorName: ind.Name,
		Owner:         ind.Owner,
		TriggeredAt:   alert.TriggeredAt,
		DeviationPct:  alert.Deviation,
		Message:       alert.Message,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("notify", "failed to marshal notification payload: "+err.Error())
		return
	}

	healthy := make(map[string]bool)
	for _, url := range n.channels.Healthy() {
		healthy[url] = true
	}

	detached := context.WithoutCancel(ctx)
	for _, url := range n.channels.All() {
		url := url
		go n.deliver(detached, url, body, healthy[url])
	}
}

func (n *Notifier) deliver(ctx context.Context, url string, body []byte, withRetry bool) {
	policy := n.policy
	if !withRetry {
		policy.MaxRetries = 0
	}

	err := retry(ctx, policy, func() error {
		return n.post(ctx, url, body)
	})
	if err != nil {
		n.channels.MarkFailure(url)
		n.metrics.NotificationsTotal.WithLabelValues("failure").Inc()
		n.logger.Error("notify", "delivery to "+url+" failed: "+err.Error())
		return
	}

	n.channels.MarkSuccess(url)
	n.metrics.NotificationsTotal.WithLabelValues("success").Inc()
	n.logger.Debug("notify", "delivered alert notification to "+url)
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}
	return nil
}
