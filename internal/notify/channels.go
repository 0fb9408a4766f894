package notify

import "sync"

// ChannelState is the delivery health of a webhook channel.
type ChannelState string

const (
	ChannelHealthy   ChannelState = "healthy"
	ChannelSuspended ChannelState = "suspended"
)

// Channel tracks delivery health for one webhook endpoint.
type Channel struct {
	URL          string       `json:"url"`
	State        ChannelState `json:"state"`
	FailureCount int          `json:"failure_count"`
	SuccessCount int          `json:"success_count"`
}

// ChannelManager tracks consecutive delivery failures and successes per
// channel. A channel that keeps failing is suspended so alert storms do
// not pile up goroutines against a dead endpoint; enough successful
// deliveries restore it.
type ChannelManager struct {
	mu               sync.RWMutex
	channels         map[string]*Channel
	failureThreshold int
	successThreshold int
}

// NewChannelManager creates a manager with the given suspend/restore
// thresholds.
func NewChannelManager(failureThreshold, successThreshold int) *ChannelManager {
	return &ChannelManager{
		channels:         make(map[string]*Channel),
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
	}
}

// Add registers a channel in the healthy state. Adding an existing URL
// is a no-op.
func (cm *ChannelManager) Add(url string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.channels[url]; !exists {
		cm.channels[url] = &Channel{URL: url, State: ChannelHealthy}
	}
}

// MarkFailure records a failed delivery.
func (cm *ChannelManager) MarkFailure(url string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	ch, ok := cm.channels[url]
	if !ok {
		return
	}
	ch.FailureCount++
	ch.SuccessCount = 0
	if ch.FailureCount >= cm.failureThreshold {
		ch.State = ChannelSuspended
	}
}

// MarkSuccess records a successful delivery.
func (cm *ChannelManager) MarkSuccess(url string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	ch, ok := cm.channels[url]
	if !ok {
		return
	}
	ch.SuccessCount++
	ch.FailureCount = 0
	if ch.SuccessCount >= cm.successThreshold {
		ch.State = ChannelHealthy
	}
}

// Healthy returns the URLs currently accepting full deliveries.
func (cm *ChannelManager) Healthy() []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	out := make([]string, 0, len(cm.channels))
	for url, ch := range cm.channels {
		if ch.State == ChannelHealthy {
			out = append(out, url)
		}
	}
	return out
}

// All returns every registered URL.
func (cm *ChannelManager) All() []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	out := make([]string, 0, len(cm.channels))
	for url := range cm.channels {
		out = append(out, url)
	}
	return out
}

// Snapshot returns a copy of all channel states for the admin API.
func (cm *ChannelManager) Snapshot() []Channel {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	out := make([]Channel, 0, len(cm.channels))
	for _, ch := range cm.channels {
		out = append(out, *ch)
	}
	return out
}
