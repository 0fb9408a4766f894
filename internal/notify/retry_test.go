package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/config"

	"github.com/stretchr/testify/assert"
)

func fastPolicy() config.NotifyPolicy {
	return config.NotifyPolicy{
		MaxRetries:  3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
	}
}

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastPolicy(), func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastPolicy(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ExhaustsBudget(t *testing.T) {
	calls := 0
	wantErr := errors.New("permanent")
	err := retry(context.Background(), fastPolicy(), func() error {
		calls++
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 4, calls) // initial attempt + 3 retries
}

func TestRetry_ZeroRetriesSingleAttempt(t *testing.T) {
	policy := fastPolicy()
	policy.MaxRetries = 0

	calls := 0
	err := retry(context.Background(), policy, func() error {
		calls++
		return errors.New("nope")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ContextCancellation(t *testing.T) {
	policy := fastPolicy()
	policy.BaseBackoff = time.Minute
	policy.MaxBackoff = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := retry(ctx, policy, func() error {
		return errors.New("keep trying")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
