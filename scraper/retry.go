package scraper

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryImmediate runs op until it succeeds or it has been retried maxRetries
// times past the initial attempt, with no delay between tries. notify is
// called once per failed attempt before the next one; the error of the final
// attempt is returned when the budget is exhausted.
func retryImmediate(op func() error, maxRetries int, notify func(error, time.Duration)) error {
	policy := backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(maxRetries))
	return backoff.RetryNotify(op, policy, notify)
}
