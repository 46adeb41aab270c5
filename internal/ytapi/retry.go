package ytapi

import (
	"math/rand"
	"time"

	"golang.org/x/exp/slog"
)

// retryJitterMax bounds the random extra delay added to each backoff wait, so
// that parallel deployments sharing a credential don't retry in lockstep.
const retryJitterMax = 500 * time.Millisecond

// Retryer reissues remote writes that failed due to per-user rate limiting,
// with capped exponential backoff. Only rate-limit failures are retried:
// quota exhaustion and every other error propagate on the first attempt.
type Retryer struct {
	limit  int
	base   time.Duration
	max    time.Duration
	logger *slog.Logger
	sleep  func(time.Duration)
}

func NewRetryer(limit int, base, max time.Duration, logger *slog.Logger) *Retryer {
	return &Retryer{
		limit:  limit,
		base:   base,
		max:    max,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Do runs fn, retrying up to the configured limit when the failure classifies
// as rate limiting. The wait before retry n is min(max, base·2^n) plus up to
// half a second of jitter, as a plain blocking sleep. When the budget runs
// out, the exhaustion is reported as a CreationLimitError carrying the
// operation name and the last structured reason.
func (r *Retryer) Do(op, title string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		limited, reason := isRateLimited(err)
		if !limited {
			return err
		}
		if attempt >= r.limit {
			return &CreationLimitError{Op: op, Reason: reason}
		}
		delay := r.backoff(attempt)
		r.logger.Warn("Rate limited; backing off",
			"op", op,
			"title", title,
			"attempt", attempt+1,
			"retries_left", r.limit-attempt,
			"delay", delay,
		)
		r.sleep(delay)
	}
}

func (r *Retryer) backoff(attempt int) time.Duration {
	delay := r.base << uint(attempt)
	// The shift wraps around for large attempt counts; treat that as capped
	if delay > r.max || delay <= 0 {
		delay = r.max
	}
	return delay + time.Duration(rand.Int63n(int64(retryJitterMax)))
}
