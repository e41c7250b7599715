// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryBaseDelay is the wait before the first retried save. It doubles on
// every further attempt. Tests override this to avoid real sleeps.
var RetryBaseDelay = 25 * time.Millisecond

const defaultSaveRetries = 2

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRetries sets how many times a failed save is retried before the
// result is dropped. Zero disables retries.
func WithRetries(n int) RecorderOption {
	return func(r *Recorder) {
		if n >= 0 {
			r.retries = n
		}
	}
}

// save persists res, retrying with exponential backoff. It returns the
// last error once retries are exhausted.
func (r *Recorder) save(ctx context.Context, res *Result) error {
	for attempt := 0; ; attempt++ {
		err := r.sink.SaveResult(ctx, res.Packet, res.Output, res.Signature)
		if err == nil || attempt >= r.retries {
			return err
		}

		backoff := RetryBaseDelay << attempt
		r.log.Warn("save failed, retrying",
			zap.String("run_id", res.Output.RunID),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
