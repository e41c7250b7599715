// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/ray-engine/pkg/types"
)

var (
	// ErrRecorderClosed is returned by Submit after Close.
	ErrRecorderClosed = errors.New("recorder closed")
	// ErrRecorderFull is returned by Submit when the queue has no room.
	// The result is not persisted.
	ErrRecorderFull = errors.New("recorder queue full")
)

// Sink persists scored runs.
type Sink interface {
	SaveResult(ctx context.Context, p *types.ResponsePacket, out *types.PipelineOutput, sig *types.SignaturePair) error
}

// Recorder persists results on a background goroutine so that storage
// latency and failures never reach the caller that scored the run. Failed
// saves are retried, then logged and dropped.
type Recorder struct {
	sink    Sink
	log     *zap.Logger
	queue   chan *Result
	retries int

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewRecorder starts a recorder with room for size pending results.
func NewRecorder(sink Sink, log *zap.Logger, size int, opts ...RecorderOption) *Recorder {
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	r := &Recorder{
		sink:    sink,
		log:     log,
		queue:   make(chan *Result, size),
		retries: defaultSaveRetries,
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(r)
	}
	go r.loop()
	return r
}

// Submit queues res for persistence. It never blocks: when the queue is
// full the result is dropped and ErrRecorderFull returned.
func (r *Recorder) Submit(res *Result) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRecorderClosed
	}
	select {
	case r.queue <- res:
		return nil
	default:
		return ErrRecorderFull
	}
}

// Close stops accepting results and waits until the queue is drained or
// ctx is done.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) loop() {
	defer close(r.done)
	for res := range r.queue {
		if err := r.save(context.Background(), res); err != nil {
			r.log.Error("persisting result", zap.String("run_id", res.Output.RunID), zap.Error(err))
		}
	}
}
