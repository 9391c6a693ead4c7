// Package task runs blur invocations asynchronously so a caller (a UI event
// loop, a CLI waiting on signals) stays responsive while the engine grinds
// through a large region. Each Start spawns an independent task with its own
// progress stream, completion channel and cancellation; tasks share no state.
package task

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/zimage/internal/blur"
	"github.com/MeKo-Tech/zimage/internal/raster"
)

// State is the lifecycle of a single task.
type State int32

const (
	Pending State = iota
	Running
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Runner starts blur tasks. The zero value is usable; the logger may be nil.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a Runner logging through the given logger.
// A nil logger falls back to slog.Default.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger}
}

func (r *Runner) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Handle is the caller's view of one in-flight or finished task.
type Handle struct {
	progress chan int
	done     chan *image.NRGBA
	cancel   context.CancelFunc
	state    atomic.Int32
}

// Start begins a blur asynchronously and returns immediately. The source
// image is read-only for the duration of the task and is never mutated.
//
// On success (or on an internal engine failure, which degrades to the
// unmodified source) exactly one image is delivered on Done and the channel
// is closed afterwards. On cancellation Done is closed without a delivery.
func (r *Runner) Start(source *image.NRGBA, region raster.Region, params blur.Params) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		// Buffer of one so the worker never blocks on a slow caller;
		// stale percentages are dropped in favor of the latest.
		progress: make(chan int, 1),
		done:     make(chan *image.NRGBA, 1),
		cancel:   cancel,
	}
	h.state.Store(int32(Pending))
	go h.run(ctx, r.log(), source, region, params)
	return h
}

// Progress returns a stream of monotonically non-decreasing percentages in
// [0, 100]. Values may be skipped under load but never go backwards. The
// channel is closed before the completion delivery, so draining Progress and
// then receiving from Done observes the ordering guarantee "completion last".
func (h *Handle) Progress() <-chan int {
	return h.progress
}

// Done yields the result image: the blurred image, or the unmodified source
// if the engine hit an internal failure. The channel is closed after the
// single delivery, or without any delivery if the task was cancelled.
func (h *Handle) Done() <-chan *image.NRGBA {
	return h.done
}

// Cancel requests cooperative cancellation. The worker notices between pixel
// rows; the partial result is discarded and the caller keeps the source image
// it already holds. Cancel is safe to call at any time, from any goroutine,
// and more than once.
func (h *Handle) Cancel() {
	h.cancel()
}

// State returns the task's current lifecycle state.
func (h *Handle) State() State {
	return State(h.state.Load())
}

func (h *Handle) run(ctx context.Context, logger *slog.Logger, source *image.NRGBA, region raster.Region, params blur.Params) {
	h.state.CompareAndSwap(int32(Pending), int32(Running))
	start := time.Now()

	out, err := blur.BlurContext(ctx, source, region, params, h.publishProgress)
	if err != nil {
		h.state.Store(int32(Cancelled))
		close(h.progress)
		close(h.done)
		logger.Info("blur task cancelled",
			"kind", params.Kind.String(),
			"radius", params.Radius,
			"elapsed", time.Since(start),
		)
		return
	}

	h.state.Store(int32(Completed))
	close(h.progress)
	h.done <- out
	close(h.done)
	logger.Debug("blur task completed",
		"kind", params.Kind.String(),
		"radius", params.Radius,
		"region_w", region.Width,
		"region_h", region.Height,
		"elapsed", time.Since(start),
	)
}

// publishProgress forwards a percentage without ever blocking the worker.
// If the caller has not consumed the previous value it is replaced, so the
// receiver always sees a subsequence of the engine's monotonic stream.
func (h *Handle) publishProgress(percent int) {
	select {
	case h.progress <- percent:
	default:
		select {
		case <-h.progress:
		default:
		}
		select {
		case h.progress <- percent:
		default:
		}
	}
}
