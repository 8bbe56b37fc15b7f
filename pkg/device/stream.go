package device

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/logger"
	"github.com/gframe-dev/gframe/pkg/metrics"
)

var nextStreamID atomic.Uint64

// Stream is an ordered queue of asynchronous device operations. Work
// enqueued on the same stream executes in issue order. A failing
// operation latches a fault; the fault surfaces at the next Synchronize
// call, attributed to that call regardless of which enqueued operation
// raised it. There is no cancellation: once issued, work runs until the
// queue drains.
type Stream struct {
	id   uint64
	work chan func() error

	mu    sync.Mutex
	fault error

	done sync.WaitGroup
}

// NewStream starts a stream with its own executor.
func NewStream() *Stream {
	s := &Stream{
		id:   nextStreamID.Add(1),
		work: make(chan func() error, 64),
	}
	s.done.Add(1)
	go s.run()
	return s
}

// ID returns the stream identifier, used for log correlation.
func (s *Stream) ID() uint64 {
	return s.id
}

// Enqueue issues one unit of device work. It returns once the work is
// queued, not when it completes. Enqueue after Close panics.
func (s *Stream) Enqueue(fn func() error) {
	s.work <- fn
}

// Synchronize blocks until every previously enqueued operation has
// executed. If any of them faulted, the first fault is returned as a
// stream error and the latch is cleared for subsequent work.
func (s *Stream) Synchronize() error {
	metrics.StreamSynchronizations.Inc()

	drained := make(chan struct{})
	s.work <- func() error {
		close(drained)
		return nil
	}
	<-drained

	s.mu.Lock()
	fault := s.fault
	s.fault = nil
	s.mu.Unlock()

	if fault == nil {
		return nil
	}
	metrics.StreamFaults.Inc()
	return errors.Wrap(fault, errors.ErrorTypeStream, "device stream fault")
}

// Close stops the executor after draining the queue. The stream must not
// be used afterwards.
func (s *Stream) Close() {
	close(s.work)
	s.done.Wait()
}

func (s *Stream) run() {
	defer s.done.Done()
	for fn := range s.work {
		err := fn()
		if err == nil {
			continue
		}
		s.mu.Lock()
		if s.fault == nil {
			s.fault = err
		}
		s.mu.Unlock()
		logger.Error("device operation faulted",
			logger.StreamID(s.id),
			zap.Error(err))
	}
}
