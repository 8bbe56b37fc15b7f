package device

import (
	"sync"

	"go.uber.org/zap"

	"github.com/gframe-dev/gframe/pkg/config"
	"github.com/gframe-dev/gframe/pkg/logger"
)

// Runtime bundles an allocator, a default execution stream, and the
// host-orchestration boundary. One process-wide default runtime exists;
// tests create isolated runtimes with their own limits.
type Runtime struct {
	alloc    *Allocator
	stream   *Stream
	boundary Boundary
}

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
)

// NewRuntime creates a runtime from the given configuration. When the
// configuration carries logging fields, the first runtime to do so
// initializes the global logger with them.
func NewRuntime(cfg config.Runtime) *Runtime {
	if cfg.LogLevel != "" || cfg.LogEncoding != "" {
		if err := logger.Init(cfg.LoggerConfig()); err != nil {
			logger.Warn("ignoring invalid logging configuration", zap.Error(err))
		}
	}
	return &Runtime{
		alloc:  NewAllocator(cfg.AllocatorLimitBytes),
		stream: NewStream(),
	}
}

// Default returns the process-wide runtime, creating it on first use with
// an unlimited allocator.
func Default() *Runtime {
	defaultOnce.Do(func() {
		defaultRuntime = NewRuntime(config.Runtime{})
	})
	return defaultRuntime
}

// Allocator returns the runtime's device allocator.
func (r *Runtime) Allocator() *Allocator {
	return r.alloc
}

// Stream returns the runtime's default execution stream.
func (r *Runtime) Stream() *Stream {
	return r.stream
}

// Boundary returns the host-orchestration guard.
func (r *Runtime) Boundary() *Boundary {
	return &r.boundary
}

// Close drains and stops the runtime's stream. The default runtime is
// never closed.
func (r *Runtime) Close() {
	r.stream.Close()
}
