// Package testutil provides testing utilities for gframe
package testutil

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/gframe-dev/gframe/pkg/config"
	"github.com/gframe-dev/gframe/pkg/device"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// TestRuntime creates an isolated device runtime with no allocator
// limit, closed when the test completes.
func TestRuntime(t *testing.T) *device.Runtime {
	t.Helper()
	rt := device.NewRuntime(config.Runtime{})
	t.Cleanup(rt.Close)
	return rt
}

// TestRuntimeWithLimit creates an isolated device runtime with the given
// allocator byte limit, closed when the test completes.
func TestRuntimeWithLimit(t *testing.T, limitBytes int64) *device.Runtime {
	t.Helper()
	rt := device.NewRuntime(config.Runtime{AllocatorLimitBytes: limitBytes})
	t.Cleanup(rt.Close)
	return rt
}
