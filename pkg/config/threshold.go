package config

import (
	"math"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/gframe-dev/gframe/pkg/logger"
)

// LargeStringsThresholdEnv overrides the byte size at which string columns
// switch from 32-bit to 64-bit offsets. The value is an integer number of
// bytes. It is read once, on first use, and cached for the remainder of
// the process.
const LargeStringsThresholdEnv = "GFRAME_LARGE_STRINGS_THRESHOLD"

// defaultLargeStringsThreshold is the largest byte size representable with
// 32-bit offsets.
const defaultLargeStringsThreshold = int64(math.MaxInt32)

var (
	thresholdMu     sync.Mutex
	thresholdVal    int64
	thresholdLoaded bool
)

// LargeStringsThreshold returns the maximum total byte size of a string
// column before it switches to 64-bit offsets. The environment override is
// read lazily on the first call; subsequent calls return the cached value.
func LargeStringsThreshold() int64 {
	thresholdMu.Lock()
	defer thresholdMu.Unlock()

	if !thresholdLoaded {
		thresholdVal = readThreshold()
		thresholdLoaded = true
	}
	return thresholdVal
}

// ResetLargeStringsThreshold discards the cached threshold so the next call
// to LargeStringsThreshold re-reads the environment. Intended for tests.
func ResetLargeStringsThreshold() {
	thresholdMu.Lock()
	defer thresholdMu.Unlock()
	thresholdLoaded = false
}

func readThreshold() int64 {
	raw, ok := os.LookupEnv(LargeStringsThresholdEnv)
	if !ok {
		return defaultLargeStringsThreshold
	}

	// Thresholds past the int32 range would keep 32-bit offsets on
	// columns whose offsets no longer fit them; treat as invalid.
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 || v > defaultLargeStringsThreshold {
		logger.Warn("ignoring invalid large-strings threshold",
			zap.String("env", LargeStringsThresholdEnv),
			zap.String("value", raw))
		return defaultLargeStringsThreshold
	}
	return v
}
