// Package metrics provides Prometheus instrumentation for gframe.
//
// The collectors cover the device runtime (bytes in use, allocation and
// release totals, stream synchronizations) and the interchange bridge
// (exports, imports, snapshot bytes). All collectors are registered with
// the default registry via promauto and are safe for concurrent use.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DeviceBytesInUse tracks the bytes currently held by live device buffers.
	DeviceBytesInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gframe",
		Subsystem: "device",
		Name:      "bytes_in_use",
		Help:      "Bytes currently allocated from the device allocator",
	})

	// DeviceAllocations counts successful device buffer allocations.
	DeviceAllocations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gframe",
		Subsystem: "device",
		Name:      "allocations_total",
		Help:      "Total device buffer allocations",
	})

	// DeviceAllocationFailures counts allocations rejected by the limit.
	DeviceAllocationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gframe",
		Subsystem: "device",
		Name:      "allocation_failures_total",
		Help:      "Total device allocations that failed",
	})

	// DeviceReleases counts device buffer releases.
	DeviceReleases = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gframe",
		Subsystem: "device",
		Name:      "releases_total",
		Help:      "Total device buffer releases",
	})

	// StreamSynchronizations counts stream drain points.
	StreamSynchronizations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gframe",
		Subsystem: "device",
		Name:      "stream_synchronizations_total",
		Help:      "Total stream synchronization calls",
	})

	// StreamFaults counts device execution faults surfaced at sync points.
	StreamFaults = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gframe",
		Subsystem: "device",
		Name:      "stream_faults_total",
		Help:      "Total device execution faults surfaced at synchronization",
	})

	// InterchangeExports counts table-to-Arrow conversions by outcome.
	InterchangeExports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gframe",
		Subsystem: "interchange",
		Name:      "exports_total",
		Help:      "Total table exports to the interchange format",
	}, []string{"status"})

	// InterchangeImports counts Arrow-to-table conversions by outcome.
	InterchangeImports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gframe",
		Subsystem: "interchange",
		Name:      "imports_total",
		Help:      "Total table imports from the interchange format",
	}, []string{"status"})

	// SnapshotBytes counts bytes written by table snapshot serialization.
	SnapshotBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gframe",
		Subsystem: "interchange",
		Name:      "snapshot_bytes_total",
		Help:      "Total bytes written by table snapshots",
	})
)

// Status label values for the interchange counters.
const (
	StatusOK    = "ok"
	StatusError = "error"
)
