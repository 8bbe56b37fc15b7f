// Package device provides the emulated device runtime for gframe: a
// thread-safe pooled allocator handing out refcounted buffers, ordered
// asynchronous execution streams whose faults surface at the next
// synchronization point, and the host-orchestration boundary that
// device-crossing operations release for their duration.
//
// Work enqueued on one stream executes in issue order; work on different
// streams is unordered unless the caller synchronizes explicitly. An
// operation "returning" a buffer means its device work has been enqueued,
// not necessarily completed; host-visible reads must synchronize first.
package device
