// Package metrics defines the sinks that observe simulation cycles. A sink
// must record cycle summaries; it may additionally implement
// AllocationRecorder or GridStateRecorder. Sinks are instantiated from
// configuration through the registry in factory.go and several sinks can be
// combined with NewMultiSink.
package metrics
