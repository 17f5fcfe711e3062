// Package events defines the allocation related events emitted on the event bus.
//
// Available event types:
//   - AllocationEvent: one allocation attempt for a service area
//   - PassEvent: end of a distribution pass with its exhaustion flags
//   - CycleEvent: end of a simulation cycle
package events
