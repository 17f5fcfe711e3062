package events

import "github.com/kilianp07/gridsim/core/model"

// AllocationEvent is published for every allocation attempt of a pass.
type AllocationEvent struct {
	RunID      string
	Pass       int
	Allocation model.Allocation
}
