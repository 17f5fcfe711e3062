package events

import "time"

// PassEvent is published when a distribution pass over all areas finished.
type PassEvent struct {
	RunID              string
	Pass               int
	Delivered          float64
	LinesHaveCapacity  bool
	PlantsHaveCapacity bool
}

// CycleEvent is published when a simulation cycle terminated.
type CycleEvent struct {
	RunID         string
	GridName      string
	Passes        int
	StopReason    string
	TotalRequired float64
	TotalReceived float64
	Time          time.Time
}
