package model

import "fmt"

// Outcome is the result of one allocation attempt for an area.
type Outcome int

const (
	// OutcomeCommitted means a line and a plant were found and capacities were updated.
	OutcomeCommitted Outcome = iota
	// OutcomeSkipped means nothing was requested.
	OutcomeSkipped
	// OutcomeNoLine means no line could carry the request.
	OutcomeNoLine
	// OutcomeNoPlant means no plant could supply the request.
	OutcomeNoPlant
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNoLine:
		return "no_line"
	case OutcomeNoPlant:
		return "no_plant"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText decodes an outcome written by MarshalText.
func (o *Outcome) UnmarshalText(b []byte) error {
	for c := OutcomeCommitted; c <= OutcomeNoPlant; c++ {
		if c.String() == string(b) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", b)
}

// Allocation records a single allocation attempt. Delivered is the power
// credited to the area, Drawn the power taken from the plant and carried by
// the line.
type Allocation struct {
	Area      string  `json:"area"`
	Plant     string  `json:"plant,omitempty"`
	LineID    int     `json:"line_id,omitempty"`
	LineName  string  `json:"line_name,omitempty"`
	Requested float64 `json:"requested_mw"`
	Delivered float64 `json:"delivered_mw"`
	Drawn     float64 `json:"drawn_mw"`
	Outcome   Outcome `json:"outcome"`
}
