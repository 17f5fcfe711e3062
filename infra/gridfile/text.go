// Package gridfile loads grid definitions. Two sources are supported: the
// three whitespace separated text files (areas, plants, lines) used by the
// grid operators, and a single YAML or JSON definition file.
package gridfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/model"
)

// HeaderDelimiter terminates the informational header of plant and line files.
const HeaderDelimiter = "&*****&"

// areaHeaderLines is the fixed header length of area files.
const areaHeaderLines = 2

var (
	// ErrMalformedRecord is returned for records with missing or unparsable fields.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrMissingDelimiter is returned when a file has no header delimiter line.
	ErrMissingDelimiter = errors.New("header delimiter not found")
	// ErrUnknownPlantType is returned for plant records with an unsupported type tag.
	ErrUnknownPlantType = model.ErrUnknownPlantKind
)

// TextFiles names the three input files of a grid.
type TextFiles struct {
	Areas  string `json:"areas"`
	Plants string `json:"plants"`
	Lines  string `json:"lines"`
}

// LoadText reads the three text files and assembles a grid. Any malformed
// record aborts loading.
func LoadText(name string, files TextFiles, limits model.Limits) (*grid.Grid, error) {
	areas, err := readFile(files.Areas, ReadAreas)
	if err != nil {
		return nil, err
	}
	plants, err := readFile(files.Plants, ReadPlants)
	if err != nil {
		return nil, err
	}
	lines, err := readFile(files.Lines, ReadLines)
	if err != nil {
		return nil, err
	}
	g := grid.New(name)
	for _, a := range areas {
		if err := g.AddArea(a); err != nil {
			return nil, fmt.Errorf("%s: %w", files.Areas, err)
		}
	}
	for _, p := range plants {
		p.Limits = limits
		if err := g.AddPlant(p); err != nil {
			return nil, fmt.Errorf("%s: %w", files.Plants, err)
		}
	}
	for _, l := range lines {
		if err := g.AddLine(l); err != nil {
			return nil, fmt.Errorf("%s: %w", files.Lines, err)
		}
	}
	return g, nil
}

func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	out, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", path, err)
	}
	return out, nil
}

// recordScanner yields the non-blank lines following a header.
type recordScanner struct {
	sc   *bufio.Scanner
	line int
}

func newRecordScanner(r io.Reader) *recordScanner {
	return &recordScanner{sc: bufio.NewScanner(r)}
}

func (s *recordScanner) skipLines(n int) {
	for i := 0; i < n && s.sc.Scan(); i++ {
		s.line++
	}
}

func (s *recordScanner) skipToDelimiter() error {
	for s.sc.Scan() {
		s.line++
		if strings.TrimSpace(s.sc.Text()) == HeaderDelimiter {
			return nil
		}
	}
	if err := s.sc.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%d: %w", s.line, ErrMissingDelimiter)
}

// next returns the next non-blank line.
func (s *recordScanner) next() (string, bool) {
	for s.sc.Scan() {
		s.line++
		if text := strings.TrimSpace(s.sc.Text()); text != "" {
			return text, true
		}
	}
	return "", false
}

func (s *recordScanner) errorf(format string, args ...any) error {
	return fmt.Errorf("%d: %w: %s", s.line, ErrMalformedRecord, fmt.Sprintf(format, args...))
}

// ReadAreas parses an area file: two header lines followed by
// "name requiredMW pricePerMW" records.
func ReadAreas(r io.Reader) ([]model.ServiceArea, error) {
	s := newRecordScanner(r)
	s.skipLines(areaHeaderLines)
	var out []model.ServiceArea
	for {
		text, ok := s.next()
		if !ok {
			break
		}
		f := strings.Fields(text)
		if len(f) != 3 {
			return nil, s.errorf("want 3 fields, got %d", len(f))
		}
		nums, err := parseFloats(f[1:])
		if err != nil {
			return nil, s.errorf("%v", err)
		}
		out = append(out, model.NewServiceArea(f[0], nums[0], nums[1]))
	}
	return out, s.sc.Err()
}

// ReadPlants parses a plant file: header lines up to HeaderDelimiter followed
// by "name, Type maxOutput costPerMW <variant fields>" records. The name ends
// at the first comma and may contain spaces.
func ReadPlants(r io.Reader) ([]model.Plant, error) {
	s := newRecordScanner(r)
	if err := s.skipToDelimiter(); err != nil {
		return nil, err
	}
	var out []model.Plant
	for {
		text, ok := s.next()
		if !ok {
			break
		}
		p, err := parsePlant(text)
		if err != nil {
			if errors.Is(err, ErrUnknownPlantType) {
				return nil, fmt.Errorf("%d: %w", s.line, err)
			}
			return nil, s.errorf("%v", err)
		}
		out = append(out, p)
	}
	return out, s.sc.Err()
}

func parsePlant(text string) (model.Plant, error) {
	name, rest, found := strings.Cut(text, ",")
	if !found {
		return model.Plant{}, errors.New("plant name must be followed by a comma")
	}
	name = strings.TrimSpace(name)
	f := strings.Fields(rest)
	if len(f) < 3 {
		return model.Plant{}, fmt.Errorf("plant %s: want type, max output and cost", name)
	}
	kind, err := model.ParsePlantKind(f[0])
	if err != nil {
		return model.Plant{}, err
	}
	common, err := parseFloats(f[1:3])
	if err != nil {
		return model.Plant{}, fmt.Errorf("plant %s: %v", name, err)
	}
	params, err := parseParams(kind, f[3:])
	if err != nil {
		return model.Plant{}, fmt.Errorf("plant %s: %v", name, err)
	}
	return model.NewPlant(name, common[0], common[1], params), nil
}

func parseParams(kind model.PlantKind, f []string) (model.OutputModel, error) {
	want := map[model.PlantKind]int{
		model.KindSolar:      2,
		model.KindWind:       3,
		model.KindHydro:      2,
		model.KindNuclear:    1,
		model.KindGeothermal: 0,
		model.KindGas:        2,
	}[kind]
	if len(f) != want {
		return nil, fmt.Errorf("%s plant wants %d variant fields, got %d", kind, want, len(f))
	}
	switch kind {
	case model.KindSolar:
		v, err := parseFloats(f)
		if err != nil {
			return nil, err
		}
		return model.SolarParams{Acres: v[0], SunlightHours: v[1]}, nil
	case model.KindWind:
		n, err := strconv.Atoi(f[0])
		if err != nil {
			return nil, fmt.Errorf("turbines: %v", err)
		}
		v, err := parseFloats(f[1:])
		if err != nil {
			return nil, err
		}
		return model.WindParams{Turbines: n, BladeLength: v[0], WindSpeed: v[1]}, nil
	case model.KindHydro:
		v, err := parseFloats(f)
		if err != nil {
			return nil, err
		}
		return model.HydroParams{FlowRate: v[0], VerticalDrop: v[1]}, nil
	case model.KindNuclear:
		n, err := strconv.Atoi(f[0])
		if err != nil {
			return nil, fmt.Errorf("fuel rods: %v", err)
		}
		return model.NuclearParams{FuelRodsActive: n}, nil
	case model.KindGeothermal:
		return model.GeothermalParams{}, nil
	case model.KindGas:
		v, err := parseFloats(f[1:])
		if err != nil {
			return nil, err
		}
		return model.GasParams{FuelType: f[0], ThrottlePercent: v[0]}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPlantType, kind)
}

// ReadLines parses a transmission line file: header lines up to
// HeaderDelimiter followed by "id name... capacity efficiency" records. The
// name runs until the first token starting with a digit. Efficiencies above
// 1 are read as percentages.
func ReadLines(r io.Reader) ([]model.TransmissionLine, error) {
	s := newRecordScanner(r)
	if err := s.skipToDelimiter(); err != nil {
		return nil, err
	}
	var out []model.TransmissionLine
	for {
		text, ok := s.next()
		if !ok {
			break
		}
		f := strings.Fields(text)
		if len(f) < 4 {
			return nil, s.errorf("want id, name, capacity and efficiency")
		}
		id, err := strconv.Atoi(f[0])
		if err != nil {
			return nil, s.errorf("line id: %v", err)
		}
		i := 2
		for i < len(f) && !startsWithDigit(f[i]) {
			i++
		}
		if i+2 != len(f) {
			return nil, s.errorf("line %d: want capacity and efficiency after the name", id)
		}
		nums, err := parseFloats(f[i:])
		if err != nil {
			return nil, s.errorf("line %d: %v", id, err)
		}
		eff := nums[1]
		if eff > 1 {
			eff /= 100
		}
		out = append(out, model.NewTransmissionLine(id, strings.Join(f[1:i], " "), nums[0], eff))
	}
	return out, s.sc.Err()
}

func startsWithDigit(s string) bool {
	return s != "" && unicode.IsDigit(rune(s[0]))
}

func parseFloats(f []string) ([]float64, error) {
	out := make([]float64, len(f))
	for i, s := range f {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		out[i] = v
	}
	return out, nil
}
