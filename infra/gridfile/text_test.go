package gridfile

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridsim/core/model"
)

func testFiles() TextFiles {
	return TextFiles{
		Areas:  filepath.Join("testdata", "areas.txt"),
		Plants: filepath.Join("testdata", "plants.txt"),
		Lines:  filepath.Join("testdata", "lines.txt"),
	}
}

func TestLoadText(t *testing.T) {
	g, err := LoadText("reference", testFiles(), model.DefaultLimits)
	require.NoError(t, err)

	require.Len(t, g.Areas(), 3)
	assert.Equal(t, "Kent", g.Areas()[0].Name)
	assert.Equal(t, "Auburn", g.Areas()[2].Name)
	assert.Equal(t, 165.0, g.TotalRequired())

	require.Len(t, g.Plants(), 6)
	kinds := make([]model.PlantKind, 0, 6)
	for _, p := range g.Plants() {
		kinds = append(kinds, p.Kind())
	}
	assert.Equal(t, []model.PlantKind{
		model.KindSolar, model.KindWind, model.KindHydro,
		model.KindNuclear, model.KindGeothermal, model.KindGas,
	}, kinds)

	g.ComputeOutputs()
	outputs := map[string]float64{}
	for _, p := range g.Plants() {
		outputs[p.Name] = p.CurrentOutput()
	}
	assert.Equal(t, 200.0, outputs["Desert Sun"])
	assert.InDelta(t, 250.0/9.8, outputs["Ridge Wind"], 1e-9)
	assert.Equal(t, 60.0, outputs["Grand Falls"])
	assert.Equal(t, 60.0, outputs["Palo Verde"])
	assert.Equal(t, 15.0, outputs["Hot Springs"])
	assert.Equal(t, 60.0, outputs["Harbor Gas"])

	require.Len(t, g.Lines(), 3)
	l, ok := g.Line(2)
	require.True(t, ok)
	assert.Equal(t, "East Valley Tie", l.Name)
	assert.Equal(t, 0.9, l.Efficiency)
	l, _ = g.Line(1)
	assert.Equal(t, "North Ridge", l.Name)
	assert.InDelta(t, 0.95, l.Efficiency, 1e-12)
	l, _ = g.Line(3)
	assert.Equal(t, 1.0, l.Efficiency)
}

func TestLoadText_MissingFile(t *testing.T) {
	files := testFiles()
	files.Lines = filepath.Join("testdata", "nope.txt")
	_, err := LoadText("x", files, model.DefaultLimits)
	assert.Error(t, err)
}

func TestReadAreas_Malformed(t *testing.T) {
	in := "h1\nh2\nKent 100\n"
	_, err := ReadAreas(strings.NewReader(in))
	require.ErrorIs(t, err, ErrMalformedRecord)
	assert.Contains(t, err.Error(), "3:")

	_, err = ReadAreas(strings.NewReader("h1\nh2\nKent abc 4\n"))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestReadAreas_HeaderOnly(t *testing.T) {
	areas, err := ReadAreas(strings.NewReader("h1\nh2\n"))
	require.NoError(t, err)
	assert.Empty(t, areas)
}

func TestReadPlants_Errors(t *testing.T) {
	cases := map[string]struct {
		in   string
		want error
	}{
		"no delimiter":   {in: "header\nA, Solar 1 1 1 1\n", want: ErrMissingDelimiter},
		"unknown type":   {in: "&*****&\nA, Coal 1 1\n", want: ErrUnknownPlantType},
		"no comma":       {in: "&*****&\nA Solar 1 1 1 1\n", want: ErrMalformedRecord},
		"missing fields": {in: "&*****&\nA, Wind 10 1 3 40\n", want: ErrMalformedRecord},
		"bad number":     {in: "&*****&\nA, Hydro ten 1 1 1\n", want: ErrMalformedRecord},
		"bad rod count":  {in: "&*****&\nA, Nuclear 10 1 2.5\n", want: ErrMalformedRecord},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadPlants(strings.NewReader(tc.in))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReadPlants_NameWithSpaces(t *testing.T) {
	plants, err := ReadPlants(strings.NewReader("&*****&\n  Big Old Dam , Hydro 10 2 100 6\n"))
	require.NoError(t, err)
	require.Len(t, plants, 1)
	assert.Equal(t, "Big Old Dam", plants[0].Name)
	assert.Equal(t, model.HydroParams{FlowRate: 100, VerticalDrop: 6}, plants[0].Params)
	assert.Equal(t, 2.0, plants[0].CostPerMW)
}

func TestReadLines_Errors(t *testing.T) {
	_, err := ReadLines(strings.NewReader("no delimiter here\n"))
	assert.ErrorIs(t, err, ErrMissingDelimiter)

	_, err = ReadLines(strings.NewReader("&*****&\nx North 10 1\n"))
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ReadLines(strings.NewReader("&*****&\n1 North 10\n"))
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ReadLines(strings.NewReader("&*****&\n1 North 10 0.9 7\n"))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestLoadText_InvalidLine(t *testing.T) {
	dir := t.TempDir()
	files := testFiles()
	files.Lines = writeFile(t, dir, "lines.txt", "&*****&\n1 Lossy 10 0\n")
	_, err := LoadText("x", files, model.DefaultLimits)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lines.txt")
}
