package gridfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridsim/core/grid"
	"github.com/kilianp07/gridsim/core/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadDefinition_YAML(t *testing.T) {
	g, err := LoadDefinition(filepath.Join("testdata", "grid.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "reference", g.Name)
	require.Len(t, g.Areas(), 2)
	require.Len(t, g.Plants(), 2)

	solar, ok := g.Plant("Desert Sun")
	require.True(t, ok)
	assert.Equal(t, 30.0, solar.Limits.MaxWindSpeed)
	assert.InDelta(t, 160.0, solar.RawOutput(), 1e-9)

	gas, ok := g.Plant("Harbor Gas")
	require.True(t, ok)
	assert.Equal(t, model.GasParams{FuelType: "natural", ThrottlePercent: 50}, gas.Params)

	l, ok := g.Line(1)
	require.True(t, ok)
	assert.InDelta(t, 0.95, l.Efficiency, 1e-12)
}

func TestLoadDefinition_JSON(t *testing.T) {
	g, err := LoadDefinition(filepath.Join("testdata", "grid.json"))
	require.NoError(t, err)
	assert.Equal(t, "small", g.Name)
	p, ok := g.Plant("Core")
	require.True(t, ok)
	assert.Equal(t, model.KindNuclear, p.Kind())
	assert.Equal(t, model.DefaultLimits, p.Limits)
	assert.Equal(t, 40.0, p.ComputeOutput())
}

func TestLoadDefinition_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadDefinition(writeFile(t, dir, "grid.toml", "name = 'x'"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = LoadDefinition(writeFile(t, dir, "bad.yaml", "areas: [\n"))
	assert.Error(t, err)

	_, err = LoadDefinition(writeFile(t, dir, "unknown.yaml", "plants:\n  - name: A\n    type: coal\n"))
	assert.ErrorIs(t, err, ErrUnknownPlantType)

	_, err = LoadDefinition(writeFile(t, dir, "dup.json",
		`{"areas":[{"name":"A","required_mw":1},{"name":"A","required_mw":2}]}`))
	assert.ErrorIs(t, err, grid.ErrDuplicateName)

	_, err = LoadDefinition(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
