package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridsim/core/report"
)

func sampleReport() report.Report {
	return report.Report{
		GridName: "Puget Sound",
		RunID:    "r1",
		Areas: []report.AreaRow{
			{Name: "Kent", Required: 100, PricePerMW: 50, Supplied: 60, PercentSupplied: 60, TotalPrice: decimal.NewFromInt(3000), Status: "partially_met"},
			{Name: "Renton", Required: 40, PricePerMW: 30, Supplied: 40, PercentSupplied: 100, TotalPrice: decimal.NewFromInt(1200), Status: "fully_met"},
		},
		Plants: []report.PlantRow{
			{Name: "Cedar Dam", Kind: "Hydro", MaxOutput: 120, CurrentOutput: 110, Available: 10, Allocated: 100, CostPerMW: 10, Cost: decimal.NewFromInt(1000), Condition: "Flow rate: 11000, Drop: 6"},
		},
		Lines: []report.LineRow{{ID: 1, Name: "North Ridge", Efficiency: 1, Capacity: 200, Remaining: 100}},
		Summary: report.Summary{
			TotalDemand: 140, TotalSupplied: 100, PercentMet: 71.43, PlantCapacityUsed: 100, DeliveryEfficiency: 100,
			Revenue: decimal.NewFromInt(4200), OperatingCost: decimal.NewFromInt(1000), Profit: decimal.NewFromInt(3200),
			StopReason: "plants_exhausted", Passes: 1,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "area", rows[0][0])
	assert.Equal(t, []string{"Kent", "100", "50", "60", "60.00", "3000.00", "partially_met"}, rows[1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	for _, k := range []string{"grid", "run_id", "areas", "plants", "lines", "summary"} {
		assert.Contains(t, m, k)
	}
	summary := m["summary"].(map[string]any)
	assert.Equal(t, "3200", summary["profit"])
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport()))
	out := buf.String()
	assert.Contains(t, out, "-- Grid Simulation Report --")
	assert.Contains(t, out, "Kent")
	assert.Contains(t, out, "Flow rate: 11000, Drop: 6")
	assert.Contains(t, out, "Percent of demand met: 71.43%")
	assert.Contains(t, out, "Operating profit for the grid today: $3200.00")
	assert.Contains(t, out, "4200.00")
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleReport()))
	out := buf.String()
	assert.True(t, strings.Contains(out, "<html"), "expected an html document")
	assert.Contains(t, out, "Renton")
	assert.Contains(t, out, "Cedar Dam")
}

func TestWrite_SelectsFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleReport()))
	assert.True(t, strings.HasPrefix(buf.String(), "area,"))
	assert.Error(t, Write(&buf, Format("pdf"), sampleReport()))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	f, err = ParseFormat("html")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, f)
	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
