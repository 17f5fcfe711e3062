package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/gridsim/core/report"
)

// WriteHTML renders a page with the demand and supply of every area and the
// allocation of every plant as bar charts.
func WriteHTML(w io.Writer, r report.Report) error {
	page := components.NewPage()
	page.PageTitle = r.GridName
	page.AddCharts(areaChart(r), plantChart(r))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func areaChart(r report.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    r.GridName,
			Subtitle: fmt.Sprintf("%.2f%% of demand met", r.Summary.PercentMet),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Area"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "MW"}),
	)
	names := make([]string, 0, len(r.Areas))
	required := make([]opts.BarData, 0, len(r.Areas))
	supplied := make([]opts.BarData, 0, len(r.Areas))
	for _, a := range r.Areas {
		names = append(names, a.Name)
		required = append(required, opts.BarData{Value: a.Required})
		supplied = append(supplied, opts.BarData{Value: a.Supplied})
	}
	bar.SetXAxis(names).
		AddSeries("Required", required).
		AddSeries("Supplied", supplied)
	return bar
}

func plantChart(r report.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Plant usage"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Plant"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "MW"}),
	)
	names := make([]string, 0, len(r.Plants))
	allocated := make([]opts.BarData, 0, len(r.Plants))
	available := make([]opts.BarData, 0, len(r.Plants))
	for _, p := range r.Plants {
		names = append(names, p.Name)
		allocated = append(allocated, opts.BarData{Value: p.Allocated})
		available = append(available, opts.BarData{Value: p.Available})
	}
	bar.SetXAxis(names).
		AddSeries("Allocated", allocated).
		AddSeries("Available", available)
	return bar
}
