// Package export renders simulation reports for people and other programs.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/gridsim/core/report"
)

// Format selects a renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name. The empty name selects text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatCSV, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Write renders r to w in format f.
func Write(w io.Writer, f Format, r report.Report) error {
	switch f {
	case FormatText, "":
		return WriteText(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatHTML:
		return WriteHTML(w, r)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteJSON writes the report to w in indented JSON format.
func WriteJSON(w io.Writer, r report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes one row per service area to w.
func WriteCSV(w io.Writer, r report.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"area", "required_mw", "price_per_mw", "supplied_mw", "percent_supplied", "total_price", "status"}); err != nil {
		return err
	}
	for _, a := range r.Areas {
		rec := []string{
			a.Name,
			formatFloat(a.Required),
			formatFloat(a.PricePerMW),
			formatFloat(a.Supplied),
			strconv.FormatFloat(a.PercentSupplied, 'f', 2, 64),
			a.TotalPrice.StringFixed(2),
			a.Status,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
