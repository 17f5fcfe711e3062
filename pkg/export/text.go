package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kilianp07/gridsim/core/report"
)

// WriteText renders the area, plant and line tables followed by the usage
// report and the profit and loss statement.
func WriteText(w io.Writer, r report.Report) error {
	bw := bufio.NewWriter(w)
	writeAreas(bw, r)
	fmt.Fprintln(bw)
	writePlants(bw, r)
	fmt.Fprintln(bw)
	writeLines(bw, r)
	fmt.Fprintln(bw)
	writeUsage(bw, r)
	return bw.Flush()
}

func writeAreas(w io.Writer, r report.Report) {
	fmt.Fprintln(w, " Location      Demand     MW Price($)   Supplied   Total Price")
	fmt.Fprintln(w, "----------    --------    -----------   --------   -----------")
	for _, a := range r.Areas {
		fmt.Fprintf(w, "%-10s   %9.2f   %12.2f   %8.2f   %11s\n",
			a.Name, a.Required, a.PricePerMW, a.Supplied, a.TotalPrice.StringFixed(2))
	}
	req, sup, price := r.AreaTotals()
	fmt.Fprintf(w, "-- Total --   %8.2f   %23.2f   %11s\n", req, sup, price.StringFixed(2))
}

func writePlants(w io.Writer, r report.Report) {
	fmt.Fprintln(w, "     Plant            Type      Max Cap     Cur Cap    Avail Cap")
	fmt.Fprintln(w, "---------------     --------   ---------   ---------  -----------")
	for _, p := range r.Plants {
		fmt.Fprintf(w, "%-17s   %-10s   %9.2f   %9.2f   %10.2f   %s\n",
			p.Name, p.Kind, p.MaxOutput, p.CurrentOutput, p.Available, p.Condition)
	}
	maxOut, cur, avail := r.PlantTotals()
	fmt.Fprintf(w, "-- Total --   %28.2f   %9.2f   %10.2f\n", maxOut, cur, avail)
}

func writeLines(w io.Writer, r report.Report) {
	fmt.Fprintln(w, " ID           Name           Efficiency    Capacity   Remaining")
	fmt.Fprintln(w, "----   ------------------    ----------    --------   ---------")
	for _, l := range r.Lines {
		fmt.Fprintf(w, "%-4d   %-17s   %12.2f   %9.0f   %9.0f\n",
			l.ID, l.Name, l.Efficiency, l.Capacity, l.Remaining)
	}
	capacity, remaining := r.LineTotals()
	fmt.Fprintf(w, "       -- Total --   %30.0f   %9.0f\n", capacity, remaining)
}

func writeUsage(w io.Writer, r report.Report) {
	s := r.Summary
	fmt.Fprintf(w, "\t\t%s\n", r.GridName)
	fmt.Fprintln(w, "\t\t -- Grid Simulation Report --")
	fmt.Fprintln(w, "Location   | Required(MW) | Supplied(MW) | Percent |   Price    |")
	fmt.Fprintln(w, "-----------------------------------------------------------------")
	for _, a := range r.Areas {
		fmt.Fprintf(w, "%-10s | %12.2f | %12.2f | %6.2f%% | %10s |\n",
			a.Name, a.Required, a.Supplied, a.PercentSupplied, a.TotalPrice.StringFixed(2))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Overall Grid Performance:")
	fmt.Fprintf(w, "    Total Demand Request:  %.2f MW\n", s.TotalDemand)
	fmt.Fprintf(w, "    Total Demand supplied: %.2f MW\n", s.TotalSupplied)
	fmt.Fprintf(w, "    Percent of demand met: %.2f%%\n", s.PercentMet)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "    Plant Capacity used:   %.2f MW\n", s.PlantCapacityUsed)
	fmt.Fprintf(w, "    Average Delivery Efficiency %%: %.2f\n", s.DeliveryEfficiency)
	fmt.Fprintf(w, "    Passes: %d (%s)\n", s.Passes, s.StopReason)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total price paid by all areas for power used today: $%s\n", s.Revenue.StringFixed(2))
	fmt.Fprintf(w, "Total cost of producing this power: $%s\n", s.OperatingCost.StringFixed(2))
	fmt.Fprintf(w, "Operating profit for the grid today: $%s\n", s.Profit.StringFixed(2))
}
