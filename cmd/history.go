package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridsim/app"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored simulation runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			runs, err := svc.History(ctx, historyLimit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tFINISHED\tGRID\tPASSES\tSTOP\tMET %\tPROFIT")
			for _, r := range runs {
				met := 0.0
				if r.TotalDemand > 0 {
					met = r.TotalSupplied / r.TotalDemand * 100
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%.1f\t%s\n",
					r.RunID, r.Finished.Format(time.RFC3339), r.GridName, r.Passes, r.StopReason, met, r.Profit.StringFixed(2))
			}
			return tw.Flush()
		})
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list, 0 for all")
	rootCmd.AddCommand(historyCmd)
}
