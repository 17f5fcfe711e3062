package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridsim/app"
	"github.com/kilianp07/gridsim/pkg/export"
)

var (
	runPercent float64
	runFormat  string
	runOut     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate one allocation cycle and print the report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := export.ParseFormat(runFormat)
		if err != nil {
			return err
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			rep, err := svc.RunCycle(ctx, runPercent)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if runOut != "" {
				f, err := os.Create(runOut)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			if err := export.Write(w, format, rep); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			return nil
		})
	},
}

func init() {
	runCmd.Flags().Float64VarP(&runPercent, "percent", "p", 0, "share of its requirement an area requests per pass (default from config)")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", string(export.FormatText), "report format: text, json, csv or html")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "write the report to this file instead of stdout")
	rootCmd.AddCommand(runCmd)
}
