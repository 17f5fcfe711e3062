package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridsim/app"
)

var servePercent float64

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Simulate a cycle and serve the results over HTTP until interrupted",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			return svc.Serve(ctx, servePercent)
		})
	},
}

func init() {
	serveCmd.Flags().Float64VarP(&servePercent, "percent", "p", 0, "share of its requirement an area requests per pass (default from config)")
	rootCmd.AddCommand(serveCmd)
}
