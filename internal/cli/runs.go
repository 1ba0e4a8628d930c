package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/olist-warehouse/internal/db"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent pipeline runs recorded in the warehouse",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateWarehouse(); err != nil {
			return err
		}

		ctx := context.Background()
		pool, err := db.Connect(ctx, cfg.Connection)
		if err != nil {
			return fmt.Errorf("failed to connect to warehouse: %w", err)
		}
		defer pool.Close()

		runs, err := db.ListRuns(ctx, pool, runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			cmd.Println("No recorded runs.")
			return nil
		}

		for _, r := range runs {
			watermark := "-"
			if r.Watermark.Valid {
				watermark = r.Watermark.Time.Format("2006-01-02")
			}
			cmd.Printf("%s  completed %s  watermark %s  fact rows %d\n",
				r.RunID,
				r.CompletedAt.Format("2006-01-02 15:04:05"),
				watermark,
				r.FactRows)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to show")
}
