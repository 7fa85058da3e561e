package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgeai/companion/internal/config"
	"github.com/forgeai/companion/internal/history"
	"github.com/forgeai/companion/internal/output"
)

var (
	flagHistoryLimit  int
	flagHistoryAction string
	flagHistoryPrune  bool
)

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 50, "maximum records to show")
	historyCmd.Flags().StringVar(&flagHistoryAction, "action", "", "filter by action kind")
	historyCmd.Flags().BoolVar(&flagHistoryPrune, "prune", false, "delete records past the retention window")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the audit history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir, err := config.CompanionDir()
		if err != nil {
			return err
		}
		dbPath := cfg.HistoryDBPath(dir)
		if dbPath == "" {
			return fmt.Errorf("history is disabled (audit.database_path = \"-\")")
		}

		store, err := history.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if flagHistoryPrune {
			n, err := store.Prune(cfg.Audit.RetentionDays)
			if err != nil {
				return err
			}
			return output.JSON(map[string]any{"pruned": n})
		}

		var records any
		if flagHistoryAction != "" {
			records, err = store.ListByAction(flagHistoryAction, flagHistoryLimit)
		} else {
			records, err = store.List(flagHistoryLimit)
		}
		if err != nil {
			return err
		}
		return output.JSON(records)
	},
}
