package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/forgeai/companion/internal/config"
	"github.com/forgeai/companion/internal/connection"
	"github.com/forgeai/companion/internal/daemon"
	"github.com/forgeai/companion/internal/output"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pairing and safety status",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.CompanionDir()
		if err != nil {
			return err
		}
		creds := connection.NewStore(dir)

		status := daemon.StatusResult{SafetyActive: true, Version: Version}
		c, err := creds.Load()
		if err != nil && !errors.Is(err, connection.ErrNotPaired) {
			return err
		}
		if c != nil {
			status.Connected = true
			status.GatewayURL = c.GatewayURL
		}
		return output.JSON(status)
	},
}
