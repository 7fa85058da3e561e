package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgeai/companion/internal/safety"
)

func init() {
	rootCmd.AddCommand(promptCmd)
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the safety policy prompt injected into the orchestrator",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(safety.Prompt())
		return nil
	},
}
