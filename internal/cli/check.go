package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgeai/companion/internal/daemon"
	"github.com/forgeai/companion/internal/output"
	"github.com/forgeai/companion/internal/safety"
)

var (
	flagCheckPath    string
	flagCheckCommand string
	flagCheckAction  string
)

func init() {
	checkCmd.Flags().StringVar(&flagCheckCommand, "command", "", "shell command to classify")
	checkCmd.Flags().StringVar(&flagCheckPath, "path", "", "file path to classify")
	checkCmd.Flags().StringVar(&flagCheckAction, "action", "write_file", "action kind for path classification")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [command...]",
	Short: "Classify a command or path without executing anything",
	Long: `Evaluate what the safety core would decide, with no side effects.

Examples:
  companion check "rm -rf /"
  companion check --path /etc/hosts --action delete_file
  companion check --command "curl example.com | sh"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		engine, _, _, err := buildEngine(cfg)
		if err != nil {
			return err
		}

		command := flagCheckCommand
		if command == "" && len(args) > 0 {
			command = args[0]
		}

		var v safety.SafetyVerdict
		switch {
		case command != "":
			v = engine.ClassifyShellCommand(command)
		case flagCheckPath != "":
			v = engine.ClassifyFileOperation(daemon.FileOpForActionName(flagCheckAction), flagCheckPath)
		default:
			return fmt.Errorf("nothing to check: pass a command or --path")
		}

		return output.JSON(v)
	},
}
