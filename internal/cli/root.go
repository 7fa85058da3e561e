// Package cli implements the companion command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgeai/companion/internal/config"
	"github.com/forgeai/companion/internal/connection"
	"github.com/forgeai/companion/internal/safety"
)

// Version is the companion release version.
const Version = "0.3.1"

var flagConfigPath string

var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "Local companion safety core",
	Long: `companion mediates every local action a remote AI orchestrator requests:
classify the risk, block the catastrophic, ask the human about the dangerous,
and audit everything.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path (default ~/.companion/config.toml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig loads the effective configuration for a command invocation.
func loadConfig() (config.Config, error) {
	return config.Load(config.LoadOptions{ConfigPath: flagConfigPath})
}

// buildEngine assembles the safety engine plus the credential store whose
// directory it protects.
func buildEngine(cfg config.Config) (*safety.Engine, *connection.Store, string, error) {
	dir, err := config.CompanionDir()
	if err != nil {
		return nil, nil, "", err
	}
	creds := connection.NewStore(dir)
	engine := safety.NewEngine(cfg.EngineOptions(creds.Dir()))
	return engine, creds, dir, nil
}
