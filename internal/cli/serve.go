package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forgeai/companion/internal/action"
	"github.com/forgeai/companion/internal/config"
	"github.com/forgeai/companion/internal/daemon"
	"github.com/forgeai/companion/internal/utils"
)

var flagServeForeground bool

func init() {
	serveCmd.Flags().BoolVar(&flagServeForeground, "foreground", false, "log to stderr instead of the daemon log file")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the IPC daemon serving the safety core",
	Long: `Serve execute_action, check_safety, get_safety_prompt and get_status
over a local Unix socket for the gateway-facing process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		engine, creds, dir, err := buildEngine(cfg)
		if err != nil {
			return err
		}

		logger := utils.InitDefaultLogger()
		if !flagServeForeground {
			logger, err = utils.InitDaemonLogger(dir, cfg.Daemon.LogLevel)
			if err != nil {
				return fmt.Errorf("opening daemon log: %w", err)
			}
		}

		sink, cleanup, err := buildAuditSink(cfg, dir)
		if err != nil {
			return err
		}
		defer cleanup()

		dispatcher := action.NewDispatcher(engine, sink, logger, action.Options{
			CommandTimeout: cfg.CommandTimeout(),
			MaxReadBytes:   cfg.MaxReadBytes(),
		})

		srv, err := daemon.NewIPCServer(cfg.SocketPath(dir), dispatcher, engine, creds, logger, Version)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Daemon.WatchRules {
			configPath := flagConfigPath
			if configPath == "" {
				configPath = config.UserConfigPath()
			}
			if err := srv.WatchRules(ctx, configPath, creds.Dir()); err != nil {
				logger.Warn("rule watching disabled", "err", err)
			}
		}

		if cfg.Daemon.PIDFile != "" {
			if err := os.WriteFile(cfg.Daemon.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
				logger.Warn("writing pid file", "err", err)
			}
			defer os.Remove(cfg.Daemon.PIDFile)
		}

		return srv.Start(ctx)
	},
}
