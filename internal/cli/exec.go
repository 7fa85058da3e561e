package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgeai/companion/internal/action"
	"github.com/forgeai/companion/internal/audit"
	"github.com/forgeai/companion/internal/config"
	"github.com/forgeai/companion/internal/history"
	"github.com/forgeai/companion/internal/output"
	"github.com/forgeai/companion/internal/utils"
)

var flagExecConfirmed bool

func init() {
	execCmd.Flags().BoolVar(&flagExecConfirmed, "confirmed", false, "mark the request as human-confirmed")
	rootCmd.AddCommand(execCmd)
}

var execCmd = &cobra.Command{
	Use:   "exec [request.json]",
	Short: "Execute one action request through the safety gate",
	Long: `Execute a single action request, given as a JSON file argument or on
stdin. The result always carries the governing safety verdict.

Example:
  echo '{"action":"read_file","path":"/tmp/notes.txt"}' | companion exec`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		engine, _, dir, err := buildEngine(cfg)
		if err != nil {
			return err
		}

		var data []byte
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("reading request: %w", err)
		}

		var req action.Request
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("parsing request: %w", err)
		}
		if flagExecConfirmed {
			req.Confirmed = true
		}

		sink, cleanup, err := buildAuditSink(cfg, dir)
		if err != nil {
			return err
		}
		defer cleanup()

		d := action.NewDispatcher(engine, sink, utils.InitDefaultLogger(), action.Options{
			CommandTimeout: cfg.CommandTimeout(),
			MaxReadBytes:   cfg.MaxReadBytes(),
		})

		res := d.Execute(cmd.Context(), req)
		if err := output.JSON(res); err != nil {
			return err
		}
		if !res.Success {
			os.Exit(1)
		}
		return nil
	},
}

// buildAuditSink wires the JSONL trail plus the sqlite history when enabled.
func buildAuditSink(cfg config.Config, dir string) (audit.Sink, func(), error) {
	jsonl, err := audit.NewJSONLWriter(cfg.AuditLogPath(dir))
	if err != nil {
		return nil, nil, fmt.Errorf("opening audit log: %w", err)
	}

	dbPath := cfg.HistoryDBPath(dir)
	if dbPath == "" {
		return jsonl, func() { _ = jsonl.Close() }, nil
	}

	store, err := history.Open(dbPath)
	if err != nil {
		_ = jsonl.Close()
		return nil, nil, fmt.Errorf("opening history db: %w", err)
	}
	sink := audit.Tee(jsonl, store)
	return sink, func() { _ = sink.Close() }, nil
}
