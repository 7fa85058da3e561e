package action

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/forgeai/companion/internal/audit"
	"github.com/forgeai/companion/internal/safety"
)

// handlerFunc performs the narrow OS operation for one action kind. It runs
// only after the verdict allowed it; returned errors are folded into the
// Result, never propagated.
type handlerFunc func(ctx context.Context, d *Dispatcher, req Request) (output string, err error)

// Options tunes dispatcher behavior.
type Options struct {
	// CommandTimeout bounds run_shell_command executions.
	CommandTimeout time.Duration
	// MaxReadBytes caps read_file output.
	MaxReadBytes int64
}

// DefaultOptions returns the dispatcher defaults.
func DefaultOptions() Options {
	return Options{
		CommandTimeout: 60 * time.Second,
		MaxReadBytes:   1 << 20,
	}
}

// Dispatcher routes requests to handlers, gated by the safety engine.
// It is the single point through which all real effects pass.
type Dispatcher struct {
	engine   *safety.Engine
	sink     audit.Sink
	logger   *log.Logger
	opts     Options
	handlers map[Kind]handlerFunc
}

// NewDispatcher builds a dispatcher around an engine and an audit sink.
// The sink is injected so tests can capture records deterministically.
func NewDispatcher(engine *safety.Engine, sink audit.Sink, logger *log.Logger, opts Options) *Dispatcher {
	if sink == nil {
		sink = audit.Discard{}
	}
	if logger == nil {
		logger = log.Default()
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultOptions().CommandTimeout
	}
	if opts.MaxReadBytes <= 0 {
		opts.MaxReadBytes = DefaultOptions().MaxReadBytes
	}
	d := &Dispatcher{
		engine: engine,
		sink:   sink,
		logger: logger,
		opts:   opts,
	}
	d.handlers = map[Kind]handlerFunc{
		KindReadFile:   handleReadFile,
		KindWriteFile:  handleWriteFile,
		KindDeleteFile: handleDeleteFile,
		KindMoveFile:   handleMoveFile,
		KindRunShell:   handleRunShell,
		KindLaunchApp:  handleLaunchApp,
		KindKillProc:   handleKillProcess,
		KindSystemInfo: handleSystemInfo,
	}
	return d
}

// Execute runs a request through the full gate: classify, refuse or defer
// for confirmation, perform, audit. It always returns a structured Result
// carrying the governing verdict.
func (d *Dispatcher) Execute(ctx context.Context, req Request) Result {
	handler, ok := d.handlers[req.Action]
	if !ok {
		// No handler means nothing was attempted, so the verdict is a
		// plain safe one rather than a refusal.
		res := Result{
			Success: false,
			Error:   "unsupported action",
			Safety:  safety.SafeVerdict("no handler for action " + string(req.Action)),
		}
		d.record(req, res)
		return res
	}

	v := d.Classify(req)

	if v.Risk == safety.RiskBlocked {
		d.logger.Warn("action blocked", "action", req.Action, "summary", req.Summary(), "reason", v.Reason.String())
		res := Result{Success: false, Error: v.Reason.String(), Safety: v}
		d.record(req, res)
		return res
	}

	if v.RequiresConfirmation && !req.Confirmed {
		res := Result{Success: false, Output: "confirmation required", Safety: v}
		d.record(req, res)
		return res
	}

	output, err := handler(ctx, d, req)
	res := Result{Success: err == nil, Output: output, Safety: v}
	if err != nil {
		res.Error = err.Error()
		d.logger.Error("action failed", "action", req.Action, "summary", req.Summary(), "err", err)
	} else {
		d.logger.Info("action executed", "action", req.Action, "summary", req.Summary(), "risk", v.Risk)
	}
	d.record(req, res)
	return res
}

// Classify picks the classifier matching the request's nature and evaluates
// it. It never executes anything.
func (d *Dispatcher) Classify(req Request) safety.SafetyVerdict {
	switch req.Action {
	case KindRunShell:
		return d.engine.ClassifyShellCommand(req.Command)
	case KindReadFile:
		return d.engine.ClassifyFileOperation(safety.OpRead, req.Path)
	case KindWriteFile:
		return d.engine.ClassifyFileOperation(safety.OpWrite, req.Path)
	case KindDeleteFile:
		return d.engine.ClassifyFileOperation(safety.OpDelete, req.Path)
	case KindMoveFile:
		return d.engine.ClassifyMove(req.Path, req.Destination)
	case KindKillProc:
		return d.engine.ClassifyProcessKill(req.ProcessName)
	case KindLaunchApp:
		return d.engine.ClassifyAppLaunch(req.AppName)
	case KindSystemInfo:
		return safety.SafeVerdict("system information query")
	default:
		return safety.SafeVerdict("nothing to check")
	}
}

func (d *Dispatcher) record(req Request, res Result) {
	d.sink.Append(audit.NewRecord(
		string(req.Action),
		req.Summary(),
		req.Confirmed,
		res.Safety,
		res.Success,
		res.Error,
	))
}
