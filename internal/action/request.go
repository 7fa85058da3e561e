// Package action implements the dispatcher through which every local effect
// must pass. A request is classified, gated on the verdict and the caller's
// confirmation state, executed by exactly one narrow handler, and audited.
package action

import (
	"github.com/forgeai/companion/internal/safety"
)

// Kind identifies the type of local action requested. The set is open:
// unknown kinds are reported as unsupported, never guessed at.
type Kind string

// Known action kinds.
const (
	KindReadFile   Kind = "read_file"
	KindWriteFile  Kind = "write_file"
	KindDeleteFile Kind = "delete_file"
	KindMoveFile   Kind = "move_file"
	KindRunShell   Kind = "run_shell_command"
	KindLaunchApp  Kind = "launch_app"
	KindKillProc   Kind = "kill_process"
	KindSystemInfo Kind = "system_info"
)

// Request is a single action proposed by the remote orchestrator.
//
// Confirmed is meaningful only as a replay of an identical request that
// previously came back with requires_confirmation: the dispatcher holds no
// pending state, so the caller re-submits the full request after the user
// approves.
type Request struct {
	Action      Kind   `json:"action"`
	Path        string `json:"path,omitempty"`
	Destination string `json:"destination,omitempty"`
	Command     string `json:"command,omitempty"`
	Content     string `json:"content,omitempty"`
	ProcessName string `json:"process_name,omitempty"`
	AppName     string `json:"app_name,omitempty"`
	Confirmed   bool   `json:"confirmed"`
}

// Result is the uniform outcome of a dispatch. The governing verdict is
// attached even when nothing was executed, so the caller can always explain
// why.
type Result struct {
	Success bool                 `json:"success"`
	Output  string               `json:"output,omitempty"`
	Error   string               `json:"error,omitempty"`
	Safety  safety.SafetyVerdict `json:"safety"`
}

// Summary returns a short description of the request's target for logs and
// audit records.
func (r Request) Summary() string {
	switch r.Action {
	case KindReadFile, KindWriteFile, KindDeleteFile:
		return r.Path
	case KindMoveFile:
		return r.Path + " -> " + r.Destination
	case KindRunShell:
		return r.Command
	case KindLaunchApp:
		return r.AppName
	case KindKillProc:
		return r.ProcessName
	default:
		return ""
	}
}
