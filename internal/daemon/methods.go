package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/forgeai/companion/internal/action"
	"github.com/forgeai/companion/internal/connection"
	"github.com/forgeai/companion/internal/safety"
)

// CheckSafetyParams parameterizes evaluation-only classification.
type CheckSafetyParams struct {
	Action  string `json:"action"`
	Path    string `json:"path,omitempty"`
	Command string `json:"command,omitempty"`
}

// StatusResult mirrors the companion status surface.
type StatusResult struct {
	Connected    bool   `json:"connected"`
	GatewayURL   string `json:"gateway_url,omitempty"`
	SafetyActive bool   `json:"safety_active"`
	Version      string `json:"version"`
}

// PromptResult carries the safety prompt and its version.
type PromptResult struct {
	Version string `json:"version"`
	Prompt  string `json:"prompt"`
}

func (s *IPCServer) dispatch(ctx context.Context, method string, params json.RawMessage) (any, *RPCError) {
	switch method {
	case "execute_action":
		return s.handleExecuteAction(ctx, params)
	case "check_safety":
		return s.handleCheckSafety(params)
	case "get_safety_prompt":
		return PromptResult{Version: safety.PromptVersion, Prompt: safety.Prompt()}, nil
	case "get_status":
		return s.handleStatus(), nil
	case "health":
		return map[string]string{"status": "ok", "version": s.version}, nil
	default:
		return nil, rpcError(ErrCodeMethodNotFound, "unknown method %q", method)
	}
}

func (s *IPCServer) handleExecuteAction(ctx context.Context, params json.RawMessage) (any, *RPCError) {
	var req action.Request
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, rpcError(ErrCodeInvalidParams, "invalid action request: %v", err)
	}
	if req.Action == "" {
		return nil, rpcError(ErrCodeInvalidParams, "action is required")
	}

	s.logger.Info("execute_action", "action", req.Action, "confirmed", req.Confirmed)
	res := s.dispatcher.Execute(ctx, req)
	s.logger.Info("execute_action result", "action", req.Action, "success", res.Success, "risk", res.Safety.Risk)
	return res, nil
}

// handleCheckSafety classifies without executing. A command takes priority
// over a path; with neither there is nothing to check and the verdict is an
// unconditional safe/allow.
func (s *IPCServer) handleCheckSafety(params json.RawMessage) (any, *RPCError) {
	var p CheckSafetyParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, rpcError(ErrCodeInvalidParams, "invalid check_safety params: %v", err)
	}

	if strings.TrimSpace(p.Command) != "" {
		return s.engine.ClassifyShellCommand(p.Command), nil
	}
	if strings.TrimSpace(p.Path) != "" {
		return s.engine.ClassifyFileOperation(FileOpForActionName(p.Action), p.Path), nil
	}
	return safety.SafetyVerdict{
		Allowed: true,
		Risk:    safety.RiskSafe,
		Reason:  safety.Reason{Category: safety.ReasonNothingToCheck, Detail: "no path or command to check"},
	}, nil
}

// FileOpForActionName maps an action name onto the file-operation axis.
// Unknown actions with a path are treated as writes, the restrictive default.
func FileOpForActionName(name string) safety.FileOp {
	switch action.Kind(name) {
	case action.KindReadFile:
		return safety.OpRead
	case action.KindDeleteFile:
		return safety.OpDelete
	case action.KindMoveFile:
		return safety.OpMove
	default:
		return safety.OpWrite
	}
}

func (s *IPCServer) handleStatus() StatusResult {
	status := StatusResult{SafetyActive: true, Version: s.version}
	if s.creds == nil {
		return status
	}
	creds, err := s.creds.Load()
	if err != nil {
		if !errors.Is(err, connection.ErrNotPaired) {
			s.logger.Warn("loading credentials", "err", err)
		}
		return status
	}
	status.Connected = true
	status.GatewayURL = creds.GatewayURL
	return status
}
