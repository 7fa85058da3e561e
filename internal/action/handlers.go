package action

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Handlers perform exactly the narrow OS operation their kind implies and
// nothing else. None of them branches on content it did not itself request.

func handleReadFile(_ context.Context, d *Dispatcher, req Request) (string, error) {
	if req.Path == "" {
		return "", fmt.Errorf("read_file: path is required")
	}
	f, err := os.Open(req.Path)
	if err != nil {
		return "", fmt.Errorf("read_file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, d.opts.MaxReadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read_file: %w", err)
	}
	if int64(len(data)) > d.opts.MaxReadBytes {
		// The caller must be able to tell a prefix from the whole file.
		return string(data[:d.opts.MaxReadBytes]) +
			fmt.Sprintf("\n[truncated: read capped at %d bytes]", d.opts.MaxReadBytes), nil
	}
	return string(data), nil
}

func handleWriteFile(_ context.Context, _ *Dispatcher, req Request) (string, error) {
	if req.Path == "" {
		return "", fmt.Errorf("write_file: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(req.Path), 0o750); err != nil {
		return "", fmt.Errorf("write_file: %w", err)
	}
	if err := os.WriteFile(req.Path, []byte(req.Content), 0o640); err != nil {
		return "", fmt.Errorf("write_file: %w", err)
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(req.Content), req.Path), nil
}

func handleDeleteFile(_ context.Context, _ *Dispatcher, req Request) (string, error) {
	if req.Path == "" {
		return "", fmt.Errorf("delete_file: path is required")
	}
	if err := os.Remove(req.Path); err != nil {
		return "", fmt.Errorf("delete_file: %w", err)
	}
	return "deleted " + req.Path, nil
}

func handleMoveFile(_ context.Context, _ *Dispatcher, req Request) (string, error) {
	if req.Path == "" || req.Destination == "" {
		return "", fmt.Errorf("move_file: path and destination are required")
	}
	if err := os.MkdirAll(filepath.Dir(req.Destination), 0o750); err != nil {
		return "", fmt.Errorf("move_file: %w", err)
	}
	if err := os.Rename(req.Path, req.Destination); err != nil {
		return "", fmt.Errorf("move_file: %w", err)
	}
	return fmt.Sprintf("moved %s to %s", req.Path, req.Destination), nil
}

func handleRunShell(ctx context.Context, d *Dispatcher, req Request) (string, error) {
	if strings.TrimSpace(req.Command) == "" {
		return "", fmt.Errorf("run_shell_command: command is required")
	}

	ctx, cancel := context.WithTimeout(ctx, d.opts.CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, shellBinary(), "-c", req.Command)
	out, err := cmd.CombinedOutput()
	output := string(out)
	if ctx.Err() == context.DeadlineExceeded {
		return output, fmt.Errorf("run_shell_command: timed out after %s", d.opts.CommandTimeout)
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return output, fmt.Errorf("run_shell_command: exit status %d", exitErr.ExitCode())
		}
		return output, fmt.Errorf("run_shell_command: %w", err)
	}
	return output, nil
}

func shellBinary() string {
	if runtime.GOOS == "windows" {
		return "cmd"
	}
	return "sh"
}

func handleLaunchApp(_ context.Context, _ *Dispatcher, req Request) (string, error) {
	if req.AppName == "" {
		return "", fmt.Errorf("launch_app: app_name is required")
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", "-a", req.AppName)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", req.AppName)
	default:
		cmd = exec.Command(req.AppName)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("launch_app: %w", err)
	}
	// The launched process belongs to the OS from here on.
	_ = cmd.Process.Release()
	return "launched " + req.AppName, nil
}

func handleKillProcess(_ context.Context, _ *Dispatcher, req Request) (string, error) {
	if req.ProcessName == "" {
		return "", fmt.Errorf("kill_process: process_name is required")
	}

	procs, err := process.Processes()
	if err != nil {
		return "", fmt.Errorf("kill_process: listing processes: %w", err)
	}

	target := strings.ToLower(req.ProcessName)
	killed := 0
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if strings.ToLower(name) != target {
			continue
		}
		if err := p.Terminate(); err != nil {
			if err := p.Kill(); err != nil {
				continue
			}
		}
		killed++
	}
	if killed == 0 {
		return "", fmt.Errorf("kill_process: no process named %q", req.ProcessName)
	}
	return fmt.Sprintf("terminated %d process(es) named %s", killed, req.ProcessName), nil
}

func handleSystemInfo(_ context.Context, _ *Dispatcher, _ Request) (string, error) {
	info := map[string]any{
		"os":   runtime.GOOS,
		"arch": runtime.GOARCH,
	}
	if h, err := host.Info(); err == nil {
		info["hostname"] = h.Hostname
		info["platform"] = h.Platform
		info["platform_version"] = h.PlatformVersion
		info["uptime_seconds"] = h.Uptime
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info["memory_total"] = vm.Total
		info["memory_used_percent"] = fmt.Sprintf("%.1f", vm.UsedPercent)
	}
	if n, err := cpu.Counts(true); err == nil {
		info["cpu_count"] = n
	}

	data, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("system_info: %w", err)
	}
	return string(data), nil
}
