// Package config implements hierarchical configuration for the companion.
// Precedence: defaults < user (~/.companion/config.toml) < env (COMPANION_*) < flags.
package config

import (
	"path/filepath"
	"time"

	"github.com/forgeai/companion/internal/safety"
)

// Config is the top-level configuration structure.
type Config struct {
	General GeneralConfig `toml:"general" mapstructure:"general"`
	Daemon  DaemonConfig  `toml:"daemon" mapstructure:"daemon"`
	Audit   AuditConfig   `toml:"audit" mapstructure:"audit"`
	Rules   RulesConfig   `toml:"rules" mapstructure:"rules"`
}

// GeneralConfig holds core policy knobs.
type GeneralConfig struct {
	// PermittedRoots are directories actions may touch without escalation.
	// Empty means home directory plus the system temp dir.
	PermittedRoots []string `toml:"permitted_roots" mapstructure:"permitted_roots"`
	// ConfirmCaution requires confirmation for caution-tier actions too.
	ConfirmCaution bool `toml:"confirm_caution" mapstructure:"confirm_caution"`
	// CommandTimeoutSecs bounds shell command execution.
	CommandTimeoutSecs int `toml:"command_timeout" mapstructure:"command_timeout"`
	// MaxReadKB caps read_file output size.
	MaxReadKB int `toml:"max_read_kb" mapstructure:"max_read_kb"`
}

// DaemonConfig holds IPC daemon settings.
type DaemonConfig struct {
	Socket     string `toml:"socket" mapstructure:"socket"`
	LogLevel   string `toml:"log_level" mapstructure:"log_level"`
	PIDFile    string `toml:"pid_file" mapstructure:"pid_file"`
	WatchRules bool   `toml:"watch_rules" mapstructure:"watch_rules"`
}

// AuditConfig holds audit trail settings.
type AuditConfig struct {
	LogPath       string `toml:"log_path" mapstructure:"log_path"`
	DatabasePath  string `toml:"database_path" mapstructure:"database_path"`
	RetentionDays int    `toml:"retention_days" mapstructure:"retention_days"`
}

// RulesConfig holds user-supplied classification patterns, layered on top of
// the built-in rule table.
type RulesConfig struct {
	Blocked        []string `toml:"blocked" mapstructure:"blocked"`
	Dangerous      []string `toml:"dangerous" mapstructure:"dangerous"`
	Caution        []string `toml:"caution" mapstructure:"caution"`
	Safe           []string `toml:"safe" mapstructure:"safe"`
	ProtectedPaths []string `toml:"protected_paths" mapstructure:"protected_paths"`
}

// RuleSet converts the configured patterns into the engine's form.
func (c Config) RuleSet() safety.RuleSet {
	return safety.RuleSet{
		Blocked:        c.Rules.Blocked,
		Dangerous:      c.Rules.Dangerous,
		Caution:        c.Rules.Caution,
		Safe:           c.Rules.Safe,
		ProtectedPaths: c.Rules.ProtectedPaths,
	}
}

// EngineOptions assembles safety engine options from the config.
func (c Config) EngineOptions(credentialDir string) safety.Options {
	return safety.Options{
		Rules:          c.RuleSet(),
		PermittedRoots: c.General.PermittedRoots,
		CredentialDir:  credentialDir,
		ConfirmCaution: c.General.ConfirmCaution,
	}
}

// CommandTimeout returns the shell timeout as a duration.
func (c Config) CommandTimeout() time.Duration {
	return time.Duration(c.General.CommandTimeoutSecs) * time.Second
}

// MaxReadBytes returns the read cap in bytes.
func (c Config) MaxReadBytes() int64 {
	return int64(c.General.MaxReadKB) * 1024
}

// SocketPath returns the daemon socket, defaulting under the companion dir.
func (c Config) SocketPath(companionDir string) string {
	if c.Daemon.Socket != "" {
		return c.Daemon.Socket
	}
	return filepath.Join(companionDir, "companion.sock")
}

// AuditLogPath returns the JSONL audit path, defaulting under companionDir.
func (c Config) AuditLogPath(companionDir string) string {
	if c.Audit.LogPath != "" {
		return c.Audit.LogPath
	}
	return filepath.Join(companionDir, "audit.jsonl")
}

// HistoryDBPath returns the sqlite history path, defaulting under
// companionDir. A database_path of "-" disables history.
func (c Config) HistoryDBPath(companionDir string) string {
	if c.Audit.DatabasePath == "-" {
		return ""
	}
	if c.Audit.DatabasePath != "" {
		return c.Audit.DatabasePath
	}
	return filepath.Join(companionDir, "history.db")
}
