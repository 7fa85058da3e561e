package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// ConfigPath overrides the user config path if provided.
	ConfigPath string
	// FlagOverrides are highest-priority overrides from CLI flags
	// (dot-notated keys).
	FlagOverrides map[string]any
}

// Load returns the effective configuration after applying precedence:
// defaults < user (~/.companion/config.toml) < env (COMPANION_*) < flags.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v)

	path := opts.ConfigPath
	if path == "" {
		path = UserConfigPath()
	}
	if err := mergeConfigFile(v, path); err != nil {
		return Config{}, err
	}
	if err := applyEnvOverrides(v); err != nil {
		return Config{}, err
	}
	for k, val := range opts.FlagOverrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults seeds viper with built-in defaults.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("general.permitted_roots", def.General.PermittedRoots)
	v.SetDefault("general.confirm_caution", def.General.ConfirmCaution)
	v.SetDefault("general.command_timeout", def.General.CommandTimeoutSecs)
	v.SetDefault("general.max_read_kb", def.General.MaxReadKB)

	v.SetDefault("daemon.socket", def.Daemon.Socket)
	v.SetDefault("daemon.log_level", def.Daemon.LogLevel)
	v.SetDefault("daemon.pid_file", def.Daemon.PIDFile)
	v.SetDefault("daemon.watch_rules", def.Daemon.WatchRules)

	v.SetDefault("audit.log_path", def.Audit.LogPath)
	v.SetDefault("audit.database_path", def.Audit.DatabasePath)
	v.SetDefault("audit.retention_days", def.Audit.RetentionDays)

	v.SetDefault("rules.blocked", def.Rules.Blocked)
	v.SetDefault("rules.dangerous", def.Rules.Dangerous)
	v.SetDefault("rules.caution", def.Rules.Caution)
	v.SetDefault("rules.safe", def.Rules.Safe)
	v.SetDefault("rules.protected_paths", def.Rules.ProtectedPaths)
}

// mergeConfigFile merges the TOML config file if it exists.
func mergeConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat config %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("merge config %s: %w", path, err)
	}
	return nil
}

type envBinding struct {
	Env  string
	Key  string
	Kind string // string | int | bool | list
}

var envBindings = []envBinding{
	{"COMPANION_PERMITTED_ROOTS", "general.permitted_roots", "list"},
	{"COMPANION_CONFIRM_CAUTION", "general.confirm_caution", "bool"},
	{"COMPANION_COMMAND_TIMEOUT", "general.command_timeout", "int"},
	{"COMPANION_MAX_READ_KB", "general.max_read_kb", "int"},
	{"COMPANION_SOCKET", "daemon.socket", "string"},
	{"COMPANION_LOG_LEVEL", "daemon.log_level", "string"},
	{"COMPANION_PID_FILE", "daemon.pid_file", "string"},
	{"COMPANION_WATCH_RULES", "daemon.watch_rules", "bool"},
	{"COMPANION_AUDIT_LOG", "audit.log_path", "string"},
	{"COMPANION_AUDIT_DB", "audit.database_path", "string"},
	{"COMPANION_RETENTION_DAYS", "audit.retention_days", "int"},
}

// applyEnvOverrides reads COMPANION_* env vars and applies them.
func applyEnvOverrides(v *viper.Viper) error {
	for _, b := range envBindings {
		raw := os.Getenv(b.Env)
		if raw == "" {
			continue
		}
		parsed, err := parseValueByKind(raw, b.Kind)
		if err != nil {
			return fmt.Errorf("env %s: %w", b.Env, err)
		}
		v.Set(b.Key, parsed)
	}
	return nil
}

func parseValueByKind(raw, kind string) (any, error) {
	switch kind {
	case "int":
		return strconv.Atoi(raw)
	case "bool":
		return strconv.ParseBool(raw)
	case "list":
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	default:
		return raw, nil
	}
}

// CompanionDir returns the companion's state directory (~/.companion),
// creating it if needed.
func CompanionDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	dir := filepath.Join(home, ".companion")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating companion dir: %w", err)
	}
	return dir, nil
}

// UserConfigPath returns the user config file path (may not exist).
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".companion", "config.toml")
}

// WriteDefault renders the default configuration as TOML at path. It refuses
// to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(DefaultConfig()); err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
