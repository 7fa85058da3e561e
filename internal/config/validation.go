package config

import (
	"fmt"
	"regexp"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"fatal": true,
}

// Validate checks the configuration for values that would misbehave at
// runtime. User-supplied rule patterns must compile: a silently dropped
// pattern would weaken the policy the user thinks is in force.
func Validate(cfg Config) error {
	if !validLogLevels[cfg.Daemon.LogLevel] {
		return fmt.Errorf("daemon.log_level: unknown level %q", cfg.Daemon.LogLevel)
	}
	if cfg.General.CommandTimeoutSecs <= 0 {
		return fmt.Errorf("general.command_timeout: must be positive, got %d", cfg.General.CommandTimeoutSecs)
	}
	if cfg.General.MaxReadKB <= 0 {
		return fmt.Errorf("general.max_read_kb: must be positive, got %d", cfg.General.MaxReadKB)
	}
	if cfg.Audit.RetentionDays < 0 {
		return fmt.Errorf("audit.retention_days: must not be negative, got %d", cfg.Audit.RetentionDays)
	}

	for tier, patterns := range map[string][]string{
		"blocked":   cfg.Rules.Blocked,
		"dangerous": cfg.Rules.Dangerous,
		"caution":   cfg.Rules.Caution,
		"safe":      cfg.Rules.Safe,
	} {
		for _, p := range patterns {
			if _, err := regexp.Compile("(?i)" + p); err != nil {
				return fmt.Errorf("rules.%s: invalid pattern %q: %w", tier, p, err)
			}
		}
	}
	return nil
}
