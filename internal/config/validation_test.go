package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Run("defaults pass", func(t *testing.T) {
		if err := Validate(DefaultConfig()); err != nil {
			t.Fatal(err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			"unknown log level",
			func(c *Config) { c.Daemon.LogLevel = "chatty" },
			"log_level",
		},
		{
			"zero timeout",
			func(c *Config) { c.General.CommandTimeoutSecs = 0 },
			"command_timeout",
		},
		{
			"negative read cap",
			func(c *Config) { c.General.MaxReadKB = -1 },
			"max_read_kb",
		},
		{
			"negative retention",
			func(c *Config) { c.Audit.RetentionDays = -1 },
			"retention_days",
		},
		{
			"invalid blocked pattern",
			func(c *Config) { c.Rules.Blocked = []string{"("} },
			"rules.blocked",
		},
		{
			"invalid safe pattern",
			func(c *Config) { c.Rules.Safe = []string{"[z-a]"} },
			"rules.safe",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("err = %v, want mention of %s", err, tc.wantSub)
			}
		})
	}
}
