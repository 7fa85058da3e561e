package config

// DefaultConfig returns the built-in default configuration. The rule pattern
// lists default to empty: the safety engine always carries its built-in
// table, and config patterns only extend it.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			PermittedRoots:     []string{},
			ConfirmCaution:     false,
			CommandTimeoutSecs: 60,
			MaxReadKB:          1024,
		},
		Daemon: DaemonConfig{
			Socket:     "",
			LogLevel:   "info",
			PIDFile:    "",
			WatchRules: true,
		},
		Audit: AuditConfig{
			LogPath:       "",
			DatabasePath:  "",
			RetentionDays: 365,
		},
		Rules: RulesConfig{
			Blocked:        []string{},
			Dangerous:      []string{},
			Caution:        []string{},
			Safe:           []string{},
			ProtectedPaths: []string{},
		},
	}
}
