package safety

// Built-in classification rules. The rule table is configuration data:
// internal/config layers user-supplied patterns on top of these defaults,
// and the daemon hot-reloads them when the config file changes.

var defaultBlockedPatterns = []string{
	// Recursive/forced deletion of root, system or home trees.
	`^rm\s+(-\S+\s+)*-\S*[rf]\S*\s+/(\s|$)`,
	`^rm\s+(-\S+\s+)*-\S*[rf]\S*\s+/\*`,
	`^rm\s+(-\S+\s+)*-\S*[rf]\S*\s+/(bin|boot|dev|etc|home|lib|lib64|proc|root|run|sbin|srv|sys|usr|var)(/|\s|$)`,
	`^rm\s+(-\S+\s+)*-\S*[rf]\S*\s+~(\s|/?\s*$)`,
	// Disk wipe and raw device writes.
	`\bdd\b.*\bof=/dev/`,
	`^mkfs(\.|\s|$)`,
	`^(fdisk|parted)\s+/dev/`,
	`^shred\s+.*\b/dev/`,
	`>\s*/dev/(sd|nvme|hd|disk)`,
	// Fork bombs.
	`:\s*\(\s*\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;`,
	`\.\s*\(\s*\)\s*\{\s*\.\s*\|\s*\.\s*&\s*\}`,
	// Killing the init process.
	`^kill\s+(-\S+\s+)*-?9?\s*1\s*$`,
	`^(pkill|killall)\s+(-\S+\s+)*(init|systemd|launchd|kernel_task)\b`,
}

var defaultDangerousPatterns = []string{
	// Recursive/forced deletion anywhere else.
	`^rm\s+(-\S+\s+)*-\S*r`,
	`^rm\s+(-\S+\s+)*-\S*f`,
	// Piping remote content into an interpreter.
	`(curl|wget)\b.*\|\s*(ba|z|k|da)?sh\b`,
	`(curl|wget)\b.*\|\s*(python|perl|ruby|node)\b`,
	// History-destroying version control.
	`^git\s+push\s+.*(--force|-f)(\s|$)`,
	`^git\s+reset\s+--hard`,
	`^git\s+clean\s+-\S*f`,
	// Recursive permission changes on system paths.
	`^(chmod|chown)\s+(-\S+\s+)*-\S*R\S*\s+\S*\s*/(etc|usr|var|boot|bin|sbin|lib)`,
	// Service and process termination.
	`^(systemctl|service)\s+(stop|disable|mask)\b`,
	`^(kill|pkill|killall)\b`,
	`^shutdown\b`,
	`^reboot\b`,
	// Firewall/network teardown.
	`^(iptables|nft)\s+(-F|flush)`,
	`^ifconfig\s+\S+\s+down`,
	// Bulk data destruction in databases.
	`\bDROP\s+(DATABASE|SCHEMA|TABLE)\b`,
	`\bTRUNCATE\s+TABLE\b`,
	`\bDELETE\s+FROM\b`,
}

var defaultCautionPatterns = []string{
	// Reversible or narrowly scoped local mutation.
	`^rm(\s|$)`,
	`^(mkdir|rmdir|touch|mv|cp|ln)\b`,
	`^(chmod|chown)\b`,
	`^git\s+(add|commit|checkout|merge|rebase|stash|branch|pull|push|fetch)\b`,
	`^(npm|pnpm|yarn)\s+(install|uninstall|update|add|remove)\b`,
	`^pip3?\s+(install|uninstall)\b`,
	`^(cargo|go)\s+(install|get)\b`,
	`^(apt|apt-get|brew|dnf|yum|pacman)\b`,
	`^tar\s+(-\S+\s+)*-?\S*x`,
	`^unzip\b`,
	`>{1,2}\s*\S`,
	`^tee\b`,
	`^(curl|wget)\b.*\s(-o|-O|--output)\b`,
}

// defaultSafePatterns is an allowlist that demotes a caution-only match back
// to safe. It is never consulted when a blocked or dangerous rule matched,
// so an allowlist entry cannot open a bypass.
var defaultSafePatterns = []string{
	`^rm\s+\S+\.(log|tmp|bak)$`,
	`^git\s+stash(\s+list)?\s*$`,
	`^touch\s+\S+$`,
	`^mkdir\s+(-p\s+)?\S+$`,
}

// defaultProtectedPaths are filesystem zones where file operations escalate.
// The companion credential directory is appended at engine construction.
var defaultProtectedPaths = []string{
	"/etc",
	"/usr",
	"/bin",
	"/sbin",
	"/boot",
	"/dev",
	"/proc",
	"/sys",
	"/var",
	"/lib",
	"/lib64",
	"/root",
	"/System",
	"/Library",
	"/private/etc",
}

// criticalProcesses are process names whose termination is refused outright.
var criticalProcesses = map[string]bool{
	"init":         true,
	"systemd":      true,
	"launchd":      true,
	"kernel_task":  true,
	"kthreadd":     true,
	"sshd":         true,
	"dbus-daemon":  true,
	"WindowServer": true,
	"loginwindow":  true,
	"csrss.exe":    true,
	"wininit.exe":  true,
	"lsass.exe":    true,
}
