package safety

import "testing"

func TestClassifyProcessKill(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name    string
		process string
		want    RiskLevel
	}{
		{"init", "init", RiskBlocked},
		{"systemd", "systemd", RiskBlocked},
		{"launchd", "launchd", RiskBlocked},
		{"sshd", "sshd", RiskBlocked},
		{"full path to critical", "/usr/lib/systemd/systemd", RiskBlocked},
		{"windows lsass", "lsass.exe", RiskBlocked},
		{"browser", "firefox", RiskDangerous},
		{"user daemon", "node", RiskDangerous},
		{"empty name", "", RiskDangerous},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := e.ClassifyProcessKill(tc.process)
			if v.Risk != tc.want {
				t.Errorf("ClassifyProcessKill(%q) risk = %s, want %s", tc.process, v.Risk, tc.want)
			}
			if tc.want == RiskBlocked && v.Allowed {
				t.Errorf("ClassifyProcessKill(%q) blocked but allowed", tc.process)
			}
			if tc.want == RiskDangerous && !v.RequiresConfirmation {
				t.Errorf("ClassifyProcessKill(%q) should require confirmation", tc.process)
			}
		})
	}
}

func TestClassifyAppLaunch(t *testing.T) {
	e := newTestEngine()

	v := e.ClassifyAppLaunch("Calculator")
	if v.Risk != RiskCaution || !v.Allowed {
		t.Fatalf("risk = %s allowed = %v, want caution/allowed", v.Risk, v.Allowed)
	}
	if v.RequiresConfirmation {
		t.Fatalf("app launch should not require confirmation by default")
	}

	if v := e.ClassifyAppLaunch(""); v.Risk != RiskCaution {
		t.Fatalf("empty app name risk = %s, want caution", v.Risk)
	}
}
