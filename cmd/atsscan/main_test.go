package main

import (
	"runtime/debug"
	"testing"
)

func TestBuildVersion(t *testing.T) {
	installed := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		},
	}

	cases := []struct {
		name    string
		version string
		commit  string
		date    string
		info    *debug.BuildInfo
		want    string
	}{
		{"plain dev", "dev", "", "", nil, "dev"},
		{"ldflags win", "1.2.0", "abc123", "2026-09-30", installed, "1.2.0 (abc123, 2026-09-30)"},
		{"commit only", "1.2.0", "abc123", "", nil, "1.2.0 (abc123)"},
		{"date only", "1.2.0", "", "2026-09-30", nil, "1.2.0 (2026-09-30)"},
		{"go install", "dev", "", "", installed, "v0.3.1 (0123456789ab, 2026-10-01T12:00:00Z)"},
		{"devel build", "dev", "", "", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, "dev"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := buildVersion(tc.version, tc.commit, tc.date, tc.info); got != tc.want {
				t.Fatalf("buildVersion() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("ATSSCAN_TEST_FLAG", " Yes ")
	if !envBool("ATSSCAN_TEST_FLAG") {
		t.Fatalf("expected yes to be true")
	}
	t.Setenv("ATSSCAN_TEST_FLAG", "0")
	if envBool("ATSSCAN_TEST_FLAG") {
		t.Fatalf("expected 0 to be false")
	}
}
