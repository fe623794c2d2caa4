package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestGetUsesLdflags(t *testing.T) {
	origVersion, origCommit, origBuild := Version, GitCommit, BuildTime
	defer func() { Version, GitCommit, BuildTime = origVersion, origCommit, origBuild }()

	Version, GitCommit, BuildTime = "1.2.3", "abcdef0123", "2026-01-02T03:04:05Z"
	info := Get()
	if info.Version != "1.2.3" || info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("unexpected info %+v", info)
	}
	if info.GitCommit != "abcdef0" {
		t.Errorf("expected commit truncated to 7, got %q", info.GitCommit)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("expected %s, got %s", runtime.Version(), info.GoVersion)
	}
}

func TestApplyBuildSettings(t *testing.T) {
	info := Info{Version: "dev"}
	applyBuildSettings(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		{Key: "vcs.modified", Value: "true"},
	})
	if info.GitCommit != "0123456" || info.BuildTime == "" || !info.Dirty {
		t.Errorf("unexpected info %+v", info)
	}
	if info.IsRelease() {
		t.Error("dev build must not be a release")
	}
	if got := info.Short(); got != "dev-0123456-dirty" {
		t.Errorf("unexpected short version %q", got)
	}
}

func TestString(t *testing.T) {
	info := Info{Version: "1.0.0", GoVersion: "go1.26", Platform: "linux/amd64"}
	s := info.String()
	if !strings.HasPrefix(s, "watchdog 1.0.0 (go1.26, linux/amd64)") {
		t.Errorf("unexpected string %q", s)
	}
	if !info.IsRelease() {
		t.Error("expected release")
	}
}
