package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"feedcaster/internal/config"
)

func noEnv(string) string { return "" }

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd(noEnv)
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "feedcaster dev") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunFailsWithoutCredentials(t *testing.T) {
	root := newRootCmd(noEnv)
	root.SetArgs([]string{"run"})
	err := root.ExecuteContext(context.Background())
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestExecuteExitCodes(t *testing.T) {
	if code := execute(context.Background(), []string{"version"}, noEnv); code != 0 {
		t.Fatalf("version exit code = %d", code)
	}
	if code := execute(context.Background(), []string{"run"}, noEnv); code != 1 {
		t.Fatalf("missing credentials exit code = %d, want 1", code)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	p := filepath.Join(t.TempDir(), "feedcaster.yaml")
	if err := os.WriteFile(p, []byte("nope: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	root := newRootCmd(noEnv)
	root.SetArgs([]string{"run", "--config", p})
	err := root.ExecuteContext(context.Background())
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("err = %v", err)
	}
}

func TestUnattendedFlagOrEnv(t *testing.T) {
	opt := &options{getenv: noEnv}
	if opt.env().Unattended {
		t.Fatal("unattended should default to false")
	}
	opt.unattended = true
	if !opt.env().Unattended {
		t.Fatal("flag should force unattended")
	}
	opt = &options{getenv: func(k string) string {
		if k == config.EnvActions {
			return "true"
		}
		return ""
	}}
	if !opt.env().Unattended {
		t.Fatal("GITHUB_ACTIONS=true should imply unattended")
	}
}

func TestScheduleConfigCarriesTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Schedule.Spec = "30m"
	cfg.Schedule.Timezone = "UTC"
	cfg.Schedule.Timeout = "5m"

	sc, err := scheduleConfig(cfg)
	if err != nil {
		t.Fatalf("scheduleConfig: %v", err)
	}
	if sc.Spec != "30m" || sc.Timezone != "UTC" || sc.Timeout != 5*time.Minute {
		t.Fatalf("schedule config = %+v", sc)
	}

	cfg.Schedule.Timeout = "soon"
	if _, err := scheduleConfig(cfg); err == nil {
		t.Fatal("invalid timeout should fail")
	}
}
