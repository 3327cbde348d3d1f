// Package persist pushes the dedup snapshot to its store of record after a
// run. The git hook commits the store file back to the repository the job
// was checked out from.
package persist

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	logx "feedcaster/pkg/logx"
)

const (
	DefaultCommitMessage = "chore: update posted ids (automation)"
	DefaultTimeout       = 60 * time.Second
)

// Hook persists a snapshot file to durable external storage.
type Hook interface {
	Persist(ctx context.Context, path string) error
}

// Nop does nothing.
type Nop struct{}

func (Nop) Persist(context.Context, string) error { return nil }

// CommandRunner executes a command in dir and returns its combined output.
type CommandRunner func(ctx context.Context, dir string, name string, args ...string) ([]byte, error)

type GitConfig struct {
	Dir           string // repository working tree; "" means current directory
	CommitMessage string
	AuthorName    string
	AuthorEmail   string
	// Ref is the push destination (GITHUB_REF in Actions). Empty pushes the
	// current branch to its upstream.
	Ref     string
	Timeout time.Duration
}

// Git commits and pushes the snapshot file.
type Git struct {
	cfg GitConfig
	run CommandRunner
	log logx.Logger
}

func NewGit(cfg GitConfig, run CommandRunner, log logx.Logger) *Git {
	if cfg.CommitMessage == "" {
		cfg.CommitMessage = DefaultCommitMessage
	}
	if cfg.AuthorName == "" {
		cfg.AuthorName = "GitHub Actions"
	}
	if cfg.AuthorEmail == "" {
		cfg.AuthorEmail = "actions@github.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if run == nil {
		run = ExecRunner
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Git{cfg: cfg, run: run, log: log.With(logx.String("comp", "persist"))}
}

func (g *Git) Persist(ctx context.Context, path string) error {
	if _, err := g.git(ctx, "add", "--", path); err != nil {
		return err
	}
	out, err := g.git(ctx, "status", "--porcelain", "--", path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(out)) == "" {
		g.log.Info("no changes to commit", logx.String("path", path))
		return nil
	}

	if _, err := g.git(ctx, "config", "user.email", g.cfg.AuthorEmail); err != nil {
		return err
	}
	if _, err := g.git(ctx, "config", "user.name", g.cfg.AuthorName); err != nil {
		return err
	}
	if _, err := g.git(ctx, "commit", "-m", g.cfg.CommitMessage, "--", path); err != nil {
		return err
	}

	if g.cfg.Ref != "" {
		if _, err := g.git(ctx, "push", "origin", "HEAD:"+g.cfg.Ref); err == nil {
			g.log.Info("committed and pushed", logx.String("path", path), logx.String("ref", g.cfg.Ref))
			return nil
		}
		g.log.Warn("push to ref failed; falling back to default push", logx.String("ref", g.cfg.Ref))
	}
	if _, err := g.git(ctx, "push"); err != nil {
		return err
	}
	g.log.Info("committed and pushed", logx.String("path", path))
	return nil
}

func (g *Git) git(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	out, err := g.run(ctx, g.cfg.Dir, "git", args...)
	if err != nil {
		return out, fmt.Errorf("git %s: %w: %s", args[0], err, bytes.TrimSpace(out))
	}
	return out, nil
}

// ExecRunner runs the command with os/exec.
func ExecRunner(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	return cmd.CombinedOutput()
}
