package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"feedcaster/internal/config"
	"feedcaster/internal/run"
	"feedcaster/internal/schedule"
	logx "feedcaster/pkg/logx"
)

var (
	version = "dev"
	commit  = "none"
)

type options struct {
	configPath string
	unattended bool
	getenv     func(string) string
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, getenv func(string) string) int {
	// A local .env is optional; real environment variables win.
	_ = godotenv.Load()

	root := newRootCmd(getenv)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "fatal:", err)
		return 1
	}
	return 0
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	opt := &options{getenv: getenv}

	root := &cobra.Command{
		Use:           "feedcaster",
		Short:         "Post fresh feed items to a Telegram channel",
		Long:          "feedcaster gathers RSS articles, quotes, facts and tips, skips what was already posted, and publishes the rest to a Telegram channel.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opt.configPath, "config", "c", "", "path to a YAML or JSON config file (defaults apply when empty)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one publishing pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), opt)
		},
	}
	runCmd.Flags().BoolVar(&opt.unattended, "unattended", false, "run the durability hook after saving (implied by GITHUB_ACTIONS=true)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run on the configured schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opt)
		},
	}
	serveCmd.Flags().BoolVar(&opt.unattended, "unattended", false, "run the durability hook after every pass")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "feedcaster %s (commit: %s)\n", version, commit)
		},
	}

	root.AddCommand(runCmd, serveCmd, versionCmd)
	return root
}

func (o *options) env() run.Env {
	return run.Env{
		Credentials: config.CredentialsFromEnv(o.getenv),
		Unattended:  o.unattended || config.Unattended(o.getenv),
		Getenv:      o.getenv,
	}
}

func loggingConfig(c config.LoggingConfig) logx.Config {
	return logx.Config{
		Level:   c.Level,
		Console: c.Console,
		File:    logx.FileConfig{Enabled: c.File.Enabled, Path: c.File.Path},
	}
}

// setup loads config and starts the logging service.
func setup(opt *options) (*config.Manager, *logx.Service, logx.Logger, error) {
	boot := logx.NewConsole("info")
	mgr := config.NewManager(opt.configPath, boot)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, nil, logx.Logger{}, fmt.Errorf("load config: %w", err)
	}
	svc, log := logx.New(loggingConfig(cfg.Logging))
	return mgr, svc, log, nil
}

func runOnce(ctx context.Context, opt *options) error {
	mgr, svc, log, err := setup(opt)
	if err != nil {
		return err
	}
	defer closeQuietly(svc)

	r, closeStore, err := run.Build(mgr.Get(), opt.env(), log)
	if err != nil {
		return err
	}
	defer closeStore()

	_, err = r.Run(ctx)
	return err
}

func serve(ctx context.Context, opt *options) error {
	mgr, svc, log, err := setup(opt)
	if err != nil {
		return err
	}
	defer closeQuietly(svc)

	env := opt.env()
	if err := env.Credentials.Validate(); err != nil {
		return err
	}

	job := func(ctx context.Context) error {
		r, closeStore, err := run.Build(mgr.Get(), env, log)
		if err != nil {
			return err
		}
		defer closeStore()
		_, err = r.Run(ctx)
		return err
	}

	sched := schedule.New(job, log)
	notify := schedule.NewNotifier(log)
	cfg := mgr.Get()

	sc, err := scheduleConfig(cfg)
	if err != nil {
		return err
	}
	if cfg.Schedule.RunOnStart {
		if err := runWithTimeout(ctx, sched, sc.Timeout); err != nil {
			log.Error("startup run failed", logx.Err(err))
		}
	}
	if err := sched.Start(ctx, sc); err != nil {
		return err
	}
	defer sched.Stop()

	updates := mgr.Subscribe(1)
	go func() {
		if err := mgr.Watch(ctx); err != nil {
			log.Warn("config watch ended", logx.Err(err))
		}
	}()

	notify.Ready()
	notify.Status("next run " + sched.Next().Format("2006-01-02 15:04:05 MST"))
	log.Info("feedcaster serving", logx.String("version", version), logx.Time("next", sched.Next()))

	for {
		select {
		case <-ctx.Done():
			notify.Stopping()
			log.Info("shutting down")
			return nil
		case cfg := <-updates:
			notify.Reloading()
			svc.Apply(loggingConfig(cfg.Logging))
			sc, err := scheduleConfig(cfg)
			if err == nil {
				err = sched.Apply(sc)
			}
			if err != nil {
				log.Error("schedule not updated", logx.Err(err))
			}
			notify.Ready()
			notify.Status("next run " + sched.Next().Format("2006-01-02 15:04:05 MST"))
		}
	}
}

func runWithTimeout(ctx context.Context, sched *schedule.Scheduler, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return sched.RunNow(ctx)
}

func scheduleConfig(cfg *config.Config) (schedule.Config, error) {
	rt, err := cfg.Runtime()
	if err != nil {
		return schedule.Config{}, err
	}
	return schedule.Config{
		Spec:     cfg.Schedule.Spec,
		Timezone: cfg.Schedule.Timezone,
		Timeout:  rt.ScheduleTimeout,
	}, nil
}

func closeQuietly(c io.Closer) { _ = c.Close() }
