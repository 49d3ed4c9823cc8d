package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/interact"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/runner"
)

func newRunCmd() *cobra.Command {
	var workingDir, secretName, region string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the synthetic monitor once",
		Long:  `Runs every verification step once and exits 0 when they all pass, 1 otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.Browser.WorkingDir = workingDir
			if secretName != "" {
				cfg.Credential.SecretName = secretName
			}
			if region != "" {
				cfg.Credential.Region = region
			}

			log := logger.NewLogrusLogger(cfg.Log.Level, cfg.Log.Format)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runMonitor(ctx, cfg, log)
		},
	}

	cmd.Flags().StringVar(&workingDir, "workingdir", "", "directory holding chromedriver and chrome-linux/ (required)")
	cmd.Flags().StringVar(&secretName, "secret", "", "override credential.secret_name")
	cmd.Flags().StringVar(&region, "region", "", "override credential.region")
	cmd.MarkFlagRequired("workingdir")

	return cmd
}

func runMonitor(ctx context.Context, cfg *Config, log logger.Logger) error {
	provider, name, err := newProvider(ctx, cfg.Credential, log)
	if err != nil {
		log.Error(ctx, "failed to initialize credential provider", map[string]interface{}{
			"error": err.Error(),
		})
		return errRunFailed
	}

	profile, err := provider.Resolve(ctx, name)
	if err != nil {
		log.Error(ctx, "failed to resolve monitoring credentials", map[string]interface{}{
			"secret": name,
			"error":  err.Error(),
		})
		return errRunFailed
	}

	reporters, closeReporters, err := newReporters(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to initialize reporters", map[string]interface{}{
			"error": err.Error(),
		})
		return errRunFailed
	}
	defer closeReporters()

	startedAt := time.Now()
	session, err := browser.Acquire(ctx, cfg.BrowserSessionConfig(), log)
	if err != nil {
		log.Error(ctx, "failed to start browser session", map[string]interface{}{
			"working_dir": cfg.Browser.WorkingDir,
			"error":       err.Error(),
		})
		runner.ReportSetupFailure(ctx, profile, startedAt, err, log, reporters...)
		return errRunFailed
	}
	defer session.Release()

	settings := cfg.FlowSettings()
	waiter := interact.NewWaiter(session, cfg.Browser.PollInterval, log)
	interactor := interact.NewInteractor(session, waiter, cfg.InteractOptions(), log)

	r := runner.New(profile, session, interactor, settings, log,
		runner.WithSteps(runner.Steps(profile, settings, cfg.Flow.AppName)...),
		runner.WithReporters(reporters...),
	)

	if v := r.Run(ctx); !v.OK() {
		return errRunFailed
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}
