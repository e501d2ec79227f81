// Package cmd contains the command-line interface definitions and
// execution logic for Deckhand. The root command wires the flag and
// environment configuration into the cache store, the registry
// resolver, and the update session, and runs either a single session
// or a cron-scheduled loop.
package cmd

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/deckhand-tools/deckhand/internal/actions"
	"github.com/deckhand-tools/deckhand/internal/api"
	"github.com/deckhand-tools/deckhand/internal/flags"
	"github.com/deckhand-tools/deckhand/internal/logging"
	"github.com/deckhand-tools/deckhand/internal/scheduling"
	"github.com/deckhand-tools/deckhand/pkg/cache"
	"github.com/deckhand-tools/deckhand/pkg/metrics"
	"github.com/deckhand-tools/deckhand/pkg/notifications"
	"github.com/deckhand-tools/deckhand/pkg/registry"
	"github.com/deckhand-tools/deckhand/pkg/resolver"
	"github.com/deckhand-tools/deckhand/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
)

// rootCmd is the Deckhand root command.
var rootCmd = NewRootCommand()

// NewRootCommand creates the root command with its run wiring.
func NewRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deckhand",
		Short: "Keeps accessory images in deploy manifests at their latest published version",
		Long: `Deckhand scans deploy manifests for accessory image declarations,
resolves the latest published semantic tag from each image's registry,
and rewrites the manifest in place when a newer version exists.`,
		PersistentPreRunE: preRun,
		RunE:              run,
		SilenceUsage:      true,
	}
}

// Execute is the entry point delegated to by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("Deckhand failed")
	}
}

func init() {
	flags.SetDefaults()
	flags.RegisterSystemFlags(rootCmd)
	flags.RegisterRegistryFlags(rootCmd)
}

// preRun configures logging before any session runs.
func preRun(c *cobra.Command, _ []string) error {
	return flags.SetupLogging(c.PersistentFlags())
}

// run wires the configured components together and executes the
// session loop.
func run(c *cobra.Command, _ []string) error {
	pflags := c.PersistentFlags()

	configDir, _ := pflags.GetString("config-dir")
	apply, _ := pflags.GetBool("apply")
	cacheDir, _ := pflags.GetString("cache-dir")
	ghcrToken, _ := pflags.GetString("ghcr-token")
	scheduleSpec, _ := pflags.GetString("schedule")
	notificationURLs, _ := pflags.GetStringArray("notification-url")

	fs := afero.NewOsFs()

	store, err := cache.NewStore(fs, cache.Config{
		Dir: cacheDir,
		TTL: flags.GetCacheTTL(pflags),
	})
	if err != nil {
		return err
	}

	res := resolver.New(store, registry.Config{GHCRToken: ghcrToken})

	notifier, err := notifications.NewNotifier(notificationURLs)
	if err != nil {
		return err
	}

	sessionMetrics, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	params := types.UpdateParams{ConfigDir: configDir, Apply: apply}

	runSession := func() error {
		report, err := actions.Update(context.Background(), fs, res, params)
		if err != nil {
			return err
		}

		sessionMetrics.Record(metrics.Metric{
			Scanned: len(report.Scanned()),
			Stale:   len(report.Stale()),
			Updated: len(report.Updated()),
			Failed:  len(report.Failed()),
			Unknown: len(report.Unknown()),
		})

		notifier.SendReport(report)
		logSummary(report)

		return nil
	}

	if scheduleSpec == "" {
		logging.WriteStartupMessage(c, time.Time{}, notifier)

		return runSession()
	}

	logging.WriteStartupMessage(c, scheduling.FirstRun(scheduleSpec), notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if enableMetricsAPI, _ := pflags.GetBool("http-api-metrics"); enableMetricsAPI {
		port, _ := pflags.GetString("http-api-port")
		server := api.NewServer(":"+port, sessionMetrics, prometheus.DefaultGatherer)

		go func() {
			if err := server.Start(ctx); err != nil {
				logrus.WithError(err).Error("Metrics API failed")
			}
		}()
	}

	return scheduling.RunOnSchedule(ctx, scheduleSpec, func() {
		if err := runSession(); err != nil {
			logrus.WithError(err).Error("Update session failed")
		}
	})
}

// logSummary reports the session outcome: every accessory's individual
// resolution plus the aggregate counts.
func logSummary(report types.Report) {
	for _, plan := range report.Plans() {
		logrus.WithFields(logrus.Fields{
			"file":      plan.File,
			"accessory": plan.Accessory,
			"from":      plan.OldVersion,
			"to":        plan.NewVersion,
		}).Info("Update planned")
	}

	logrus.WithFields(logrus.Fields{
		"scanned": len(report.Scanned()),
		"fresh":   len(report.Fresh()),
		"stale":   len(report.Stale()),
		"updated": len(report.Updated()),
		"failed":  len(report.Failed()),
		"unknown": len(report.Unknown()),
	}).Info("Session done")
}
