// Package logging provides functions for logging startup information.
package logging

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/deckhand-tools/deckhand/internal/meta"
	"github.com/deckhand-tools/deckhand/pkg/notifications"
)

// WriteStartupMessage logs Deckhand's version, scan configuration, and
// scheduling information, giving users an overview of the run about to
// happen. Suppressed entirely by --no-startup-message.
func WriteStartupMessage(c *cobra.Command, sched time.Time, notifier *notifications.Notifier) {
	flags := c.PersistentFlags()

	if suppressed, _ := flags.GetBool("no-startup-message"); suppressed {
		return
	}

	configDir, _ := flags.GetString("config-dir")
	apply, _ := flags.GetBool("apply")
	cacheDir, _ := flags.GetString("cache-dir")

	logrus.Info("Deckhand ", meta.Version)
	logrus.WithFields(logrus.Fields{
		"config_dir": configDir,
		"cache_dir":  cacheDir,
		"apply":      apply,
	}).Info("Scanning deploy manifests for accessory updates")

	if notifier != nil {
		logrus.Info("Using notifications: " + strings.Join(notifier.GetNames(), ", "))
	}

	switch {
	case !sched.IsZero():
		logrus.Info("Scheduling first run: " + sched.Format("2006-01-02 15:04:05 -0700 MST"))
		logrus.Info("Note that the first scan will be performed in " +
			time.Until(sched).Round(time.Second).String())
	default:
		logrus.Info("Running a one time scan.")
	}
}
