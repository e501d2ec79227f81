// Package flags manages command-line flags and environment variables
// for Deckhand configuration.
package flags

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// defaultCacheTTLSeconds defines the default registry cache validity
// window in seconds (one hour).
const defaultCacheTTLSeconds = 3600

// defaultHTTPAPIPort is the port the metrics API binds to when none
// is configured.
const defaultHTTPAPIPort = "8080"

// errInvalidLogFormat indicates an invalid log format was specified.
var errInvalidLogFormat = errors.New("invalid log format specified")

// errInvalidLogLevel indicates an invalid log level was specified.
var errInvalidLogLevel = errors.New("invalid log level specified")

// errReadFlagFailed indicates a failure to read a flag's value.
var errReadFlagFailed = errors.New("failed to read flag value")

// RegisterSystemFlags adds the flags controlling Deckhand's program
// flow to the root command: where to scan, whether to apply, and how
// to schedule.
func RegisterSystemFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.StringP(
		"config-dir",
		"C",
		envString("DECKHAND_CONFIG_DIR"),
		"Directory containing the deploy*.yml manifests to scan")

	flags.BoolP(
		"apply",
		"a",
		envBool("DECKHAND_APPLY"),
		"Rewrite manifests with newer versions instead of only reporting them")

	flags.StringP(
		"schedule",
		"s",
		envString("DECKHAND_SCHEDULE"),
		"The cron expression which defines when to scan; empty runs once and exits")

	flags.BoolP(
		"http-api-metrics",
		"",
		envBool("DECKHAND_HTTP_API_METRICS"),
		"Expose the Prometheus metrics API while running on a schedule")

	flags.StringP(
		"http-api-port",
		"",
		envString("DECKHAND_HTTP_API_PORT"),
		"Port to bind the HTTP API to (default: 8080)")

	flags.StringArrayP(
		"notification-url",
		"n",
		envStringSlice("DECKHAND_NOTIFICATION_URL"),
		"Shoutrrr URL(s) to send a session summary to")

	flags.StringP(
		"log-format",
		"l",
		viper.GetString("DECKHAND_LOG_FORMAT"),
		"Sets what logging format to use for console output. Possible values: Auto, LogFmt, Pretty, JSON",
	)

	flags.String(
		"log-level",
		envString("DECKHAND_LOG_LEVEL"),
		"The maximum log level that will be written to STDERR. Possible values: panic, fatal, error, warn, info, debug or trace",
	)

	flags.BoolP(
		"debug",
		"d",
		envBool("DECKHAND_DEBUG"),
		"Enable debug mode with verbose logging")

	flags.BoolP(
		"no-startup-message",
		"",
		envBool("DECKHAND_NO_STARTUP_MESSAGE"),
		"Do not log the startup summary")
}

// RegisterRegistryFlags adds the flags configuring registry lookups
// and their cache.
func RegisterRegistryFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.StringP(
		"cache-dir",
		"",
		envString("DECKHAND_CACHE_DIR"),
		"Directory holding cached registry lookup results")

	flags.IntP(
		"cache-ttl",
		"",
		envInt("DECKHAND_CACHE_TTL"),
		"Registry cache validity window in seconds")

	flags.StringP(
		"ghcr-token",
		"",
		envString("DECKHAND_GHCR_TOKEN"),
		"Bearer token for GHCR lookups, replacing the anonymous exchange")
}

// SetDefaults configures default values for environment variables.
// It ensures consistent fallback behavior when flags or environment
// variables are unset.
func SetDefaults() {
	viper.AutomaticEnv()
	viper.SetDefault("DECKHAND_CONFIG_DIR", "config")
	viper.SetDefault("DECKHAND_CACHE_DIR", ".deckhand-cache")
	viper.SetDefault("DECKHAND_CACHE_TTL", defaultCacheTTLSeconds)
	viper.SetDefault("DECKHAND_HTTP_API_PORT", defaultHTTPAPIPort)
	viper.SetDefault("DECKHAND_LOG_LEVEL", "info")
	viper.SetDefault("DECKHAND_LOG_FORMAT", "auto")
}

// SetupLogging configures logrus from the log-format, log-level, and
// debug flags.
func SetupLogging(flags *pflag.FlagSet) error {
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return fmt.Errorf("%w: %w", errReadFlagFailed, err)
	}

	if err := configureLogFormat(logFormat); err != nil {
		return err
	}

	rawLogLevel, err := flags.GetString("log-level")
	if err != nil {
		return fmt.Errorf("%w: %w", errReadFlagFailed, err)
	}

	if debug, _ := flags.GetBool("debug"); debug {
		rawLogLevel = "debug"
	}

	logLevel, err := logrus.ParseLevel(rawLogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}

	logrus.SetLevel(logLevel)

	return nil
}

// GetCacheTTL reads the cache-ttl flag as a duration.
func GetCacheTTL(flags *pflag.FlagSet) time.Duration {
	seconds, err := flags.GetInt("cache-ttl")
	if err != nil || seconds <= 0 {
		seconds = defaultCacheTTLSeconds
	}

	return time.Duration(seconds) * time.Second
}

// configureLogFormat sets the logrus formatter based on the specified
// format. It returns an error if the format is invalid.
func configureLogFormat(logFormat string) error {
	switch strings.ToLower(logFormat) {
	case "auto":
		logrus.SetFormatter(&logrus.TextFormatter{
			EnvironmentOverrideColors: true,
		})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "logfmt":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	case "pretty":
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:   true,
			FullTimestamp: false,
		})
	default:
		return fmt.Errorf("%w: %s", errInvalidLogFormat, logFormat)
	}

	return nil
}

// envString retrieves a string value from an environment variable via
// Viper. It binds the key to the environment and returns its value.
func envString(key string) string {
	viper.MustBindEnv(key)

	return viper.GetString(key)
}

// envStringSlice retrieves a string slice from an environment variable
// via Viper. It binds the key to the environment and returns its
// values.
func envStringSlice(key string) []string {
	viper.MustBindEnv(key)

	return viper.GetStringSlice(key)
}

// envInt retrieves an integer value from an environment variable via
// Viper. It binds the key to the environment and returns its value.
func envInt(key string) int {
	viper.MustBindEnv(key)

	return viper.GetInt(key)
}

// envBool retrieves a boolean value from an environment variable via
// Viper. It binds the key to the environment and returns its value.
func envBool(key string) bool {
	viper.MustBindEnv(key)

	return viper.GetBool(key)
}
