// Package actions provides the core logic for Deckhand's update
// sessions: scanning deploy manifests for accessory images, resolving
// the latest published version per accessory, and — in apply mode —
// rewriting the manifests in place.
package actions

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/deckhand-tools/deckhand/pkg/image"
	"github.com/deckhand-tools/deckhand/pkg/manifest"
	"github.com/deckhand-tools/deckhand/pkg/registry"
	"github.com/deckhand-tools/deckhand/pkg/types"
	"github.com/deckhand-tools/deckhand/pkg/version"
)

// Resolver answers latest-version and digest queries for an image
// reference, degrading to the "unknown" sentinel on failure.
type Resolver interface {
	ResolveLatest(ctx context.Context, ref image.Ref) string
	ResolveDigest(ctx context.Context, ref image.Ref, version string) string
}

// Update runs one session: it scans the config directory for
// accessories, plans an update for each one whose resolved latest
// version compares strictly greater than the pinned one, and applies
// the plans when params.Apply is set.
//
// Resolution failures never abort the session — an accessory whose
// lookup returns "unknown" is reported and skipped. Rewrite failures
// are reported per accessory and the batch continues; each file's
// rewrite is independently atomic, the batch as a whole is not
// transactional.
func Update(ctx context.Context, fs afero.Fs, res Resolver, params types.UpdateParams) (types.Report, error) {
	accessories, err := manifest.Scan(fs, params.ConfigDir)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"config_dir":  params.ConfigDir,
		"accessories": len(accessories),
		"apply":       params.Apply,
	}).Debug("Starting update session")

	report := &sessionReport{}

	for _, accessory := range accessories {
		report.scanned = append(report.scanned, checkAccessory(ctx, fs, res, accessory, params.Apply, report))
	}

	return report, nil
}

// checkAccessory resolves one accessory and, in apply mode, rewrites
// its manifest when a newer version exists.
func checkAccessory(
	ctx context.Context,
	fs afero.Fs,
	res Resolver,
	accessory types.Accessory,
	apply bool,
	report *sessionReport,
) types.AccessoryReport {
	fields := logrus.Fields{
		"file":      accessory.File,
		"accessory": accessory.Name,
		"image":     accessory.Image,
		"version":   accessory.Version,
	}

	outcome := types.AccessoryReport{
		File:       accessory.File,
		Name:       accessory.Name,
		Image:      accessory.Image,
		OldVersion: accessory.Version,
	}

	ref := image.Parse(accessory.Image)

	latest := res.ResolveLatest(ctx, ref)
	if latest == registry.Unknown {
		logrus.WithFields(fields).Info("Could not determine latest version")

		outcome.State = types.StateUnknown

		return outcome
	}

	outcome.NewVersion = latest

	// "Unknown" never reaches here; anything not strictly newer is
	// treated as up to date.
	if latest == accessory.Version || version.Compare(latest, accessory.Version) <= 0 {
		logrus.WithFields(fields).Info("Accessory is up to date")

		outcome.State = types.StateFresh

		return outcome
	}

	plan := types.UpdatePlan{
		File:       accessory.File,
		Accessory:  accessory.Name,
		Image:      accessory.Image,
		OldVersion: accessory.Version,
		NewVersion: latest,
	}

	logrus.WithFields(fields).WithField("latest", latest).Info("Update available")

	if !apply {
		report.plans = append(report.plans, plan)
		outcome.State = types.StateStale

		return outcome
	}

	plan.Digest = res.ResolveDigest(ctx, ref, latest)
	report.plans = append(report.plans, plan)

	if err := manifest.Rewrite(fs, plan.File, plan.Accessory, plan.NewVersion, plan.Digest); err != nil {
		logrus.WithError(err).WithFields(fields).Error("Failed to rewrite manifest")

		outcome.State = types.StateFailed
		outcome.Error = err.Error()

		return outcome
	}

	logrus.WithFields(fields).WithFields(logrus.Fields{
		"new_version": plan.NewVersion,
		"digest":      plan.Digest,
	}).Info("Applied update")

	outcome.State = types.StateUpdated

	return outcome
}
