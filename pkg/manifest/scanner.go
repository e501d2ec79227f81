// Package manifest reads and rewrites the restricted deploy-manifest
// dialect: a single top-level accessories mapping whose entries are
// two-space-indented accessory names, each with deeper-indented
// fields. It is deliberately not a YAML parser; the line-oriented
// approach is what lets rewrites keep every untouched line
// byte-identical.
package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/deckhand-tools/deckhand/pkg/image"
	"github.com/deckhand-tools/deckhand/pkg/types"
)

// ErrConfigDirMissing is the one fatal error class of a scan: the
// configured manifest directory does not exist.
var ErrConfigDirMissing = errors.New("config directory does not exist")

// manifestGlob selects the deploy manifests inside the config
// directory.
const manifestGlob = "deploy*.yml"

var (
	// accessoriesLine opens the accessories block.
	accessoriesLine = regexp.MustCompile(`^accessories:\s*$`)
	// topLevelLine is any unindented mapping key, closing the block.
	topLevelLine = regexp.MustCompile(`^[A-Za-z0-9_-]+:`)
	// accessoryLine is a two-space-indented accessory declaration.
	accessoryLine = regexp.MustCompile(`^  ([A-Za-z0-9_-]+):\s*$`)
	// imageLine is a nested image field under an accessory.
	imageLine = regexp.MustCompile(`^\s+image:\s*(.+?)\s*$`)
)

// Scan walks the config directory's deploy manifests and extracts one
// Accessory per accessory entry that declares an image.
func Scan(fs afero.Fs, dir string) ([]types.Accessory, error) {
	exists, err := afero.DirExists(fs, dir)
	if err != nil || !exists {
		return nil, fmt.Errorf("%w: %s", ErrConfigDirMissing, dir)
	}

	paths, err := afero.Glob(fs, filepath.Join(dir, manifestGlob))
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests in %s: %w", dir, err)
	}

	var accessories []types.Accessory

	for _, path := range paths {
		entries, err := scanFile(fs, path)
		if err != nil {
			logrus.WithError(err).WithField("file", path).Warn("Skipping unreadable manifest")

			continue
		}

		accessories = append(accessories, entries...)
	}

	return accessories, nil
}

// scanFile extracts accessory/image/version triples from one manifest.
func scanFile(fs afero.Fs, path string) ([]types.Accessory, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var entries []types.Accessory

	inBlock := false
	current := ""
	seenImage := false

	for line := range strings.SplitSeq(string(data), "\n") {
		switch {
		case accessoriesLine.MatchString(line):
			inBlock = true
			current = ""
		case topLevelLine.MatchString(line):
			// Any other top-level key ends the accessories block.
			inBlock = false
			current = ""
		case inBlock && accessoryLine.MatchString(line):
			current = accessoryLine.FindStringSubmatch(line)[1]
			seenImage = false
		case inBlock && current != "" && !seenImage:
			match := imageLine.FindStringSubmatch(line)
			if match == nil {
				continue
			}

			seenImage = true

			name, version, _ := image.SplitValue(match[1])
			entries = append(entries, types.Accessory{
				File:    path,
				Name:    current,
				Image:   name,
				Version: version,
			})

			logrus.WithFields(logrus.Fields{
				"file":      path,
				"accessory": current,
				"image":     name,
				"version":   version,
			}).Debug("Found accessory image")
		}
	}

	return entries, nil
}
