package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/deckhand-tools/deckhand/pkg/registry"
)

// ErrNoMutationTarget indicates the accessory's image line could not
// be located; the manifest is left untouched.
var ErrNoMutationTarget = errors.New("no image line found for accessory")

// mutableImageLine captures the indentation and value of an image
// field for rewriting.
var mutableImageLine = regexp.MustCompile(`^(\s*)image:\s*(.*)$`)

// Rewrite replaces the version (and digest) suffix of one accessory's
// image line, leaving every other line byte-identical.
//
// The file is treated as a two-state line machine: scanning is Outside
// until the accessory's own two-space-indented declaration appears,
// and returns Outside when a sibling key shows up or the image line
// has been rewritten. Within the target section, the first image line
// keeps everything before the first ":" of its value as the image name
// and gets the new version, plus an "@sha256:" suffix only when digest
// is known. The file is replaced atomically; on failure to locate a
// target the original is left untouched.
func Rewrite(fs afero.Fs, path, accessory, newVersion, digest string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")

	inTarget := false
	rewritten := false

	for i, line := range lines {
		if rewritten {
			break
		}

		switch {
		case !inTarget:
			if line == "  "+accessory+":" {
				inTarget = true
			}
		case (accessoryLine.MatchString(line) && line != "  "+accessory+":") ||
			topLevelLine.MatchString(line):
			// A sibling (or a new top-level key) closes the target
			// section without a rewrite.
			inTarget = false
		default:
			match := mutableImageLine.FindStringSubmatch(line)
			if match == nil {
				continue
			}

			indent, value := match[1], match[2]
			name := value
			if colon := strings.Index(value, ":"); colon >= 0 {
				name = value[:colon]
			}

			updated := name + ":" + newVersion
			if digest != "" && digest != registry.Unknown {
				updated += "@sha256:" + digest
			}

			lines[i] = indent + "image: " + updated
			rewritten = true

			logrus.WithFields(logrus.Fields{
				"file":      path,
				"accessory": accessory,
				"image":     updated,
			}).Debug("Rewrote accessory image line")
		}
	}

	if !rewritten {
		return fmt.Errorf("%w: %s in %s", ErrNoMutationTarget, accessory, path)
	}

	return replaceAtomically(fs, path, []byte(strings.Join(lines, "\n")))
}

// replaceAtomically writes content to a temporary file beside path and
// renames it into place, so readers never observe a partial write.
func replaceAtomically(fs afero.Fs, path string, content []byte) error {
	dir := filepath.Dir(path)

	tmp, err := afero.TempFile(fs, dir, ".deckhand-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		_ = fs.Remove(tmpName)

		return fmt.Errorf("failed to write temporary file %s: %w", tmpName, err)
	}

	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)

		return fmt.Errorf("failed to close temporary file %s: %w", tmpName, err)
	}

	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)

		return fmt.Errorf("failed to replace manifest %s: %w", path, err)
	}

	return nil
}
