// Package meta holds build-time metadata for Deckhand.
package meta

// Version is the Deckhand version string, overridable at build time
// via -ldflags "-X github.com/deckhand-tools/deckhand/internal/meta.Version=v1.2.3".
var Version = "v0.0.0-unknown"
