// Package registry implements the per-protocol clients that list tags
// and fetch manifest digests for container images. Each known registry
// kind has one implementation of the Client interface; hosts outside
// the known set get the Generic no-op client. Lookup failures are
// always recovered into the Unknown sentinel rather than escalated.
package registry

import (
	"context"
	"net/http"
	"time"

	"github.com/deckhand-tools/deckhand/pkg/registry/helpers"
)

// Unknown is the sentinel value returned by every lookup that cannot
// be completed: unreachable registry, invalid payload, missing field,
// or an unsupported registry kind.
const Unknown = "unknown"

// Client is the HTTP client shared by the registry implementations.
// It is exposed at the package level to allow customization (e.g., in
// tests). Every request carries its timeout; on timeout the lookup
// degrades to Unknown.
var Client = &http.Client{Timeout: 30 * time.Second}

// UserAgent identifies Deckhand in registry requests.
var UserAgent = "Deckhand (registry)"

// Lister lists published versions and fetches digests for a
// repository. Implementations return Unknown with a non-nil error on
// any failure; callers log and carry on.
type Lister interface {
	// ListVersions returns the highest published semantic tag for the
	// repository, or Unknown when the fetch fails or no comparable tag
	// exists.
	ListVersions(ctx context.Context, namespace, repository string) (string, error)

	// FetchDigest returns the hex digest (without "sha256:" prefix)
	// pinning the given tag, or Unknown on failure.
	FetchDigest(ctx context.Context, namespace, repository, tag string) (string, error)
}

// Config carries the registry client settings the caller owns.
type Config struct {
	// GHCRToken overrides the anonymous token exchange for GHCR
	// lookups when set.
	GHCRToken string
}

// ForKind returns the client implementation for a registry kind.
// Unmatched kinds get the Generic no-op client.
func ForKind(kind helpers.Kind, cfg Config) Lister {
	switch kind {
	case helpers.KindDockerHub:
		return NewDockerHub()
	case helpers.KindGHCR:
		return NewGHCR(cfg.GHCRToken)
	default:
		return NewGeneric()
	}
}
