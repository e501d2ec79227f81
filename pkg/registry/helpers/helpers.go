// Package helpers provides utility functions shared by the registry
// clients: mapping registry hosts to their protocol family and
// normalizing digests for comparison and storage.
package helpers

import (
	"strings"
)

// Kind identifies the protocol family a registry host speaks.
type Kind string

// The closed set of known registry kinds. Unknown hosts map to
// KindGeneric, a deliberate no-op terminal rather than a guess.
const (
	KindDockerHub Kind = "dockerhub"
	KindGHCR      Kind = "ghcr"
	KindGCR       Kind = "gcr"
	KindQuay      Kind = "quay"
	KindGeneric   Kind = "generic"
)

// kindByHost maps exact registry hosts to their kind.
var kindByHost = map[string]Kind{
	"docker.io":       KindDockerHub,
	"index.docker.io": KindDockerHub,
	"hub.docker.com":  KindDockerHub,
	"ghcr.io":         KindGHCR,
	"gcr.io":          KindGCR,
	"quay.io":         KindQuay,
}

// DetectKind maps a registry host to its protocol family by exact
// match, falling back to a suffix match so regional hosts like
// "eu.gcr.io" resolve to their parent kind.
func DetectKind(host string) Kind {
	if kind, ok := kindByHost[host]; ok {
		return kind
	}

	for known, kind := range kindByHost {
		if strings.HasSuffix(host, "."+known) {
			return kind
		}
	}

	return KindGeneric
}

// NormalizeDigest standardizes a digest string for consistent
// comparison, trimming the "sha256:" prefix when present.
func NormalizeDigest(digest string) string {
	return strings.TrimPrefix(digest, "sha256:")
}
