// Package image decomposes raw image references from deploy manifests
// into their registry, namespace, and repository parts. Parsing never
// fails: malformed input produces a reference whose network lookups
// simply resolve to "unknown" downstream.
package image

import (
	"strings"

	"github.com/distribution/reference"
	"github.com/sirupsen/logrus"
)

// Domains and namespaces for Docker Hub, the default registry.
const (
	// DefaultRegistry is the canonical public hub identifier assumed
	// when a reference carries no explicit host segment.
	DefaultRegistry = "docker.io"
	// OfficialNamespace is the reserved namespace for official images
	// (e.g. "redis" resolves as "library/redis").
	OfficialNamespace = "library"
)

// Ref identifies a container image by registry, namespace, and
// repository. It is derived once from a raw string and not mutated.
type Ref struct {
	Registry   string
	Namespace  string
	Repository string
}

// Path returns the namespace-qualified repository, omitting the
// namespace separator when the reference has no namespace.
func (r Ref) Path() string {
	if r.Namespace == "" {
		return r.Repository
	}

	return r.Namespace + "/" + r.Repository
}

// String reassembles the reference for logging.
func (r Ref) String() string {
	return r.Registry + "/" + r.Path()
}

// Parse splits a raw image reference into its parts.
//
// Three rules apply in order: two or more "/" separators mean
// host/namespace/repository; a single "/" means either a host-like
// registry/repository (first segment contains "." or ":") or a
// namespace/repository on the default registry; no "/" means an
// official image on the default registry.
func Parse(raw string) Ref {
	segments := strings.Split(raw, "/")

	switch {
	case len(segments) >= 3:
		return Ref{
			Registry:   segments[0],
			Namespace:  strings.Join(segments[1:len(segments)-1], "/"),
			Repository: segments[len(segments)-1],
		}
	case len(segments) == 2:
		if strings.ContainsAny(segments[0], ".:") {
			return Ref{Registry: segments[0], Namespace: "", Repository: segments[1]}
		}

		return Ref{Registry: DefaultRegistry, Namespace: segments[0], Repository: segments[1]}
	default:
		return Ref{Registry: DefaultRegistry, Namespace: OfficialNamespace, Repository: raw}
	}
}

// SplitValue decomposes a manifest image value formatted
// "name[:version][@sha256:hex]" into its name, version, and digest.
// A missing version implies "latest"; a missing digest yields "".
//
// The version is the substring after the last ":" in the name portion,
// so registry hosts with ports stay intact.
func SplitValue(value string) (name, version, digest string) {
	rest, digestPart, found := strings.Cut(value, "@sha256:")
	if found {
		digest = digestPart
	}

	name = rest
	version = "latest"

	if i := strings.LastIndex(rest, ":"); i >= 0 && !strings.Contains(rest[i+1:], "/") {
		name = rest[:i]
		version = rest[i+1:]
	}

	// Unparsable references are only worth a debug note; resolution
	// fails soft as "unknown" rather than halting the scan.
	if _, err := reference.ParseDockerRef(name); err != nil {
		logrus.WithError(err).WithField("image", value).
			Debug("Image value is not a well-formed reference")
	}

	return name, version, digest
}
