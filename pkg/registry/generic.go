package registry

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// errUnsupportedRegistry marks lookups against registries outside the
// supported set.
var errUnsupportedRegistry = errors.New("registry kind is not supported")

// Generic is the terminal client for registries Deckhand has no
// protocol for. Every lookup resolves to Unknown — a deliberate scope
// boundary, not a guess at an incompatible protocol.
type Generic struct{}

// NewGeneric creates the no-op client.
func NewGeneric() *Generic {
	return &Generic{}
}

// ListVersions always returns Unknown.
func (g *Generic) ListVersions(_ context.Context, namespace, repository string) (string, error) {
	logrus.WithFields(logrus.Fields{
		"namespace":  namespace,
		"repository": repository,
	}).Debug("Skipping tag listing for unsupported registry")

	return Unknown, errUnsupportedRegistry
}

// FetchDigest always returns Unknown.
func (g *Generic) FetchDigest(_ context.Context, namespace, repository, _ string) (string, error) {
	logrus.WithFields(logrus.Fields{
		"namespace":  namespace,
		"repository": repository,
	}).Debug("Skipping digest fetch for unsupported registry")

	return Unknown, errUnsupportedRegistry
}
