// Package resolver orchestrates the registry clients, the version
// comparator, and the cache store to answer two questions about an
// image reference: what is the latest published version, and which
// digest pins a given version. Both answers degrade to the "unknown"
// sentinel on any failure; the caller treats that as
// "cannot determine, skip".
package resolver

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/deckhand-tools/deckhand/pkg/cache"
	"github.com/deckhand-tools/deckhand/pkg/image"
	"github.com/deckhand-tools/deckhand/pkg/registry"
	"github.com/deckhand-tools/deckhand/pkg/registry/helpers"
)

// Resolver answers latest-version and digest queries, consulting the
// cache before the network. Lookup results — including failures — are
// cached for the store's TTL.
type Resolver struct {
	store   *cache.Store
	clients map[helpers.Kind]registry.Lister
}

// New creates a Resolver with one client per supported registry kind.
func New(store *cache.Store, cfg registry.Config) *Resolver {
	return &Resolver{
		store: store,
		clients: map[helpers.Kind]registry.Lister{
			helpers.KindDockerHub: registry.NewDockerHub(),
			helpers.KindGHCR:      registry.NewGHCR(cfg.GHCRToken),
			helpers.KindGeneric:   registry.NewGeneric(),
		},
	}
}

// NewWithClients creates a Resolver over explicit clients, used by
// tests to substitute fakes.
func NewWithClients(store *cache.Store, clients map[helpers.Kind]registry.Lister) *Resolver {
	return &Resolver{store: store, clients: clients}
}

// ResolveLatest returns the latest published comparable version for
// the reference, or "unknown".
func (r *Resolver) ResolveLatest(ctx context.Context, ref image.Ref) string {
	kind := helpers.DetectKind(ref.Registry)
	key := fmt.Sprintf("%s_%s_%s", kind, ref.Namespace, ref.Repository)

	return r.resolve(ctx, kind, ref, key, func(client registry.Lister) (string, error) {
		return client.ListVersions(ctx, ref.Namespace, ref.Repository)
	})
}

// ResolveDigest returns the digest pinning the given version of the
// reference, or "unknown".
func (r *Resolver) ResolveDigest(ctx context.Context, ref image.Ref, version string) string {
	kind := helpers.DetectKind(ref.Registry)
	key := fmt.Sprintf("%s_%s_%s_%s", kind, ref.Namespace, ref.Repository, version)

	return r.resolve(ctx, kind, ref, key, func(client registry.Lister) (string, error) {
		return client.FetchDigest(ctx, ref.Namespace, ref.Repository, version)
	})
}

// resolve consults the cache under key, dispatching to the kind's
// client on a miss and caching whatever comes back.
func (r *Resolver) resolve(
	_ context.Context,
	kind helpers.Kind,
	ref image.Ref,
	key string,
	lookup func(registry.Lister) (string, error),
) string {
	fields := logrus.Fields{"image": ref.String(), "kind": kind, "key": key}

	client, ok := r.clients[kind]
	if !ok {
		// Kinds without a protocol implementation (GCR, Quay) terminate
		// at the generic no-op client.
		client, ok = r.clients[helpers.KindGeneric]
		if !ok {
			logrus.WithFields(fields).Debug("No client for registry kind")

			return registry.Unknown
		}
	}

	// Unsupported registries terminate immediately; nothing to cache.
	if _, isGeneric := client.(*registry.Generic); isGeneric {
		logrus.WithFields(fields).Debug("Unsupported registry, resolving to unknown")

		return registry.Unknown
	}

	if value, hit := r.store.Get(key); hit {
		logrus.WithFields(fields).WithField("value", value).Debug("Cache hit")

		return value
	}

	value, err := lookup(client)
	if err != nil {
		logrus.WithError(err).WithFields(fields).Debug("Registry lookup failed")
	}

	if putErr := r.store.Put(key, value); putErr != nil {
		logrus.WithError(putErr).WithFields(fields).Debug("Failed to cache lookup result")
	}

	return value
}
