package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/deckhand-tools/deckhand/pkg/registry/auth"
	"github.com/deckhand-tools/deckhand/pkg/registry/helpers"
	"github.com/deckhand-tools/deckhand/pkg/version"
)

// GHCR endpoints and media types.
const (
	ghcrBase = "https://ghcr.io"

	// ghcrAcceptHeader requests either a Docker v2 manifest or an OCI
	// manifest; GHCR serves both depending on how the image was pushed.
	ghcrAcceptHeader = "application/vnd.docker.distribution.manifest.v2+json, " +
		"application/vnd.oci.image.manifest.v1+json"
)

// Static errors for GHCR lookups.
var (
	errGHCRRequestFailed  = errors.New("ghcr request failed")
	errGHCRStatus         = errors.New("ghcr returned non-success status")
	errGHCRInvalidPayload = errors.New("ghcr returned invalid payload")
	errGHCRNoDigest       = errors.New("ghcr manifest carried no digest")
)

// ghcrTagsResponse is the payload of the tags/list endpoint.
type ghcrTagsResponse struct {
	Tags []string `json:"tags"`
}

// GHCR talks the GitHub Container Registry's distribution API, front
// to back: token exchange, tag listing, manifest retrieval.
type GHCR struct {
	// Base is overridable for tests; token requests go to Base+"/token".
	Base string

	// Token bypasses the anonymous exchange when set.
	Token string
}

// NewGHCR creates a GHCR client. A non-empty token is used in place of
// the anonymous pull-scoped exchange.
func NewGHCR(token string) *GHCR {
	return &GHCR{Base: ghcrBase, Token: token}
}

// ListVersions fetches the full tag list for the repository and
// returns the highest comparable one, or Unknown when the fetch fails
// or no candidate remains.
func (g *GHCR) ListVersions(ctx context.Context, namespace, repository string) (string, error) {
	fields := logrus.Fields{"namespace": namespace, "repository": repository}

	endpoint := fmt.Sprintf("%s/v2/%s/%s/tags/list", g.Base, namespace, repository)

	response := ghcrTagsResponse{}
	if err := g.getJSON(ctx, endpoint, namespace+"/"+repository, "", &response); err != nil {
		logrus.WithError(err).WithFields(fields).Debug("GHCR tag listing failed")

		return Unknown, err
	}

	latest := version.Latest(response.Tags)
	if latest == "" {
		logrus.WithFields(fields).Debug("No comparable tags in GHCR listing")

		return Unknown, nil
	}

	logrus.WithFields(fields).WithField("latest", latest).Debug("Resolved latest GHCR tag")

	return latest, nil
}

// FetchDigest requests the manifest for a tag with dual Accept headers
// and extracts the config digest, falling back to the top-level digest
// field.
func (g *GHCR) FetchDigest(ctx context.Context, namespace, repository, tag string) (string, error) {
	fields := logrus.Fields{"namespace": namespace, "repository": repository, "tag": tag}

	endpoint := fmt.Sprintf("%s/v2/%s/%s/manifests/%s", g.Base, namespace, repository, tag)

	manifest := manifestResponse{}
	if err := g.getJSON(ctx, endpoint, namespace+"/"+repository, ghcrAcceptHeader, &manifest); err != nil {
		logrus.WithError(err).WithFields(fields).Debug("GHCR manifest lookup failed")

		return Unknown, err
	}

	digest := manifest.Config.Digest
	if digest == "" {
		digest = manifest.Digest
	}

	if digest == "" {
		return Unknown, errGHCRNoDigest
	}

	return helpers.NormalizeDigest(digest), nil
}

// getJSON performs a bearer-authenticated GET request against GHCR and
// decodes a JSON body into out.
func (g *GHCR) getJSON(ctx context.Context, endpoint, repositoryPath, accept string, out any) error {
	token, err := auth.GetPullToken(ctx, g.Base+"/token", repositoryPath, g.Token)
	if err != nil {
		return fmt.Errorf("%w: %w", errGHCRRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", errGHCRRequestFailed, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", UserAgent)

	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	res, err := Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errGHCRRequestFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", errGHCRStatus, res.Status)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", errGHCRInvalidPayload, err)
	}

	return nil
}
