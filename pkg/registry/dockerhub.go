package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/deckhand-tools/deckhand/pkg/registry/helpers"
	"github.com/deckhand-tools/deckhand/pkg/version"
)

// Docker Hub endpoints. The hub API serves tag listings; the pull
// registry serves manifests for the digest fallback.
const (
	dockerHubAPIBase  = "https://hub.docker.com"
	dockerHubPullBase = "https://registry-1.docker.io"

	// tagPageSize caps the tag listing to the first page of results.
	tagPageSize = 100

	// dockerManifestMediaType is the Accept header for the manifest
	// fallback request.
	dockerManifestMediaType = "application/vnd.docker.distribution.manifest.v2+json"
)

// Static errors for Docker Hub lookups.
var (
	errHubRequestFailed  = errors.New("docker hub request failed")
	errHubStatus         = errors.New("docker hub returned non-success status")
	errHubInvalidPayload = errors.New("docker hub returned invalid payload")
	errHubNoDigest       = errors.New("docker hub response carried no digest")
)

// hubTagsResponse is the payload of the tags listing endpoint.
type hubTagsResponse struct {
	Results []struct {
		Name string `json:"name"`
	} `json:"results"`
}

// hubTagDetailResponse is the payload of the per-tag detail endpoint.
type hubTagDetailResponse struct {
	Images []struct {
		Digest string `json:"digest"`
	} `json:"images"`
}

// manifestResponse is the subset of a manifest body the digest
// fallback reads.
type manifestResponse struct {
	Config struct {
		Digest string `json:"digest"`
	} `json:"config"`
	Digest string `json:"digest"`
}

// DockerHub talks the Docker Hub v2 API.
type DockerHub struct {
	// APIBase and PullBase are overridable for tests.
	APIBase  string
	PullBase string
}

// NewDockerHub creates a Docker Hub client against the public
// endpoints.
func NewDockerHub() *DockerHub {
	return &DockerHub{APIBase: dockerHubAPIBase, PullBase: dockerHubPullBase}
}

// ListVersions fetches up to one page of tags for the repository and
// returns the highest comparable one, or Unknown when the fetch fails
// or no candidate remains.
func (d *DockerHub) ListVersions(ctx context.Context, namespace, repository string) (string, error) {
	fields := logrus.Fields{"namespace": namespace, "repository": repository}

	endpoint := fmt.Sprintf(
		"%s/v2/repositories/%s/%s/tags?page_size=%d",
		d.APIBase, namespace, repository, tagPageSize,
	)

	response := hubTagsResponse{}
	if err := d.getJSON(ctx, endpoint, nil, &response); err != nil {
		logrus.WithError(err).WithFields(fields).Debug("Docker Hub tag listing failed")

		return Unknown, err
	}

	tags := make([]string, 0, len(response.Results))
	for _, result := range response.Results {
		tags = append(tags, result.Name)
	}

	latest := version.Latest(tags)
	if latest == "" {
		logrus.WithFields(fields).Debug("No comparable tags in Docker Hub listing")

		return Unknown, nil
	}

	logrus.WithFields(fields).WithField("latest", latest).Debug("Resolved latest Docker Hub tag")

	return latest, nil
}

// FetchDigest resolves the digest pinning a tag. It tries the tag
// detail endpoint first and falls back to a manifest request against
// the pull registry when the detail payload carries no digest.
func (d *DockerHub) FetchDigest(ctx context.Context, namespace, repository, tag string) (string, error) {
	fields := logrus.Fields{"namespace": namespace, "repository": repository, "tag": tag}

	endpoint := fmt.Sprintf(
		"%s/v2/repositories/%s/%s/tags/%s",
		d.APIBase, namespace, repository, tag,
	)

	detail := hubTagDetailResponse{}
	if err := d.getJSON(ctx, endpoint, nil, &detail); err == nil {
		if len(detail.Images) > 0 && detail.Images[0].Digest != "" {
			return helpers.NormalizeDigest(detail.Images[0].Digest), nil
		}
	} else {
		logrus.WithError(err).WithFields(fields).Debug("Docker Hub tag detail lookup failed")
	}

	logrus.WithFields(fields).Debug("Falling back to manifest request for digest")

	manifestURL := fmt.Sprintf(
		"%s/v2/%s/%s/manifests/%s",
		d.PullBase, namespace, repository, tag,
	)

	manifest := manifestResponse{}

	headers := http.Header{}
	headers.Set("Accept", dockerManifestMediaType)

	if err := d.getJSON(ctx, manifestURL, headers, &manifest); err != nil {
		logrus.WithError(err).WithFields(fields).Debug("Docker Hub manifest fallback failed")

		return Unknown, err
	}

	digest := manifest.Config.Digest
	if digest == "" {
		digest = manifest.Digest
	}

	if digest == "" {
		return Unknown, errHubNoDigest
	}

	return helpers.NormalizeDigest(digest), nil
}

// getJSON performs a GET request and decodes a JSON body into out.
func (d *DockerHub) getJSON(ctx context.Context, endpoint string, headers http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", errHubRequestFailed, err)
	}

	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	req.Header.Set("User-Agent", UserAgent)

	res, err := Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errHubRequestFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", errHubStatus, res.Status)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", errHubInvalidPayload, err)
	}

	return nil
}
