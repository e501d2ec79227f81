// Package auth provides bearer-token retrieval for container
// registries that gate manifest and tag-list access behind a token
// endpoint. The only flow supported is the anonymous pull-scoped
// exchange (optionally bypassed by a caller-supplied token).
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is the HTTP client used for token requests. It is exposed at
// the package level to allow customization (e.g., in tests).
var Client = &http.Client{Timeout: 30 * time.Second}

// UserAgent identifies Deckhand in token requests.
var UserAgent = "Deckhand (registry)"

// Static errors for token exchange failures.
var (
	errTokenRequestFailed = errors.New("token request failed")
	errTokenStatus        = errors.New("token endpoint returned non-success status")
	errEmptyToken         = errors.New("token endpoint returned an empty token")
)

// tokenResponse is the JSON payload of a registry token endpoint.
type tokenResponse struct {
	Token string `json:"token"`
}

// GetPullToken fetches an anonymous pull-scoped bearer token for the
// given repository path from a token endpoint such as
// "https://ghcr.io/token". When override is non-empty it is returned
// as-is, skipping the exchange.
func GetPullToken(ctx context.Context, tokenURL, repositoryPath, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	endpoint, err := url.Parse(tokenURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errTokenRequestFailed, err)
	}

	q := endpoint.Query()
	q.Set("scope", fmt.Sprintf("repository:%s:pull", repositoryPath))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errTokenRequestFailed, err)
	}

	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", UserAgent)

	res, err := Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errTokenRequestFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", errTokenStatus, res.Status)
	}

	response := tokenResponse{}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("%w: %w", errTokenRequestFailed, err)
	}

	if response.Token == "" {
		return "", errEmptyToken
	}

	return response.Token, nil
}
