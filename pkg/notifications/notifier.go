// Package notifications sends a summary of each update session to the
// services configured via shoutrrr URLs. One message per session that
// found or applied updates; quiet sessions send nothing.
package notifications

import (
	"fmt"
	"strings"

	"github.com/nicholas-fedor/shoutrrr"
	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/sirupsen/logrus"

	"github.com/deckhand-tools/deckhand/pkg/types"
)

// router defines the interface for sending shoutrrr notifications.
// It abstracts the underlying service implementation.
type router interface {
	Send(message string, params *shoutrrrTypes.Params) []error
}

// Notifier batches one session summary per configured service URL.
type Notifier struct {
	urls   []string
	router router
}

// NewNotifier creates a Notifier for the given shoutrrr URLs. An empty
// URL list yields a nil Notifier, which is safe to call.
func NewNotifier(urls []string) (*Notifier, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification sender: %w", err)
	}

	return &Notifier{urls: urls, router: sender}, nil
}

// GetNames returns the service scheme of each configured URL.
func (n *Notifier) GetNames() []string {
	names := make([]string, len(n.urls))
	for i, url := range n.urls {
		scheme, _, found := strings.Cut(url, ":")
		if !found {
			scheme = "invalid"
		}

		names[i] = scheme
	}

	return names
}

// SendReport sends one summary message for the session, listing each
// planned or applied update. Sessions without plans are not announced.
func (n *Notifier) SendReport(report types.Report) {
	if n == nil || report == nil || len(report.Plans()) == 0 {
		return
	}

	message := buildSummary(report)

	for _, err := range n.router.Send(message, &shoutrrrTypes.Params{"title": "Deckhand"}) {
		if err != nil {
			logrus.WithError(err).Error("Failed to send notification")
		}
	}
}

// buildSummary renders the session outcome as a plain-text message.
func buildSummary(report types.Report) string {
	var b strings.Builder

	applied := len(report.Updated())
	if applied > 0 {
		fmt.Fprintf(&b, "Applied %d update(s):\n", applied)
	} else {
		fmt.Fprintf(&b, "Found %d available update(s):\n", len(report.Plans()))
	}

	for _, plan := range report.Plans() {
		fmt.Fprintf(&b, "- %s: %s %s -> %s\n", plan.Accessory, plan.Image, plan.OldVersion, plan.NewVersion)
	}

	fmt.Fprintf(&b, "Scanned %d accessories", len(report.Scanned()))

	return b.String()
}
