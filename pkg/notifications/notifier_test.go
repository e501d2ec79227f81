package notifications

import (
	"testing"

	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"github.com/stretchr/testify/assert"

	"github.com/deckhand-tools/deckhand/pkg/types"
)

// fakeRouter captures sent messages instead of delivering them.
type fakeRouter struct {
	messages []string
}

func (f *fakeRouter) Send(message string, _ *shoutrrrTypes.Params) []error {
	f.messages = append(f.messages, message)

	return nil
}

// fakeReport is a minimal types.Report for message rendering.
type fakeReport struct {
	scanned []types.AccessoryReport
	updated []types.AccessoryReport
	plans   []types.UpdatePlan
}

func (f *fakeReport) Scanned() []types.AccessoryReport { return f.scanned }
func (f *fakeReport) Fresh() []types.AccessoryReport   { return nil }
func (f *fakeReport) Stale() []types.AccessoryReport   { return nil }
func (f *fakeReport) Unknown() []types.AccessoryReport { return nil }
func (f *fakeReport) Updated() []types.AccessoryReport { return f.updated }
func (f *fakeReport) Failed() []types.AccessoryReport  { return nil }
func (f *fakeReport) Plans() []types.UpdatePlan        { return f.plans }

func TestNewNotifierWithoutURLsIsNil(t *testing.T) {
	notifier, err := NewNotifier(nil)
	assert.NoError(t, err)
	assert.Nil(t, notifier)

	// A nil notifier must be safe to use.
	notifier.SendReport(&fakeReport{plans: []types.UpdatePlan{{}}})
}

func TestGetNames(t *testing.T) {
	notifier := &Notifier{urls: []string{"discord://token@channel", "gotify://host/token"}}
	assert.Equal(t, []string{"discord", "gotify"}, notifier.GetNames())
}

func TestSendReportSummarizesPlans(t *testing.T) {
	router := &fakeRouter{}
	notifier := &Notifier{urls: []string{"logger://"}, router: router}

	notifier.SendReport(&fakeReport{
		scanned: make([]types.AccessoryReport, 3),
		updated: []types.AccessoryReport{{Name: "redis"}},
		plans: []types.UpdatePlan{
			{Accessory: "redis", Image: "redis", OldVersion: "6.0.0", NewVersion: "7.0.0"},
		},
	})

	assert.Len(t, router.messages, 1)
	assert.Contains(t, router.messages[0], "Applied 1 update(s)")
	assert.Contains(t, router.messages[0], "redis: redis 6.0.0 -> 7.0.0")
	assert.Contains(t, router.messages[0], "Scanned 3 accessories")
}

func TestSendReportSkipsQuietSessions(t *testing.T) {
	router := &fakeRouter{}
	notifier := &Notifier{urls: []string{"logger://"}, router: router}

	notifier.SendReport(&fakeReport{scanned: make([]types.AccessoryReport, 2)})

	assert.Empty(t, router.messages)
}
