package actions

import (
	"github.com/deckhand-tools/deckhand/pkg/types"
)

// sessionReport implements types.Report over the outcomes of one scan.
type sessionReport struct {
	scanned []types.AccessoryReport
	plans   []types.UpdatePlan
}

// Scanned returns all accessories seen this session.
func (r *sessionReport) Scanned() []types.AccessoryReport { return r.scanned }

// Fresh returns accessories already at their latest known version.
func (r *sessionReport) Fresh() []types.AccessoryReport { return r.byState(types.StateFresh) }

// Stale returns accessories with an update available but not applied.
func (r *sessionReport) Stale() []types.AccessoryReport { return r.byState(types.StateStale) }

// Unknown returns accessories whose latest version could not be
// determined.
func (r *sessionReport) Unknown() []types.AccessoryReport { return r.byState(types.StateUnknown) }

// Updated returns accessories whose manifest was rewritten.
func (r *sessionReport) Updated() []types.AccessoryReport { return r.byState(types.StateUpdated) }

// Failed returns accessories whose manifest rewrite failed.
func (r *sessionReport) Failed() []types.AccessoryReport { return r.byState(types.StateFailed) }

// Plans returns the planned updates in scan order.
func (r *sessionReport) Plans() []types.UpdatePlan { return r.plans }

func (r *sessionReport) byState(state string) []types.AccessoryReport {
	var matched []types.AccessoryReport

	for _, report := range r.scanned {
		if report.State == state {
			matched = append(matched, report)
		}
	}

	return matched
}
