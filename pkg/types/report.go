package types

// Accessory session states.
const (
	StateFresh   = "Fresh"   // Already at the latest known version.
	StateStale   = "Stale"   // A newer version is available.
	StateUnknown = "Unknown" // Latest version could not be determined.
	StateUpdated = "Updated" // Manifest rewritten with the newer version.
	StateFailed  = "Failed"  // Manifest rewrite failed.
)

// AccessoryReport is one accessory's session outcome.
type AccessoryReport struct {
	File       string // Manifest file the accessory lives in.
	Name       string // Accessory key.
	Image      string // Image name without version or digest suffix.
	OldVersion string // Version pinned before the session.
	NewVersion string // Resolved latest version, if any.
	State      string // One of the session states above.
	Error      string // Failure detail when State is StateFailed.
}

// Report defines accessory session results.
type Report interface {
	Scanned() []AccessoryReport // All accessories seen this session.
	Fresh() []AccessoryReport   // Up-to-date accessories.
	Stale() []AccessoryReport   // Accessories with an update available.
	Unknown() []AccessoryReport // Accessories whose lookup failed.
	Updated() []AccessoryReport // Accessories whose manifest was rewritten.
	Failed() []AccessoryReport  // Accessories whose rewrite failed.
	Plans() []UpdatePlan        // Planned updates, in scan order.
}

// UpdateParams defines options for an update session.
type UpdateParams struct {
	ConfigDir string // Directory scanned for deploy*.yml manifests.
	Apply     bool   // Rewrite manifests when true; plan only when false.
}
