package types

// Accessory is one named auxiliary service extracted from a deploy
// manifest's accessories block. Produced per scan pass, never
// persisted.
type Accessory struct {
	File    string // Manifest file the accessory was found in.
	Name    string // Accessory key inside the accessories block.
	Image   string // Image name without version or digest suffix.
	Version string // Currently pinned version; "latest" when untagged.
}

// UpdatePlan records one planned (or applied) image update.
type UpdatePlan struct {
	File       string // Manifest file to rewrite.
	Accessory  string // Accessory key to target.
	Image      string // Image name without version or digest suffix.
	OldVersion string // Version currently pinned in the manifest.
	NewVersion string // Resolved latest version.
	Digest     string // Digest pinning NewVersion; "" or "unknown" omits the suffix.
}
