package config

// DomainConfig holds all configurable canvas rules and constants
type DomainConfig struct {
	// Spawn region for nodes created via add. Bounds are half-open: [Min, Max).
	SpawnMinX float64
	SpawnMaxX float64
	SpawnMinY float64
	SpawnMaxY float64

	// Offset of an expanded node relative to its source node
	ExpansionOffsetX float64
	ExpansionOffsetY float64

	// Content used when the expansion service answers without a suggestion
	NoSuggestionPlaceholder string

	// Durable record key. Versioned so a future schema can move to a new key.
	StorageKey string
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		SpawnMinX: 40,
		SpawnMaxX: 640,
		SpawnMinY: 40,
		SpawnMaxY: 340,

		ExpansionOffsetX: 120,
		ExpansionOffsetY: 20,

		NoSuggestionPlaceholder: "(no suggestion)",

		StorageKey: "ideaboard.nodes.v1",
	}
}
