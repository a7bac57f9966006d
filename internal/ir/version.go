package ir

// Version constants recorded with every generation session.
const (
	// SchemaVersion is the fragment tree layout version.
	SchemaVersion = "1"

	// GeneratorVersion is the archgen version.
	GeneratorVersion = "0.1.0"
)
