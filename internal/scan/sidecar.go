package scan

import (
	"encoding/json"
	"os"
)

// Sidecar is the optional "<path>.meta.json" data a file may carry,
// supplementing the probe with metadata the filesystem cannot express
// (spec.md §6).
type Sidecar struct {
	SourceURL string `json:"source_url,omitempty"`
}

// ReadSidecar looks for "<path>.meta.json" next to path and parses it.
// A missing or malformed sidecar is never an error — it's simply
// treated as "no sidecar", since sidecar data is additive and optional
// (spec.md §6).
func ReadSidecar(path string) (*Sidecar, bool) {
	data, err := os.ReadFile(path + ".meta.json")
	if err != nil {
		return nil, false
	}
	var sc Sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, false
	}
	return &sc, true
}
