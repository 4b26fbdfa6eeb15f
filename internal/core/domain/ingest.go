package domain

import (
	"strconv"
	"strings"
	"time"
)

// LayerFile is a layer text file offered by a layer source.
type LayerFile struct {
	LayerID int
	Path    string

	// Revision identifies the file contents at the source (blob SHA,
	// modification time) and is informational only.
	Revision string
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// Source names the layer source that was polled.
	Source string `json:"source"`

	// Added lists the layer ids stored by this run, ascending.
	Added []int `json:"added"`

	// Skipped counts listed layers that were already stored.
	Skipped int `json:"skipped"`

	Duration time.Duration `json:"duration"`
}

// layerFileExt is the extension of layer text files.
const layerFileExt = ".tl"

// ParseLayerFileName extracts the layer id from a file name such as
// "158.tl". Files without the .tl extension, names containing "unknown"
// and non-numeric or non-positive stems are rejected.
func ParseLayerFileName(name string) (int, bool) {
	if !strings.HasSuffix(name, layerFileExt) || strings.Contains(name, "unknown") {
		return 0, false
	}
	stem, _, _ := strings.Cut(name, ".")
	id, err := strconv.Atoi(strings.TrimSpace(stem))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
