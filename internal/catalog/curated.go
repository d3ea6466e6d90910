package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CuratedEntry tags a video URL with the weather conditions and times of day
// it suits. Empty tag lists match unconditionally.
type CuratedEntry struct {
	URL     string   `yaml:"song_url"`
	Weather []string `yaml:"weather"`
	Times   []string `yaml:"time"`
}

// CuratedCatalog is the static song mapping loaded once at startup.
// Read-only after load; entry order is the tie-break order for selection.
type CuratedCatalog struct {
	Songs []CuratedEntry `yaml:"songs"`
}

// LoadCurated reads the curated song file. A missing file yields an empty
// catalog rather than an error so the hub runs without autoplay content.
func LoadCurated(path string) (*CuratedCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &CuratedCatalog{}, nil
		}
		return nil, fmt.Errorf("read curated songs: %w", err)
	}

	var catalog CuratedCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse curated songs: %w", err)
	}
	return &catalog, nil
}
