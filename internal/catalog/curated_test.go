package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCurated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stored_songs.yaml")
	content := `songs:
  - song_url: https://youtu.be/sunny
    weather: [clear, clouds]
    time: [day]
  - song_url: https://youtu.be/rainy
    weather: [rain]
    time: [evening, night]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	curated, err := LoadCurated(path)
	require.NoError(t, err)
	require.Len(t, curated.Songs, 2)
	require.Equal(t, "https://youtu.be/sunny", curated.Songs[0].URL)
	require.Equal(t, []string{"clear", "clouds"}, curated.Songs[0].Weather)
	require.Equal(t, []string{"evening", "night"}, curated.Songs[1].Times)
}

func TestLoadCuratedMissingFile(t *testing.T) {
	curated, err := LoadCurated(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Empty(t, curated.Songs)
}

func TestLoadCuratedInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("songs: [notamap"), 0o644))

	_, err := LoadCurated(path)
	require.Error(t, err)
}
