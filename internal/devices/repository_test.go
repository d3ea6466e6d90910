package devices

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/autobreezebeats/breeze-hub-go/internal/db"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	pair, err := db.Init(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pair.Close() })
	return NewRepository(pair)
}

func TestRepository_RememberAndList(t *testing.T) {
	repo := testRepository(t)

	require.NoError(t, repo.Remember(Device{Address: "AA:BB", Name: "Kitchen"}))
	require.NoError(t, repo.Remember(Device{Address: "CC:DD", Name: "Bedroom"}))

	names, err := repo.Remembered()
	require.NoError(t, err)
	require.Equal(t, map[string]string{"AA:BB": "Kitchen", "CC:DD": "Bedroom"}, names)
}

func TestRepository_RememberUpserts(t *testing.T) {
	repo := testRepository(t)

	require.NoError(t, repo.Remember(Device{Address: "AA:BB", Name: "Old Name"}))
	require.NoError(t, repo.Remember(Device{Address: "AA:BB", Name: "New Name"}))

	names, err := repo.Remembered()
	require.NoError(t, err)
	require.Equal(t, map[string]string{"AA:BB": "New Name"}, names)
}
