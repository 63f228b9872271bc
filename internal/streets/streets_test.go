package streets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWays = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"nome": "Rua XV de Novembro", "tipo": "rua"},
      "geometry": {
        "type": "LineString",
        "coordinates": [[-49.2700, -25.4300], [-49.2690, -25.4300]]
      }
    },
    {
      "type": "Feature",
      "properties": {"name": "Av. Brasil"},
      "geometry": {
        "type": "MultiLineString",
        "coordinates": [[[-49.3000, -25.5000], [-49.2990, -25.5000]]]
      }
    },
    {
      "type": "Feature",
      "properties": {"nome": "sem geometria"},
      "geometry": {"type": "Point", "coordinates": [-49.0, -25.0]}
    }
  ]
}`

func writeWays(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ruas.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleWays), 0o644))
	return path
}

func TestLoadFailSoft(t *testing.T) {
	ix := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Zero(t, ix.Count())
	_, ok := ix.Nearest(-25.43, -49.27, 150)
	assert.False(t, ok)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	ix = Load(bad)
	assert.Zero(t, ix.Count())
}

func TestLoadAndCount(t *testing.T) {
	ix := Load(writeWays(t))
	assert.Equal(t, 2, ix.Count())
}

func TestNearestWithinRadius(t *testing.T) {
	ix := Load(writeWays(t))

	// A few meters south of Rua XV.
	hit, ok := ix.Nearest(-25.4301, -49.2695, 150)
	require.True(t, ok)
	assert.Equal(t, "Rua XV de Novembro", hit.Name)
	assert.Equal(t, "rua", hit.Type)
	assert.InDelta(t, 11.1, hit.DistanceM, 2.0)
}

func TestNearestOutsideRadius(t *testing.T) {
	ix := Load(writeWays(t))
	// Roughly 1 km away from everything.
	_, ok := ix.Nearest(-25.4400, -49.2695, 150)
	assert.False(t, ok)

	// The same point succeeds once the radius covers it.
	hit, ok := ix.Nearest(-25.4400, -49.2695, 2000)
	require.True(t, ok)
	assert.Equal(t, "Rua XV de Novembro", hit.Name)
}

func TestNearestPicksClosestWay(t *testing.T) {
	ix := Load(writeWays(t))
	hit, ok := ix.Nearest(-25.5001, -49.2995, 150)
	require.True(t, ok)
	assert.Equal(t, "Av. Brasil", hit.Name)
}

func TestNearestZeroRadius(t *testing.T) {
	ix := Load(writeWays(t))
	_, ok := ix.Nearest(-25.43, -49.27, 0)
	assert.False(t, ok)
}
