package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	s := LoadFrom(filepath.Join(t.TempDir(), "none.json"))
	assert.Equal(t, Defaults(), s)
	assert.True(t, s.DanmakuVisible)
}

func TestLoadFrom_MalformedFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	assert.Equal(t, Defaults(), LoadFrom(path))
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"danmakuVisible": false, "volume": 250}`), 0o644))

	s := LoadFrom(path)
	assert.False(t, s.DanmakuVisible)
	assert.Equal(t, 100, s.Volume)
	assert.Equal(t, 18, s.FontSize)
	assert.Equal(t, "recordings", s.RecordDir)
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	want := Settings{DanmakuVisible: false, FontSize: 24, Volume: 35, RecordDir: "/tmp/rec"}
	require.NoError(t, SaveTo(path, want))
	assert.Equal(t, want, LoadFrom(path))
}

func TestClampVolume(t *testing.T) {
	assert.Equal(t, 0, ClampVolume(-5))
	assert.Equal(t, 55, ClampVolume(55))
	assert.Equal(t, 100, ClampVolume(105))
}
