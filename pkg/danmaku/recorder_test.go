package danmaku

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"danmaku-player/pkg/clock"
)

func TestRecorder_WritesHeaderAndDialogue(t *testing.T) {
	c := clock.NewManual()
	var buf bytes.Buffer
	r, err := NewRecorderWriter(&buf, nil, 1280, 720, c)
	require.NoError(t, err)

	c.Advance(1500 * time.Millisecond)
	require.NoError(t, r.Record("hi", RecordDurationMs, ChannelCount, 2))
	require.NoError(t, r.Close())

	out := buf.String()
	assert.Contains(t, out, "PlayResX: 1280")
	assert.Contains(t, out, "PlayResY: 720")
	assert.Contains(t, out, `Dialogue: 2,0:00:01.50,0:00:14.50,Danmaku,,0000,0000,0000,,{\move(1280,60,-50,60)}hi`)
	assert.Equal(t, 1, r.Count())
}

func TestRecorder_EscapesText(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRecorderWriter(&buf, nil, 100, 240, clock.NewManual())
	require.NoError(t, err)
	require.NoError(t, r.Record("a{b}\nc", 1000, 0, 0))
	require.NoError(t, r.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	assert.True(t, strings.HasSuffix(last, `a｛b｝\Nc`), last)
}

func TestRecorder_RecordAfterClose(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRecorderWriter(&buf, nil, 100, 240, clock.NewManual())
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Record("late", 1000, ChannelCount, 0), os.ErrClosed)
}

func TestRecorder_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec", "stream.ass")
	r, err := NewRecorder(path, 1280, 720, clock.NewManual())
	require.NoError(t, err)
	require.NoError(t, r.Record("one", RecordDurationMs, ChannelCount, 0))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Events]")
	assert.Contains(t, string(data), "}one")
	assert.Equal(t, path, r.Path())
}

func TestAssTime(t *testing.T) {
	assert.Equal(t, "0:00:00.00", assTime(-time.Second))
	assert.Equal(t, "1:01:01.25", assTime(time.Hour+time.Minute+time.Second+250*time.Millisecond))
}
