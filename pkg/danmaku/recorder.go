package danmaku

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"danmaku-player/pkg/clock"
)

const (
	// RecordDurationMs is how long each recorded comment stays on screen.
	RecordDurationMs = 13000
	recordFontSize   = 25
)

// Recorder writes launched comments to an ASS subtitle file so a recording
// of the stream can be replayed with its danmaku.
type Recorder struct {
	clock  clock.Clock
	start  time.Duration
	width  int
	height int
	path   string

	mu        sync.Mutex
	out       *bufio.Writer
	file      io.Closer
	count     int
	closeOnce sync.Once
	closeErr  error
}

// NewRecorder creates path (and its directory) and writes the ASS header for
// a width x height play area.
func NewRecorder(path string, width, height int, c clock.Clock) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("create record dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create record file: %w", err)
	}
	r, err := newRecorder(f, f, width, height, c)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.path = path
	return r, nil
}

// NewRecorderWriter records into w. closer may be nil.
func NewRecorderWriter(w io.Writer, closer io.Closer, width, height int, c clock.Clock) (*Recorder, error) {
	return newRecorder(w, closer, width, height, c)
}

func newRecorder(w io.Writer, closer io.Closer, width, height int, c clock.Clock) (*Recorder, error) {
	r := &Recorder{
		clock:  c,
		start:  c.Elapsed(),
		width:  width,
		height: height,
		out:    bufio.NewWriter(w),
		file:   closer,
	}
	if err := r.writeHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Recorder) writeHeader() error {
	_, err := fmt.Fprintf(r.out, `[Script Info]
ScriptType: v4.00+
Collisions: Normal
PlayResX: %d
PlayResY: %d
Timer: 100.0000

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Danmaku,sans-serif,%d,&H00FFFFFF,&H00FFFFFF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,1,1,7,0,0,0,0

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`, r.width, r.height, recordFontSize)
	return err
}

// Record appends one comment that scrolls through lane ch of a channels-lane
// layout for durationMs, starting now.
func (r *Recorder) Record(text string, durationMs int, channels int, ch Channel) error {
	if channels <= 0 {
		channels = ChannelCount
	}
	begin := r.clock.Elapsed() - r.start
	end := begin + time.Duration(durationMs)*time.Millisecond

	y := int(ch) * (r.height / channels)
	textWidth := len([]rune(text)) * recordFontSize

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.out == nil {
		return os.ErrClosed
	}
	_, err := fmt.Fprintf(r.out, "Dialogue: 2,%s,%s,Danmaku,,0000,0000,0000,,{\\move(%d,%d,%d,%d)}%s\n",
		assTime(begin), assTime(end), r.width, y, -textWidth, y, assEscape(text))
	if err != nil {
		return err
	}
	r.count++
	return nil
}

// Count returns the number of recorded comments.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Path returns the file being written, empty for writer-backed recorders.
func (r *Recorder) Path() string {
	return r.path
}

// Close flushes buffered lines and closes the file.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.closeErr = r.out.Flush()
		r.out = nil
		if r.file != nil {
			if err := r.file.Close(); err != nil && r.closeErr == nil {
				r.closeErr = err
			}
		}
	})
	return r.closeErr
}

// assTime formats d as H:MM:SS.cc.
func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := d.Milliseconds() / 10
	h := cs / 360000
	m := cs / 6000 % 60
	s := cs / 100 % 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs%100)
}

var assReplacer = strings.NewReplacer(
	"\r\n", `\N`,
	"\n", `\N`,
	"{", "｛",
	"}", "｝",
)

func assEscape(text string) string {
	return assReplacer.Replace(text)
}
