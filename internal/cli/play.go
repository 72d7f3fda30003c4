package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"danmaku-player/pkg/commentServer"
	"danmaku-player/pkg/danmaku"
	"danmaku-player/pkg/engine"
	"danmaku-player/pkg/engine/local"
	"danmaku-player/pkg/engine/mpv"
	"danmaku-player/pkg/mpeg"
	"danmaku-player/pkg/player"
	"danmaku-player/pkg/recordFs"
	"danmaku-player/pkg/settings"
	"danmaku-player/pkg/uiloop"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Engine   string
	Headless bool
	Comments string
	Record   bool
	Upload   bool
	Loop     bool
	Seed     int64
	Listen   string
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <file-or-url>",
		Short: "Play a video with danmaku",
		Long: `Play a video and overlay comments read one per line from --comments.

The local engine decodes files with FFmpeg and draws into an SDL window.
The mpv engine plays files or URLs through libmpv in its own window; with
--headless no window is opened and comments are only recorded.

Example:
  danmaku-player play movie.mp4 --comments chat.txt --record
  tail -f chat.log | danmaku-player play https://example.com/live.m3u8 --engine mpv --headless --record --comments -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Engine, "engine", "local", "playback engine (local|mpv)")
	cmd.Flags().BoolVar(&opts.Headless, "headless", false, "run without video or audio output")
	cmd.Flags().StringVar(&opts.Comments, "comments", "", "file of newline-delimited comments, - for stdin")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "record comments to an ASS file")
	cmd.Flags().BoolVar(&opts.Upload, "upload", false, "upload the recording to RECORD_BUCKET when done")
	cmd.Flags().BoolVar(&opts.Loop, "loop", false, "restart local files at the end")
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "accept comments over HTTP on this address, e.g. :8080")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "seed for lane selection when every lane is busy (0 = random)")

	return cmd
}

func (o *PlayOptions) factory(source string) (engine.Factory, error) {
	switch o.Engine {
	case "local":
		open := func() (local.Source, error) { return mpeg.Open(source) }
		return local.Factory(open, local.Options{Loop: o.Loop}), nil
	case "mpv":
		return mpv.Factory(source, mpv.Config{Headless: o.Headless}), nil
	default:
		return nil, fmt.Errorf("unknown engine %q: must be local or mpv", o.Engine)
	}
}

func (o *PlayOptions) rand() *rand.Rand {
	seed := o.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// recordPath names the recording after the source and the start time.
func recordPath(dir, source string, now time.Time) string {
	base := filepath.Base(source)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "stream"
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s%s", base, now.Format("20060102-150405"), recordFs.Ext))
}

func openComments(path string) (io.ReadCloser, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// attachFunc connects comment sources to a freshly created player. It
// returns a function that detaches them and the comment server, if any.
type attachFunc func(p *player.Player) (detach func(), server *commentServer.WebServer)

// sources builds the attachFunc for the --comments reader and --listen server.
// The reader belongs to the feed once attached; release closes it when no
// player was ever attached.
func (o *PlayOptions) sources(ctx context.Context, loop *uiloop.Loop, comments io.ReadCloser) (attach attachFunc, release func()) {
	var once sync.Once
	release = func() {
		once.Do(func() {
			if comments != nil {
				comments.Close()
			}
		})
	}
	attach = func(p *player.Player) (func(), *commentServer.WebServer) {
		once.Do(func() { startFeed(ctx, comments, loop, p) })
		if o.Listen == "" {
			return func() {}, nil
		}
		ws := commentServer.NewWebServer(o.Listen, loop.Post, func(text string) { p.Launch(text) })
		if err := ws.Start(); err != nil {
			log.Printf("sources: comment server disabled: %v", err)
			return func() {}, nil
		}
		log.Printf("sources: comment server on %s, send comments at %s", ws.URL(), ws.ShareURL())
		return func() {
			if err := ws.Stop(); err != nil {
				log.Printf("sources: %v", err)
			}
		}, ws
	}
	return attach, release
}

// startFeed launches comments from r on the UI loop until r ends or ctx is
// cancelled.
func startFeed(ctx context.Context, r io.ReadCloser, loop *uiloop.Loop, p *player.Player) {
	if r == nil {
		return
	}
	go func() {
		defer r.Close()
		launch := func(text string) { p.Launch(text) }
		if err := danmaku.Feed(ctx, r, loop.Post, launch); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("startFeed: %v", err)
		}
	}()
}

func runPlay(ctx context.Context, opts *PlayOptions, source string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := settings.Load()
	factory, err := opts.factory(source)
	if err != nil {
		return err
	}

	var rec string
	if opts.Record {
		rec = recordPath(s.RecordDir, source, time.Now())
	}

	comments, err := openComments(opts.Comments)
	if err != nil {
		return fmt.Errorf("open comments: %w", err)
	}

	loop := uiloop.New(0)
	defer loop.Close()
	attach, release := opts.sources(ctx, loop, comments)
	defer release()

	var p *player.Player
	if opts.Headless || opts.Engine == "mpv" {
		p, err = runHeadless(ctx, loop, factory, player.Options{
			RecordPath:     rec,
			DanmakuVisible: s.DanmakuVisible,
			Rand:           opts.rand(),
		}, attach)
	} else {
		p, err = runWindowed(ctx, loop, factory, s, rec, opts.rand(), attach)
	}
	if err != nil {
		return err
	}

	s.DanmakuVisible = p.DanmakuVisible()
	if err := settings.Save(s); err != nil {
		log.Printf("runPlay: could not save settings: %v", err)
	}

	if rec != "" && opts.Upload {
		return uploadRecording(rec)
	}
	return nil
}

// runHeadless drives the player without a window until playback ends or
// ctx is cancelled.
func runHeadless(ctx context.Context, loop *uiloop.Loop, factory engine.Factory, popts player.Options, attach attachFunc) (*player.Player, error) {
	popts.Factory = factory
	popts.Loop = loop
	p, err := player.New(popts)
	if err != nil {
		return nil, err
	}
	detach, _ := attach(p)
	defer detach()

	for ctx.Err() == nil && !p.Ended() {
		loop.Wait(ctx, 50*time.Millisecond)
		loop.RunPending()
		p.Tick()
	}
	return p, p.Close()
}

func uploadRecording(path string) error {
	bucket, err := recordFs.BucketFromEnv()
	if err != nil {
		return fmt.Errorf("upload recording: %w", err)
	}
	key, err := bucket.Upload(path)
	if err != nil {
		return err
	}
	log.Printf("uploadRecording: stored %s as s3://%s/%s", path, bucket.Name, key)
	return nil
}
