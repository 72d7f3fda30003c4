// Package mpv adapts libmpv to engine.Core. libmpv renders into its own
// window here, so the handle carries no render context.
package mpv

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/gen2brain/go-mpv"

	"danmaku-player/pkg/engine"
)

// eventTimeout bounds how long the pump blocks in libmpv, and so how long
// Destroy waits for it.
const eventTimeout = 1.0

// Config holds libmpv options applied before initialization.
type Config struct {
	// Headless disables video and audio output.
	Headless bool
	// Options are extra "name=value" libmpv options.
	Options map[string]string
}

// Core is a libmpv handle plus the goroutine that pumps its events into a
// queue. The pump plays the role of libmpv's event thread: every pushed
// event fires the wakeup callback.
type Core struct {
	m     *mpv.Mpv
	queue *engine.Queue

	stop      chan struct{}
	pumpDone  chan struct{}
	closeOnce sync.Once
}

// Factory returns an engine.Factory that opens url.
func Factory(url string, cfg Config) engine.Factory {
	return func() (engine.Handle, error) {
		c, err := New(cfg)
		if err != nil {
			return engine.Handle{}, err
		}
		if url != "" {
			if err := c.Command("loadfile", url); err != nil {
				c.Destroy()
				return engine.Handle{}, fmt.Errorf("%w: loadfile %s: %v", engine.ErrInit, url, err)
			}
		}
		return engine.Handle{Core: c}, nil
	}
}

// New creates and initializes a libmpv instance.
func New(cfg Config) (*Core, error) {
	m := mpv.New()
	if m == nil {
		return nil, engine.ErrCreate
	}

	opts := map[string]string{
		"keep-open":              "no",
		"input-default-bindings": "no",
		"osc":                    "no",
	}
	if cfg.Headless {
		opts["vo"] = "null"
		opts["ao"] = "null"
	}
	for k, v := range cfg.Options {
		opts[k] = v
	}
	names := make([]string, 0, len(opts))
	for k := range opts {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := m.SetOptionString(k, opts[k]); err != nil {
			log.Printf("mpv.New: option %s=%s rejected: %v", k, opts[k], err)
		}
	}

	if err := m.Initialize(); err != nil {
		m.TerminateDestroy()
		return nil, fmt.Errorf("%w: %v", engine.ErrInit, err)
	}

	c := &Core{
		m:        m,
		queue:    engine.NewQueue(),
		stop:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
	go c.pump()
	return c, nil
}

func (c *Core) pump() {
	defer close(c.pumpDone)
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		ev := c.m.WaitEvent(eventTimeout)
		if ev == nil {
			continue
		}
		switch ev.EventID {
		case mpv.EventPropertyChange:
			prop := ev.Property()
			c.queue.Push(engine.PropertyChange(prop.Name, convert(prop.Data)))
		case mpv.EventEnd:
			c.queue.Push(engine.Other(engine.EventEndFile))
		case mpv.EventShutdown:
			c.queue.Push(engine.Other(engine.EventShutdown))
			return
		}
	}
}

// convert maps libmpv node data onto engine values. Flags arrive as int.
func convert(data any) engine.Value {
	if flag, ok := data.(int); ok {
		return engine.Bool(flag != 0)
	}
	return engine.FromAny(data)
}

func (c *Core) SetProperty(name string, v engine.Value) error {
	if v.IsAbsent() {
		return fmt.Errorf("set %s: %w", name, engine.ErrUnknownProperty)
	}
	return c.m.SetPropertyString(name, v.String())
}

// GetProperty reads through the string interface; properties libmpv has not
// populated come back Absent.
func (c *Core) GetProperty(name string) engine.Value {
	s := c.m.GetPropertyString(name)
	if s == "" {
		return engine.Absent()
	}
	return engine.String(s)
}

func (c *Core) Command(args ...string) error {
	return c.m.Command(args)
}

// ObserveProperty subscribes to name as a double; the player only observes
// numeric properties.
func (c *Core) ObserveProperty(name string) error {
	return c.m.ObserveProperty(0, name, mpv.FormatDouble)
}

func (c *Core) SetWakeupCallback(fn func()) {
	c.queue.SetWakeup(fn)
}

func (c *Core) WaitEvent(timeout time.Duration) engine.Event {
	return c.queue.Wait(timeout)
}

// Destroy stops the pump and terminates libmpv. The pump must be out of
// WaitEvent before the handle is freed.
func (c *Core) Destroy() {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.pumpDone
		c.queue.Close()
		c.m.TerminateDestroy()
	})
}
