package bridge

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"danmaku-player/pkg/engine"
	"danmaku-player/pkg/engine/enginetest"
	"danmaku-player/pkg/uiloop"
)

type recordingObserver struct {
	positions []float64
	durations []float64
}

func (o *recordingObserver) PositionChanged(s float64) { o.positions = append(o.positions, s) }
func (o *recordingObserver) DurationChanged(s float64) { o.durations = append(o.durations, s) }

func TestEventBridge_PositionThenNone(t *testing.T) {
	loop := uiloop.New(16)
	core := enginetest.NewCore()
	obs := &recordingObserver{}
	NewEventBridge(loop, core, obs)

	core.Emit(engine.PropertyChange(engine.PropTimePos, engine.Double(12.5)))
	loop.RunPending()

	assert.Equal(t, []float64{12.5}, obs.positions)
	assert.Empty(t, obs.durations)
	assert.Equal(t, 2, core.Polls(), "one event plus the terminating None")
}

func TestEventBridge_CoalescesNotifications(t *testing.T) {
	loop := uiloop.New(16)
	core := enginetest.NewCore()
	obs := &recordingObserver{}
	NewEventBridge(loop, core, obs)

	for i := 0; i < 5; i++ {
		core.Emit(engine.PropertyChange(engine.PropTimePos, engine.Double(float64(i))))
	}
	assert.Equal(t, 1, loop.Pending(), "five wakeups must queue one drain")

	loop.RunPending()
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, obs.positions, "drained in emission order")
}

func TestEventBridge_DispatchesDuration(t *testing.T) {
	loop := uiloop.New(16)
	core := enginetest.NewCore()
	obs := &recordingObserver{}
	NewEventBridge(loop, core, obs)

	core.Emit(engine.PropertyChange(engine.PropDuration, engine.Double(300)))
	loop.RunPending()
	assert.Equal(t, []float64{300}, obs.durations)
}

func TestEventBridge_IgnoresUnknownAndMalformed(t *testing.T) {
	loop := uiloop.New(16)
	core := enginetest.NewCore()
	obs := &recordingObserver{}
	NewEventBridge(loop, core, obs)

	core.Emit(engine.Other("end-file"))
	core.Emit(engine.PropertyChange("volume", engine.Double(50)))
	core.Emit(engine.PropertyChange(engine.PropTimePos, engine.String("12.5")))
	core.Emit(engine.PropertyChange(engine.PropDuration, engine.Absent()))
	core.Emit(engine.PropertyChange(engine.PropTimePos, engine.Double(1)))
	loop.RunPending()

	assert.Equal(t, []float64{1}, obs.positions)
	assert.Empty(t, obs.durations)
	assert.Equal(t, 0, core.Queue.Len())
}

type endObserver struct {
	recordingObserver
	reasons []string
}

func (o *endObserver) PlaybackEnded(reason string) {
	o.reasons = append(o.reasons, reason)
}

func TestEventBridge_EndEventsReachEndObserver(t *testing.T) {
	loop := uiloop.New(16)
	core := enginetest.NewCore()
	obs := &endObserver{}
	NewEventBridge(loop, core, obs)

	core.Emit(engine.Other("log-message"))
	core.Emit(engine.Other(engine.EventEndFile))
	core.Emit(engine.PropertyChange(engine.PropTimePos, engine.Double(2)))
	core.Emit(engine.Other(engine.EventShutdown))
	loop.RunPending()

	assert.Equal(t, []string{engine.EventEndFile, engine.EventShutdown}, obs.reasons)
	assert.Equal(t, []float64{2}, obs.positions)
}

func TestEventBridge_DrainAfterDetachIsNoop(t *testing.T) {
	loop := uiloop.New(16)
	core := enginetest.NewCore()
	obs := &recordingObserver{}
	b := NewEventBridge(loop, core, obs)

	core.Emit(engine.PropertyChange(engine.PropTimePos, engine.Double(3)))
	b.Detach()
	b.Detach()
	loop.RunPending()

	assert.False(t, b.attached())
	assert.Empty(t, obs.positions)
	assert.Equal(t, 0, core.Polls())

	core.Emit(engine.PropertyChange(engine.PropTimePos, engine.Double(4)))
	assert.Equal(t, 0, loop.Pending(), "no wakeup reaches a detached bridge")
}

func TestEventBridge_NotifyFromEngineGoroutines(t *testing.T) {
	loop := uiloop.New(64)
	core := enginetest.NewCore()
	obs := &recordingObserver{}
	NewEventBridge(loop, core, obs)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				core.Emit(engine.PropertyChange(engine.PropTimePos, engine.Double(1)))
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, loop.Pending())
	loop.RunPending()
	assert.Len(t, obs.positions, 100)
}
