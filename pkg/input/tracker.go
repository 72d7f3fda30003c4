package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"danmaku-player/pkg/player"
)

// KeyPressTracker manages key press state to prevent duplicate key presses
type KeyPressTracker struct {
	pressed map[sdl.Scancode]bool
}

// NewKeyPressTracker creates a new KeyPressTracker
func NewKeyPressTracker() KeyPressTracker {
	return KeyPressTracker{
		pressed: make(map[sdl.Scancode]bool),
	}
}

// IsPressed checks if a key was just pressed (not held)
func (kpt *KeyPressTracker) IsPressed(keyState []uint8, scancode sdl.Scancode) bool {
	isCurrentlyPressed := int(scancode) < len(keyState) && keyState[scancode] != 0
	wasPressed := kpt.pressed[scancode]

	kpt.pressed[scancode] = isCurrentlyPressed

	return isCurrentlyPressed && !wasPressed
}

// Binding maps a key to a player action.
type Binding struct {
	Key    sdl.Scancode
	Action player.Action
}

// DefaultBindings are the player's keyboard controls.
var DefaultBindings = []Binding{
	{sdl.SCANCODE_D, player.ActionToggleDanmaku},
	{sdl.SCANCODE_F, player.ActionFullscreen},
	{sdl.SCANCODE_Q, player.ActionQuit},
	{sdl.SCANCODE_SPACE, player.ActionTogglePause},
	{sdl.SCANCODE_M, player.ActionToggleMute},
	{sdl.SCANCODE_MINUS, player.ActionVolumeDown},
	{sdl.SCANCODE_EQUALS, player.ActionVolumeUp},
	{sdl.SCANCODE_C, player.ActionShareCode},
}

// Keymap turns keyboard state into actions, one per key press.
type Keymap struct {
	bindings []Binding
	tracker  KeyPressTracker
}

func NewKeymap(bindings []Binding) *Keymap {
	if bindings == nil {
		bindings = DefaultBindings
	}
	return &Keymap{bindings: bindings, tracker: NewKeyPressTracker()}
}

// Poll returns the actions whose key went down since the last poll, in
// binding order.
func (k *Keymap) Poll(keyState []uint8) []player.Action {
	var actions []player.Action
	for _, b := range k.bindings {
		if k.tracker.IsPressed(keyState, b.Key) {
			actions = append(actions, b.Action)
		}
	}
	return actions
}
