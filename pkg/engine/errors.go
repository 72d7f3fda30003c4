package engine

import "errors"

var (
	// ErrCreate is returned when the engine handle could not be created.
	ErrCreate = errors.New("could not create engine context")
	// ErrInit is returned when the engine failed to initialize.
	ErrInit = errors.New("could not initialize engine context")
	// ErrNoRender is returned when a render context was requested from an
	// engine built without one.
	ErrNoRender = errors.New("engine has no render context")
	// ErrUnknownProperty is returned for properties an engine does not expose.
	ErrUnknownProperty = errors.New("unknown property")
)
