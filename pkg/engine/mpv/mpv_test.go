package mpv

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"danmaku-player/pkg/engine"
)

func TestConvert(t *testing.T) {
	assert.Equal(t, engine.Double(12.5), convert(12.5))
	assert.Equal(t, engine.Bool(true), convert(1))
	assert.Equal(t, engine.Bool(false), convert(0))
	assert.Equal(t, engine.String("yes"), convert("yes"))
	assert.True(t, convert(nil).IsAbsent())
	assert.True(t, convert(struct{}{}).IsAbsent())
}
