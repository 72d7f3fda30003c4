package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonic_StartsNearZero(t *testing.T) {
	c := NewMonotonic()
	assert.Less(t, c.Elapsed(), time.Second)
}

func TestMonotonic_NeverDecreases(t *testing.T) {
	c := NewMonotonic()
	prev := c.Elapsed()
	for i := 0; i < 1000; i++ {
		cur := c.Elapsed()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestManual_Advance(t *testing.T) {
	c := NewManual()
	assert.Equal(t, time.Duration(0), c.Elapsed())

	c.Advance(250 * time.Millisecond)
	c.Advance(-time.Second)
	assert.Equal(t, 250*time.Millisecond, c.Elapsed())
}

func TestManual_SetIsMonotonic(t *testing.T) {
	c := NewManual()
	c.Set(2 * time.Second)
	c.Set(time.Second)
	assert.Equal(t, 2*time.Second, c.Elapsed())
}
