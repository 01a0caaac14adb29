package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	c := RealClock{}
	before := time.Now()
	result := c.Now()
	after := time.Now()

	assert.False(t, result.Before(before), "RealClock.Now() should not be before the call")
	assert.False(t, result.After(after), "RealClock.Now() should not be after the call")
}

func TestMockClock_Now(t *testing.T) {
	fixedTime := time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC)
	c := NewMockClock(fixedTime)

	assert.Equal(t, fixedTime, c.Now())
	// Should return the same time on repeated calls
	assert.Equal(t, fixedTime, c.Now())
}

func TestMockClock_Set(t *testing.T) {
	initialTime := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	newTime := time.Date(2026, 12, 25, 12, 0, 0, 0, time.UTC)

	c := NewMockClock(initialTime)
	assert.Equal(t, initialTime, c.Now())

	c.Set(newTime)
	assert.Equal(t, newTime, c.Now())
}

func TestMockClock_Advance(t *testing.T) {
	initialTime := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	c := NewMockClock(initialTime)

	c.Advance(1 * time.Hour)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC), c.Now())

	c.Advance(-30 * time.Minute)
	assert.Equal(t, time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC), c.Now())
}
