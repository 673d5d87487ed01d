package globe

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCloudRotation(t *testing.T) {
	assert.Equal(t, 0.0, CloudRotation(0, 0.0005))
	assert.Equal(t, 0.0, CloudRotation(-time.Second, 0.0005))
	// one second at the nominal rate is sixty steps
	assert.InDelta(t, 0.03, CloudRotation(time.Second, 0.0005), 1e-12)
	assert.InDelta(t, 0.3, CloudRotation(10*time.Second, 0.0005), 1e-12)
}

func TestAtmospherePulse(t *testing.T) {
	assert.Equal(t, 1.0, AtmospherePulse(0, 0.01, 0.001))

	quarter := time.Duration(math.Pi / 2 / 0.001 * float64(time.Millisecond))
	assert.InDelta(t, 1.01, AtmospherePulse(quarter, 0.01, 0.001), 1e-9)

	for ms := 0; ms < 20000; ms += 37 {
		p := AtmospherePulse(time.Duration(ms)*time.Millisecond, 0.01, 0.001)
		assert.GreaterOrEqual(t, p, 0.99)
		assert.LessOrEqual(t, p, 1.01)
	}
}

func TestIdleAnimation_Deterministic(t *testing.T) {
	for _, elapsed := range []time.Duration{0, 16 * time.Millisecond, 1234 * time.Millisecond, time.Hour} {
		assert.Equal(t, CloudRotation(elapsed, 0.0005), CloudRotation(elapsed, 0.0005))
		assert.Equal(t, AtmospherePulse(elapsed, 0.01, 0.001), AtmospherePulse(elapsed, 0.01, 0.001))
	}
}

func TestEntryScale(t *testing.T) {
	d := 4 * time.Second

	assert.Equal(t, 2.5, EntryScale(0, d, 2.5))
	assert.Equal(t, 1.0, EntryScale(d, d, 2.5))
	assert.Equal(t, 1.0, EntryScale(time.Minute, d, 2.5))
	assert.Equal(t, 1.0, EntryScale(time.Second, 0, 2.5))

	// p = 0.5 eases to 0.875 of the way
	assert.InDelta(t, 2.5-1.5*0.875, EntryScale(2*time.Second, d, 2.5), 1e-12)

	prev := EntryScale(0, d, 2.5)
	for ms := 100; ms <= 4000; ms += 100 {
		got := EntryScale(time.Duration(ms)*time.Millisecond, d, 2.5)
		assert.Less(t, got, prev, "elapsed %dms", ms)
		prev = got
	}
}
