package debounce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_SuppressesInsideCooldown(t *testing.T) {
	l := New(45 * time.Second)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.True(t, l.ShouldEmit("ada", base))
	assert.False(t, l.ShouldEmit("ada", base.Add(1*time.Second)))
	assert.False(t, l.ShouldEmit("ada", base.Add(44*time.Second)))
	assert.True(t, l.ShouldEmit("ada", base.Add(45*time.Second)))
}

func TestLimiter_LabelsAreIndependent(t *testing.T) {
	l := New(45 * time.Second)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.True(t, l.ShouldEmit("ada", base))
	assert.True(t, l.ShouldEmit("grace", base))
	assert.False(t, l.ShouldEmit("ada", base.Add(time.Second)))
	assert.False(t, l.ShouldEmit("grace", base.Add(time.Second)))
}

func TestLimiter_EmissionRestartsWindow(t *testing.T) {
	l := New(10 * time.Second)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.True(t, l.ShouldEmit("ada", base))
	// Emission at +10s starts a fresh window
	assert.True(t, l.ShouldEmit("ada", base.Add(10*time.Second)))
	assert.False(t, l.ShouldEmit("ada", base.Add(15*time.Second)))
	assert.True(t, l.ShouldEmit("ada", base.Add(20*time.Second)))
}

func TestLimiter_DefaultCooldown(t *testing.T) {
	l := New(0)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.True(t, l.ShouldEmit("ada", base))
	assert.False(t, l.ShouldEmit("ada", base.Add(DefaultCooldown-time.Second)))
}

func TestLimiter_Reset(t *testing.T) {
	l := New(time.Minute)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.True(t, l.ShouldEmit("ada", base))
	l.Reset()
	assert.True(t, l.ShouldEmit("ada", base.Add(time.Second)))
}
