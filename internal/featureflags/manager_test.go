package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_Enabled(t *testing.T) {
	m := NewManager(" open_registration = ON , legacy_password_hashes=off,broken, =on,half=50%,nonsense=maybe")

	assert.True(t, m.Enabled(OpenRegistration, 0))
	assert.False(t, m.Enabled(LegacyPasswordHashes, 1))
	assert.False(t, m.Enabled("unset", 1))
	assert.False(t, m.Enabled("nonsense", 1))
	assert.False(t, m.Enabled("half", 0), "anonymous users are outside partial rollouts")
}

func TestManager_EnabledDefault(t *testing.T) {
	m := NewManager("legacy_password_hashes=off")

	assert.True(t, m.EnabledDefault(OpenRegistration, 0, true))
	assert.False(t, m.EnabledDefault(LegacyPasswordHashes, 0, true))

	var nilManager *Manager
	assert.True(t, nilManager.EnabledDefault(OpenRegistration, 0, true))
	assert.False(t, nilManager.Enabled(OpenRegistration, 0))
}

func TestManager_PercentRolloutIsDeterministic(t *testing.T) {
	m := NewManager("all=100%,none=0%,some=30%")

	enabled := 0
	for uid := uint(1); uid <= 1000; uid++ {
		assert.True(t, m.Enabled("all", uid))
		assert.False(t, m.Enabled("none", uid))
		if m.Enabled("some", uid) {
			enabled++
		}
		assert.Equal(t, m.Enabled("some", uid), m.Enabled("some", uid))
	}
	assert.InDelta(t, 300, enabled, 120)
}

func TestManager_Snapshot(t *testing.T) {
	m := NewManager("a=on,b=off")
	assert.Equal(t, map[string]bool{"a": true, "b": false}, m.Snapshot(1))
}
