// Package featureflags evaluates runtime switches configured through FEATURE_FLAGS.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags the application reads.
const (
	OpenRegistration     = "open_registration"
	LegacyPasswordHashes = "legacy_password_hashes"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "open_registration=on,legacy_password_hashes=off,new_feed=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given user. Unset flags are off.
// Supported values: on/true/1, off/false/0, and N% for a deterministic per-user rollout.
func (m *Manager) Enabled(name string, userID uint) bool {
	return m.EnabledDefault(name, userID, false)
}

// EnabledDefault is Enabled with an explicit result for flags that are not configured.
func (m *Manager) EnabledDefault(name string, userID uint, fallback bool) bool {
	if m == nil {
		return fallback
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return fallback
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return fallback
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil {
		return fallback
	}
	switch {
	case pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
