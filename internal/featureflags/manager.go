// Package featureflags evaluates runtime switches configured through
// FEATURE_FLAGS, e.g. "realtime_push=on,inbox_v2=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// RealtimePush gates websocket delivery of newly created notifications.
// Notifications are stored either way.
const RealtimePush = "realtime_push"

// Defaults holds the value used for a known flag that the configuration
// leaves out.
var Defaults = map[string]string{
	RealtimePush: "on",
}

// Manager holds parsed flag values. A nil Manager reports every flag off.
type Manager struct {
	values  map[string]string
	invalid []string
}

// NewManager parses a comma-separated list of name=value pairs on top of
// Defaults. Malformed entries are skipped and reported by Invalid.
func NewManager(raw string) *Manager {
	m := &Manager{values: maps.Clone(Defaults)}

	for entry := range strings.SplitSeq(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, "=")
		name, value = normalize(name), normalize(value)
		if !ok || name == "" || !validValue(value) {
			m.invalid = append(m.invalid, entry)
			continue
		}
		m.values[name] = value
	}

	return m
}

// Enabled reports whether name is on for userID. Values may be
// on/true/1, off/false/0 or a percentage rollout such as 25%, which
// buckets users deterministically and is never on for anonymous viewers.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.values[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, ok := percentage(value)
	switch {
	case !ok || pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Names lists every configured or defaulted flag in sorted order.
func (m *Manager) Names() []string {
	if m == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(m.values))
}

// Invalid returns the configuration entries that could not be parsed.
func (m *Manager) Invalid() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.invalid)
}

// Raw returns a copy of the effective flag values.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return maps.Clone(m.values)
}

// Snapshot evaluates every flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool)
	for _, name := range m.Names() {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validValue(v string) bool {
	switch v {
	case "on", "true", "1", "off", "false", "0":
		return true
	}
	_, ok := percentage(v)
	return ok
}

func percentage(v string) (int, bool) {
	raw, ok := strings.CutSuffix(v, "%")
	if !ok {
		return 0, false
	}
	pct, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return pct, true
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
