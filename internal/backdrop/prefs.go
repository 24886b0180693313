package backdrop

import (
	"strconv"
	"strings"
)

// Persisted preference keys.
const (
	PrefEnabled = "backgroundEnabled"
	PrefEffect  = "selectedEffect"

	prefAuto = "auto"
)

// Store is the external key/value store preferences persist to.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Preferences is the decoded durable state.
type Preferences struct {
	Enabled    bool
	AutoRotate bool
	Effect     int
	// Recovered is set when a stored value was unusable and a default was
	// substituted.
	Recovered bool
}

// LoadPreferences decodes the stored preferences for a catalog of size n.
// Bad values never fail: an out-of-range index selects effect 0, anything
// unparsable falls back to the defaults.
func LoadPreferences(s Store, n int) Preferences {
	p := Preferences{Enabled: true, AutoRotate: true}
	if s == nil {
		return p
	}
	if v, ok := s.Get(PrefEnabled); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			p.Recovered = true
		} else {
			p.Enabled = b
		}
	}
	v, ok := s.Get(PrefEffect)
	if !ok {
		return p
	}
	v = strings.TrimSpace(v)
	if v == prefAuto {
		return p
	}
	idx, err := strconv.Atoi(v)
	if err != nil {
		p.Recovered = true
		return p
	}
	p.AutoRotate = false
	if idx < 0 || idx >= n {
		p.Recovered = true
		idx = 0
	}
	p.Effect = idx
	return p
}

func encodeEffectPref(auto bool, index int) string {
	if auto {
		return prefAuto
	}
	return strconv.Itoa(index)
}

// MemoryStore is an in-process Store.
type MemoryStore map[string]string

func (m MemoryStore) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MemoryStore) Set(key, value string) error {
	m[key] = value
	return nil
}
