package share

import (
	"bytes"

	"github.com/bytedance/sonic"
)

// Metadata is an insertion-ordered map from metadata key to one or more string values.
type Metadata struct {
	keys   []string
	values map[string][]string
}

// NewMetadata returns an empty metadata map.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string][]string)}
}

// Add appends values under key. Empty values are ignored, so keys without any value
// never appear.
func (m *Metadata) Add(key string, values ...string) {
	if key == "" {
		return
	}
	for _, value := range values {
		if value == "" {
			continue
		}
		if m.values == nil {
			m.values = make(map[string][]string)
		}
		if _, ok := m.values[key]; !ok {
			m.keys = append(m.keys, key)
		}
		m.values[key] = append(m.values[key], value)
	}
}

// Set replaces all values stored under key.
func (m *Metadata) Set(key string, values ...string) {
	kept := values[:0:0]
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		m.Delete(key)
		return
	}
	if m.values == nil {
		m.values = make(map[string][]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = kept
}

// Delete removes key.
func (m *Metadata) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Get returns a string when key holds one value and a []string when it holds several.
func (m *Metadata) Get(key string) (any, bool) {
	values, ok := m.values[key]
	if !ok {
		return nil, false
	}
	if len(values) == 1 {
		return values[0], true
	}
	return append([]string(nil), values...), true
}

// Values returns every value stored under key.
func (m *Metadata) Values(key string) []string {
	return append([]string(nil), m.values[key]...)
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	return append([]string(nil), m.keys...)
}

func (m *Metadata) Len() int {
	return len(m.keys)
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := sonic.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		value, _ := m.Get(key)
		v, err := sonic.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
