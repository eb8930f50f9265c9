package domain

// Metadata is a string-keyed mapping that remembers insertion order.
type Metadata struct {
	keys   []string
	values map[string]any
}

func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]any)}
}

// Set adds or replaces a value. Replacing keeps the original position.
func (m *Metadata) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Metadata) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// GetString returns the value as a string when it is one.
func (m *Metadata) GetString(key string) string {
	v, ok := m.values[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *Metadata) Len() int {
	return len(m.keys)
}
