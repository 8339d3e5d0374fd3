// Package mapping assigns dense integer ids to the values of categorical
// features such as tokens, characters, casing classes and labels.
package mapping

import (
	"fmt"
	"math"
	"slices"

	"github.com/fxamacker/cbor/v2"
)

// Mapping is a bijection from string keys to ids 0..Len()-1, assigned in
// first-seen order.
type Mapping struct {
	name   string
	keys   []string
	ids    map[string]int
	frozen bool
}

// New returns a mapping seeded with keys, which receive ids 0, 1, ...
func New(name string, keys ...string) *Mapping {
	m := &Mapping{
		name: name,
		ids:  make(map[string]int, len(keys)),
	}

	for _, k := range keys {
		m.Add(k)
	}

	return m
}

func (m *Mapping) Name() string {
	return m.name
}

func (m *Mapping) Len() int {
	return len(m.keys)
}

// ID returns the id of key.
func (m *Mapping) ID(key string) (int, bool) {
	id, ok := m.ids[key]
	return id, ok
}

// Has reports whether key is mapped.
func (m *Mapping) Has(key string) bool {
	_, ok := m.ids[key]
	return ok
}

// Key returns the key with the given id.
func (m *Mapping) Key(id int) (string, bool) {
	if id < 0 || id >= len(m.keys) {
		return "", false
	}

	return m.keys[id], true
}

// Keys returns all keys ordered by id.
func (m *Mapping) Keys() []string {
	return slices.Clone(m.keys)
}

// Add returns the id of key, assigning the next free id if key is new.
// Adding a new key to a frozen mapping panics.
func (m *Mapping) Add(key string) int {
	if id, ok := m.ids[key]; ok {
		return id
	}

	if m.frozen {
		panic(fmt.Sprintf("mapping: add %q to frozen mapping %q", key, m.name))
	}

	id := len(m.keys)
	m.keys = append(m.keys, key)
	m.ids[key] = id
	return id
}

// Freeze prevents any further keys from being added.
func (m *Mapping) Freeze() {
	m.frozen = true
}

func (m *Mapping) Frozen() bool {
	return m.frozen
}

var decMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{MaxArrayElements: math.MaxInt32}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

type wireMapping struct {
	Name string   `cbor:"name"`
	Keys []string `cbor:"keys"`
}

func (m *Mapping) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(wireMapping{Name: m.name, Keys: m.keys})
}

// UnmarshalCBOR restores a mapping. Decoded mappings are frozen.
func (m *Mapping) UnmarshalCBOR(data []byte) error {
	var w wireMapping
	if err := decMode.Unmarshal(data, &w); err != nil {
		return err
	}

	*m = *New(w.Name)
	for _, k := range w.Keys {
		if m.Has(k) {
			return fmt.Errorf("mapping %q: duplicate key %q", w.Name, k)
		}
		m.Add(k)
	}

	m.Freeze()
	return nil
}
