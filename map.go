// Copyright 2025 The Swisstable Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package swiss provides map and set containers based on the Swiss Tables
// design described in https://abseil.io/about/design/swisstables. See also
// https://faultlore.com/blah/hashbrown-tldr/.
//
// # Swiss Tables
//
// Swiss tables are open-addressing hash tables whose key design choice is
// a separate metadata array storing one "control byte" per slot. For a
// full slot, 7 bits of the control byte are taken from hash(key); the
// remaining bit distinguishes full slots from empty slots and deletion
// tombstones. The metadata array is partitioned into aligned groups of 16
// bytes, and probing checks an entire group at a time: a single
// vectorized comparison yields a bitmask of the positions whose tag
// matches the key's, and only those candidates are confirmed with a full
// key comparison. Probing walks groups linearly, wrapping around, and
// stops at the first group containing an empty byte.
//
// Deletion leaves a tombstone unless the slot's own group still contains
// an empty byte, in which case the slot can be reclaimed outright: any
// probe reaching that group would have terminated there anyway. Both live
// entries and tombstones count against the 14/16 maximum load factor, so
// a table that churns through inserts and deletes still rehashes before
// its probe chains degrade.
//
// The 16-way comparison is performed through the GroupMatcher interface.
// The default SWARMatcher backend compares all 16 bytes using two 64-bit
// words; PortableMatcher is the byte-by-byte reference implementation.
// Every backend produces bit-identical masks, so the containers behave
// the same regardless of which one is active.
//
// The containers are not goroutine-safe: concurrent mutation, or
// iteration overlapping mutation, must be serialized by the caller.
package swiss

// Map is an unordered map from keys to values with Get, Put, Delete and
// All operations. By default keys are hashed with the runtime's maphash
// using a random per-Map seed; a different hash can be supplied with
// WithHashFunc.
//
// A Map is NOT goroutine-safe.
type Map[K comparable, V any] struct {
	t table[K, V]
}

// NewMap constructs a Map with capacity for at least initialCapacity
// entries before the first resize. An initialCapacity of 0 selects the
// default capacity of a single group; a negative value is a
// configuration error.
func NewMap[K comparable, V any](initialCapacity int, opts ...Option[K]) (*Map[K, V], error) {
	cfg, err := newConfig(initialCapacity, opts)
	if err != nil {
		return nil, err
	}
	m := &Map[K, V]{}
	m.t.init(initialCapacity, cfg)
	return m, nil
}

// Get retrieves the value for key, returning ok=false if key is not
// present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	return m.t.get(key)
}

// Put inserts an entry, overwriting in place if an entry with the same
// key already exists. It returns the previous value and whether one was
// replaced.
func (m *Map[K, V]) Put(key K, value V) (prev V, replaced bool) {
	return m.t.put(key, value)
}

// Delete removes the entry for key, reporting whether one was present.
// Deleting an absent key is a no-op.
func (m *Map[K, V]) Delete(key K) bool {
	_, ok := m.t.delete(key)
	return ok
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.t.find(key)
	return ok
}

// All calls yield for each entry in the map until yield returns false.
// The map must not be mutated during iteration.
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	m.t.all(yield)
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.t.len()
}

// Clear removes all entries, retaining the current capacity.
func (m *Map[K, V]) Clear() {
	m.t.clear()
}
