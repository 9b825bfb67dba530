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

package swiss

import (
	"fmt"
	"math/bits"
	"strings"
)

// Each slot in the table has a control byte with one of three states:
//
//	  empty: 1 0 0 0 0 0 0 0
//	deleted: 1 1 1 1 1 1 1 0
//	   full: 0 h h h h h h h  // h represents the H2 hash bits
//
// The top bit is 0 iff the slot is full, so a single comparison separates
// occupied slots from empty and deleted ones.

type slot[K comparable, V any] struct {
	key   K
	value V
}

// table is the engine shared by Map and Set. The control bytes in ctrls
// are kept in lockstep with slots: slot i holds a live entry iff ctrls[i]
// encodes a full slot. Capacity is always a power of two and a multiple of
// groupSize, partitioning ctrls into aligned groups that are probed with a
// single matcher call each.
type table[K comparable, V any] struct {
	ctrls []uint8
	slots []slot[K, V]
	// groupMask is the number of groups minus one, so that the starting
	// group for a probe is h1 & groupMask.
	groupMask uint64
	// resident is the number of full control bytes.
	resident int
	// tombstones is the number of deleted control bytes. Tombstones count
	// against the load factor so that a table churning through put/delete
	// pairs still rehashes before probe chains grow without bound.
	tombstones int
	// limit is the maximum value of resident+tombstones before the next
	// insert forces a rehash (capacity * 14/16).
	limit   int
	hash    HashFunc[K]
	matcher GroupMatcher
}

func (t *table[K, V]) init(capacity int, cfg config[K]) {
	t.hash = cfg.hash
	t.matcher = cfg.matcher
	t.alloc(normalizeCapacity(capacity))
}

// normalizeCapacity rounds a requested capacity up to the next power of
// two, with a floor of a single group.
func normalizeCapacity(capacity int) int {
	if capacity <= groupSize {
		return groupSize
	}
	return 1 << bits.Len(uint(capacity-1))
}

func (t *table[K, V]) alloc(capacity int) {
	if capacity <= 0 || capacity%groupSize != 0 {
		panic(fmt.Sprintf("swiss: control array length %d is not a positive multiple of the group size", capacity))
	}
	t.ctrls = make([]uint8, capacity)
	for i := range t.ctrls {
		t.ctrls[i] = ctrlEmpty
	}
	t.slots = make([]slot[K, V], capacity)
	t.groupMask = uint64(capacity/groupSize) - 1
	t.limit = capacity / groupSize * maxAvgGroupLoad
	t.resident, t.tombstones = 0, 0
}

func (t *table[K, V]) capacity() int {
	return len(t.ctrls)
}

func (t *table[K, V]) len() int {
	return t.resident
}

// group returns the aligned window of control bytes for group g.
func (t *table[K, V]) group(g uint64) *[groupSize]uint8 {
	return (*[groupSize]uint8)(t.ctrls[g*groupSize:])
}

// find implements the probe state machine shared by get, put and delete.
// Starting at the group selected by h1, each visited group is matched
// against h2 and the candidate slots are confirmed by key comparison. A
// group containing an empty byte terminates the probe.
//
// When the key is found, i is its slot. When it is absent, i is the first
// empty or deleted slot seen across the whole scan, which is where a new
// entry for the key belongs; preferring the earliest such slot means
// tombstones left on the key's probe path get reused before fresh empty
// slots are consumed.
//
// Termination is guaranteed because the load-factor invariant keeps at
// least one eighth of the control bytes empty at all times.
func (t *table[K, V]) find(key K) (i int, found bool) {
	h1, h2 := splitHash(t.hash(key))
	g := h1 & t.groupMask
	insert := -1
	for {
		grp := t.group(g)
		matches := t.matcher.MatchEqual(h2, grp)
		for matches != 0 {
			j := int(g)*groupSize + matches.First()
			if t.slots[j].key == key {
				return j, true
			}
			matches = matches.RemoveFirst()
		}
		empty := t.matcher.MatchEqual(ctrlEmpty, grp)
		if insert < 0 {
			if m := empty | t.matcher.MatchEqual(ctrlDeleted, grp); m != 0 {
				insert = int(g)*groupSize + m.First()
			}
		}
		if empty != 0 {
			return insert, false
		}
		g = (g + 1) & t.groupMask
	}
}

func (t *table[K, V]) get(key K) (value V, ok bool) {
	if i, found := t.find(key); found {
		return t.slots[i].value, true
	}
	return value, false
}

// put inserts or overwrites an entry, returning the previous value when
// the key was already resident.
func (t *table[K, V]) put(key K, value V) (prev V, updated bool) {
	for {
		i, found := t.find(key)
		if found {
			prev, t.slots[i].value = t.slots[i].value, value
			t.checkInvariants()
			return prev, true
		}
		// The insert below may consume an empty slot, so rehash first if
		// that would push the table past the maximum load factor, then
		// redo the whole insert against the new arrays.
		if t.resident+t.tombstones >= t.limit {
			t.resize(t.nextCapacity())
			continue
		}
		if t.ctrls[i] == ctrlDeleted {
			t.tombstones--
		}
		_, h2 := splitHash(t.hash(key))
		t.ctrls[i] = h2
		t.slots[i] = slot[K, V]{key: key, value: value}
		t.resident++
		t.checkInvariants()
		return prev, false
	}
}

// delete removes key if resident, returning its value. Deleting an absent
// key is a no-op.
func (t *table[K, V]) delete(key K) (prev V, ok bool) {
	i, found := t.find(key)
	if !found {
		return prev, false
	}
	prev = t.slots[i].value
	t.slots[i] = slot[K, V]{}
	// The slot can be reclaimed as empty only if no probe chain can
	// depend on it to continue past this group. An existing empty byte in
	// the slot's own group proves the group was never full, so every
	// probe that reaches it terminates here regardless.
	if t.matcher.MatchEqual(ctrlEmpty, t.group(uint64(i/groupSize))) != 0 {
		t.ctrls[i] = ctrlEmpty
	} else {
		t.ctrls[i] = ctrlDeleted
		t.tombstones++
	}
	t.resident--
	t.checkInvariants()
	return prev, true
}

// nextCapacity returns the smallest valid capacity that keeps twice the
// resident count within the maximum load factor. When tombstones account
// for at least as many slots as live entries, rehashing at the current
// capacity reclaims them without growing.
func (t *table[K, V]) nextCapacity() int {
	newCapacity := 2 * t.capacity()
	if t.tombstones >= t.resident {
		newCapacity = t.capacity()
	}
	for 2*t.resident > newCapacity/groupSize*maxAvgGroupLoad {
		newCapacity *= 2
	}
	return newCapacity
}

// resize replaces the backing arrays, re-placing every resident entry via
// its full probe sequence. Tombstones are never carried over.
func (t *table[K, V]) resize(newCapacity int) {
	oldCtrls, oldSlots := t.ctrls, t.slots
	t.alloc(newCapacity)
	for i, c := range oldCtrls {
		if c&ctrlEmpty != 0 {
			continue
		}
		t.uncheckedPut(oldSlots[i].key, oldSlots[i].value)
	}
	t.checkInvariants()
}

// uncheckedPut places an entry known not to be resident into the first
// empty or deleted slot along its probe sequence. Violating that
// requirement would leave duplicate keys in the table.
func (t *table[K, V]) uncheckedPut(key K, value V) {
	h1, h2 := splitHash(t.hash(key))
	g := h1 & t.groupMask
	for {
		grp := t.group(g)
		m := t.matcher.MatchEqual(ctrlEmpty, grp) | t.matcher.MatchEqual(ctrlDeleted, grp)
		if m != 0 {
			i := int(g)*groupSize + m.First()
			if t.ctrls[i] == ctrlDeleted {
				t.tombstones--
			}
			t.ctrls[i] = h2
			t.slots[i] = slot[K, V]{key: key, value: value}
			t.resident++
			return
		}
		g = (g + 1) & t.groupMask
	}
}

// all calls yield for every resident entry until yield returns false, and
// reports whether the iteration ran to completion. Mutating the table
// during iteration is a caller contract violation; no structural
// modification detection is performed.
func (t *table[K, V]) all(yield func(key K, value V) bool) bool {
	ctrls, slots := t.ctrls, t.slots
	for i, c := range ctrls {
		if c&ctrlEmpty != 0 {
			continue
		}
		if !yield(slots[i].key, slots[i].value) {
			return false
		}
	}
	return true
}

// clear removes all entries, retaining the current capacity.
func (t *table[K, V]) clear() {
	for i := range t.ctrls {
		t.ctrls[i] = ctrlEmpty
	}
	clear(t.slots)
	t.resident, t.tombstones = 0, 0
}

func (t *table[K, V]) checkInvariants() {
	if !invariants {
		return
	}

	if len(t.ctrls) == 0 || len(t.ctrls)%groupSize != 0 {
		panic(fmt.Sprintf("invariant failed: control array length %d is not a positive multiple of %d",
			len(t.ctrls), groupSize))
	}
	if len(t.ctrls) != len(t.slots) {
		panic(fmt.Sprintf("invariant failed: %d control bytes but %d slots", len(t.ctrls), len(t.slots)))
	}

	var resident, tombstones int
	for i, c := range t.ctrls {
		switch {
		case c == ctrlEmpty:
		case c == ctrlDeleted:
			tombstones++
		case c&ctrlEmpty != 0:
			panic(fmt.Sprintf("invariant failed: ctrl(%d)=%02x is not a valid control byte\n%s",
				i, c, t.debugString()))
		default:
			if j, ok := t.find(t.slots[i].key); !ok || j != i {
				panic(fmt.Sprintf("invariant failed: slot(%d): %v not found by probing\n%s",
					i, t.slots[i].key, t.debugString()))
			}
			resident++
		}
	}

	if resident != t.resident {
		panic(fmt.Sprintf("invariant failed: found %d full slots, but resident count is %d\n%s",
			resident, t.resident, t.debugString()))
	}
	if tombstones != t.tombstones {
		panic(fmt.Sprintf("invariant failed: found %d tombstones, but tombstone count is %d\n%s",
			tombstones, t.tombstones, t.debugString()))
	}
	if t.resident+t.tombstones > t.limit {
		panic(fmt.Sprintf("invariant failed: resident=%d + tombstones=%d exceeds limit=%d\n%s",
			t.resident, t.tombstones, t.limit, t.debugString()))
	}
}

func (t *table[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  resident=%d  tombstones=%d  limit=%d\n",
		t.capacity(), t.resident, t.tombstones, t.limit)
	for i, c := range t.ctrls {
		switch c {
		case ctrlEmpty:
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
		case ctrlDeleted:
			fmt.Fprintf(&buf, "  %4d: deleted\n", i)
		default:
			fmt.Fprintf(&buf, "  %4d: %v [ctrl=%02x]\n", i, t.slots[i].key, c)
		}
	}
	return buf.String()
}
