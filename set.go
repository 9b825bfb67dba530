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

// Set is an unordered set of keys backed by the same table engine as Map,
// with zero-byte values. The algebra operations (Union, Intersection,
// Difference) are built purely from find, insert and iterate: they never
// mutate their inputs and always return a freshly allocated Set sharing
// nothing with them.
//
// A Set is NOT goroutine-safe.
type Set[K comparable] struct {
	t table[K, struct{}]
}

// NewSet constructs a Set with capacity for at least initialCapacity keys
// before the first resize. An initialCapacity of 0 selects the default
// capacity of a single group; a negative value is a configuration error.
func NewSet[K comparable](initialCapacity int, opts ...Option[K]) (*Set[K], error) {
	cfg, err := newConfig(initialCapacity, opts)
	if err != nil {
		return nil, err
	}
	s := &Set[K]{}
	s.t.init(initialCapacity, cfg)
	return s, nil
}

// Add inserts key, reporting whether it was absent. Adding a key already
// in the set leaves the set unchanged.
func (s *Set[K]) Add(key K) bool {
	_, present := s.t.put(key, struct{}{})
	return !present
}

// Remove deletes key, reporting whether it was present.
func (s *Set[K]) Remove(key K) bool {
	_, ok := s.t.delete(key)
	return ok
}

// Contains reports whether key is present.
func (s *Set[K]) Contains(key K) bool {
	_, ok := s.t.find(key)
	return ok
}

// All calls yield for each key in the set until yield returns false. The
// set must not be mutated during iteration.
func (s *Set[K]) All(yield func(key K) bool) {
	s.t.all(func(key K, _ struct{}) bool {
		return yield(key)
	})
}

// Len returns the number of keys in the set.
func (s *Set[K]) Len() int {
	return s.t.len()
}

// Clear removes all keys, retaining the current capacity.
func (s *Set[K]) Clear() {
	s.t.clear()
}

// Clone returns an independent copy of the set.
func (s *Set[K]) Clone() *Set[K] {
	r := s.emptyLike(s.Len())
	s.All(func(key K) bool {
		r.Add(key)
		return true
	})
	return r
}

// Union returns a new Set holding every key present in s or other.
func (s *Set[K]) Union(other *Set[K]) *Set[K] {
	r := s.Clone()
	other.All(func(key K) bool {
		r.Add(key)
		return true
	})
	return r
}

// Intersection returns a new Set holding the keys present in both s and
// other. The smaller of the two sets is iterated.
func (s *Set[K]) Intersection(other *Set[K]) *Set[K] {
	small, large := s, other
	if large.Len() < small.Len() {
		small, large = large, small
	}
	r := s.emptyLike(small.Len())
	small.All(func(key K) bool {
		if large.Contains(key) {
			r.Add(key)
		}
		return true
	})
	return r
}

// Difference returns a new Set holding the keys of s absent from other.
func (s *Set[K]) Difference(other *Set[K]) *Set[K] {
	r := s.emptyLike(s.Len())
	s.All(func(key K) bool {
		if !other.Contains(key) {
			r.Add(key)
		}
		return true
	})
	return r
}

// emptyLike returns an empty Set sized for sizeHint keys that inherits
// the receiver's hash function and matcher.
func (s *Set[K]) emptyLike(sizeHint int) *Set[K] {
	r := &Set[K]{}
	r.t.init(sizeHint, config[K]{hash: s.t.hash, matcher: s.t.matcher})
	return r
}
