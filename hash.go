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
	"hash/maphash"

	"github.com/zeebo/xxh3"
)

const (
	h1Mask uint64 = 0xffff_ffff_ffff_ff80
	h2Mask uint64 = 0x0000_0000_0000_007f
)

// HashFunc hashes a key to a 64-bit value. The distribution of the output
// matters far more than collision resistance: the low 7 bits become the
// control-byte tag and the remaining 57 bits select the probe starting
// group.
type HashFunc[K comparable] func(K) uint64

// defaultHashFunc hashes keys with the runtime's maphash, randomly seeded
// per table so that probe sequences differ between instances.
func defaultHashFunc[K comparable]() HashFunc[K] {
	seed := maphash.MakeSeed()
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}

// StringHashFunc returns a HashFunc for string keys backed by xxh3. It is
// faster than the default hash for long string keys and is deterministic
// across processes, which the randomly seeded default is not.
func StringHashFunc() HashFunc[string] {
	return xxh3.HashString
}

// splitHash splits a hash into a 57-bit group selector (h1) and the 7-bit
// tag (h2) stored in the control byte of a full slot.
func splitHash(h uint64) (h1 uint64, h2 uint8) {
	return (h & h1Mask) >> 7, uint8(h & h2Mask)
}
