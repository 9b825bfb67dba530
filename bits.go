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
	"encoding/binary"
	"math/bits"
)

const (
	groupSize       = 16
	maxAvgGroupLoad = 14

	ctrlEmpty   uint8 = 0b1000_0000
	ctrlDeleted uint8 = 0b1111_1110

	bitsetLSB = 0x0101010101010101
	bitsetMSB = 0x8080808080808080
)

// Bitmask is the result of matching a target byte against a group of
// groupSize control bytes. Bit i is set iff control byte i of the group
// equals the target.
type Bitmask uint16

// First returns the index of the lowest set bit, or groupSize (16) if the
// mask is empty. The sentinel falls out of TrailingZeros16 for free and
// doubles as "no match in this group".
func (b Bitmask) First() int {
	return bits.TrailingZeros16(uint16(b))
}

// RemoveFirst clears only the lowest set bit, allowing iteration over all
// matches in a group without recomputing the mask.
func (b Bitmask) RemoveFirst() Bitmask {
	return b & (b - 1)
}

// GroupMatcher compares a target byte against the groupSize control bytes
// of a group. Implementations are swappable at construction time via
// WithMatcher, but must be bit-exact: for every possible target and group
// content, every backend produces the identical Bitmask. Table correctness
// never depends on which backend is active.
type GroupMatcher interface {
	MatchEqual(target uint8, group *[groupSize]uint8) Bitmask
}

// PortableMatcher is the byte-by-byte reference implementation of
// GroupMatcher. It defines the contract that accelerated backends are
// checked against.
type PortableMatcher struct{}

func (PortableMatcher) MatchEqual(target uint8, group *[groupSize]uint8) Bitmask {
	var mask Bitmask
	for i, c := range group {
		if c == target {
			mask |= 1 << i
		}
	}
	return mask
}

// SWARMatcher matches all groupSize control bytes using two 64-bit words
// (SIMD within a register). It is the default backend.
//
// Unlike the classic haszero bit trick, which can report false positives in
// bytes above a genuine match due to borrow propagation, the detection used
// here is exact per byte, so the produced mask is identical to
// PortableMatcher for every input.
type SWARMatcher struct{}

func (SWARMatcher) MatchEqual(target uint8, group *[groupSize]uint8) Bitmask {
	lo := binary.LittleEndian.Uint64(group[0:8])
	hi := binary.LittleEndian.Uint64(group[8:16])
	t := bitsetLSB * uint64(target)
	return Bitmask(matchWord(lo^t)) | Bitmask(matchWord(hi^t))<<8
}

// matchWord returns an 8-bit mask with bit i set iff byte i of w is zero.
//
// A byte of w is zero iff its MSB survives ^(w | ((w|MSB) - LSB)). Since
// every byte of w|MSB is at least 0x80, the per-byte subtraction of 0x01
// never borrows across byte boundaries, which is what makes the detection
// exact. The surviving 0x80 markers are then folded down into one bit per
// byte: byte i needs a right shift by 7*i, and every multiple of 7 up to 49
// is reachable as a sum of the shifts 7, 14 and 28.
func matchWord(w uint64) uint16 {
	m := ^(w | ((w | bitsetMSB) - bitsetLSB)) & bitsetMSB
	m >>= 7
	m |= m >> 7
	m |= m >> 14
	m |= m >> 28
	return uint16(m & 0xff)
}
