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
	"math/bits"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitmaskFirst(t *testing.T) {
	require.Equal(t, 16, Bitmask(0).First())
	require.Equal(t, 0, Bitmask(1).First())
	require.Equal(t, 3, Bitmask(0b1000).First())
	require.Equal(t, 15, Bitmask(1<<15).First())
}

func TestBitmaskRemoveFirst(t *testing.T) {
	b := Bitmask(0b1010_0101)
	var positions []int
	for b != 0 {
		positions = append(positions, b.First())
		b = b.RemoveFirst()
	}
	require.Equal(t, []int{0, 2, 5, 7}, positions)
}

func TestMatchEqualExample(t *testing.T) {
	// A group containing the target twice yields a mask with exactly the
	// two matching bits set.
	group := [groupSize]uint8{5, 9, 5, 2, 1, 3, 4, 6, 7, 8, 10, 11, 12, 13, 14, 15}
	for _, m := range []GroupMatcher{PortableMatcher{}, SWARMatcher{}} {
		mask := m.MatchEqual(5, &group)
		require.Equal(t, Bitmask(0b101), mask)
		require.Equal(t, 2, bits.OnesCount16(uint16(mask)))

		require.Equal(t, Bitmask(0), m.MatchEqual(42, &group))
		require.Equal(t, 16, m.MatchEqual(42, &group).First())
	}
}

func TestMatchEqualControlBytes(t *testing.T) {
	group := [groupSize]uint8{
		ctrlEmpty, 0x01, ctrlDeleted, 0x7f,
		ctrlEmpty, 0x00, ctrlDeleted, 0x42,
		ctrlEmpty, ctrlEmpty, 0x13, 0x13,
		ctrlDeleted, 0x00, 0x7f, ctrlEmpty,
	}
	for _, m := range []GroupMatcher{PortableMatcher{}, SWARMatcher{}} {
		require.Equal(t, Bitmask(0b1000_0011_0001_0001), m.MatchEqual(ctrlEmpty, &group))
		require.Equal(t, Bitmask(0b0001_0000_0100_0100), m.MatchEqual(ctrlDeleted, &group))
		require.Equal(t, Bitmask(0b0010_0000_0010_0000), m.MatchEqual(0x00, &group))
		require.Equal(t, Bitmask(0b0000_1100_0000_0000), m.MatchEqual(0x13, &group))
	}
}

// TestMatchEqualBackendsAgree cross-checks the SWAR backend against the
// portable reference for every target byte over adversarial and random
// group contents. The adversarial groups contain consecutive byte values
// like 0x03,0x02 which trip the classic haszero bit trick with borrow
// false positives; the exact detection must not report them.
func TestMatchEqualBackendsAgree(t *testing.T) {
	groups := [][groupSize]uint8{
		{},
		{0x03, 0x02, 0x03, 0x02, 0x03, 0x02, 0x03, 0x02, 0x03, 0x02, 0x03, 0x02, 0x03, 0x02, 0x03, 0x02},
		{0x01, 0x00, 0x01, 0x00, 0x01, 0x00, 0x01, 0x00, 0x01, 0x00, 0x01, 0x00, 0x01, 0x00, 0x01, 0x00},
		{0xff, 0xfe, 0xff, 0xfe, 0xff, 0xfe, 0xff, 0xfe, 0xff, 0xfe, 0xff, 0xfe, 0xff, 0xfe, 0xff, 0xfe},
		{0x80, 0x7f, 0x80, 0x7f, 0x80, 0x7f, 0x80, 0x7f, 0x80, 0x7f, 0x80, 0x7f, 0x80, 0x7f, 0x80, 0x7f},
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	}
	for b := 0; b < 256; b++ {
		var g [groupSize]uint8
		for i := range g {
			g[i] = uint8(b)
		}
		groups = append(groups, g)
	}
	rng := rand.New(rand.NewSource(0))
	for i := 0; i < 1000; i++ {
		var g [groupSize]uint8
		for j := range g {
			g[j] = uint8(rng.Intn(256))
		}
		groups = append(groups, g)
	}

	for _, group := range groups {
		for target := 0; target < 256; target++ {
			want := PortableMatcher{}.MatchEqual(uint8(target), &group)
			got := SWARMatcher{}.MatchEqual(uint8(target), &group)
			require.Equalf(t, want, got, "group=%v target=%02x", group, target)

			count := 0
			for _, c := range group {
				if c == uint8(target) {
					count++
				}
			}
			require.Equal(t, count, bits.OnesCount16(uint16(got)))
		}
	}
}
