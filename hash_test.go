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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitHash(t *testing.T) {
	testCases := []struct {
		h  uint64
		h1 uint64
		h2 uint8
	}{
		{0, 0, 0},
		{0x7f, 0, 0x7f},
		{0x80, 1, 0},
		{0xff, 1, 0x7f},
		{0xffff_ffff_ffff_ffff, 0x01ff_ffff_ffff_ffff, 0x7f},
		{0xdead_beef_cafe_f00d, 0x01bd_5b7d_df95_fde0, 0x0d},
	}
	for _, c := range testCases {
		h1, h2 := splitHash(c.h)
		require.Equal(t, c.h1, h1)
		require.Equal(t, c.h2, h2)
		// h2 is the control-byte tag and must never collide with the
		// empty or deleted sentinels.
		require.Zero(t, h2&0x80)
	}
}

func TestDefaultHashFuncDeterministic(t *testing.T) {
	hash := defaultHashFunc[string]()
	require.Equal(t, hash("swiss"), hash("swiss"))
	require.NotEqual(t, hash("swiss"), hash("table"))
}

func TestStringHashFunc(t *testing.T) {
	hash := StringHashFunc()
	require.Equal(t, hash("swiss"), hash("swiss"))
	require.NotEqual(t, hash("swiss"), hash("table"))

	// xxh3 is stable across processes, so a second instance agrees.
	require.Equal(t, hash("swiss"), StringHashFunc()("swiss"))
}
