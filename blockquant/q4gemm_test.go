// Copyright 2025 blockquant Authors
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

package blockquant

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQ4GemmPackBSymmetricAscending(t *testing.T) {
	src := make([]float32, 32)
	for i := range src {
		src[i] = float32(i + 1) // 1..32
	}

	dst := make([]byte, TypeSYM.BlobSize())
	require.NoError(t, Q4GemmPackB(TypeSYM, dst, src, 1, 32, 1))

	scale := math.Float32frombits(uint32(dst[0]) | uint32(dst[1])<<8 | uint32(dst[2])<<16 | uint32(dst[3])<<24)
	assert.Equal(t, float32(4.0), scale, "amax(1..32)=32, mid=8, scale=32/8")

	// payload[0] packs v[0]=1 (lo) and v[16]=17 (hi).
	assert.Equal(t, byte(0xC8), dst[4])
}

func TestQ4GemmPackBSymmetricAllZero(t *testing.T) {
	src := make([]float32, 32)
	dst := make([]byte, TypeSYM.BlobSize())
	require.NoError(t, Q4GemmPackB(TypeSYM, dst, src, 1, 32, 1))

	for i, b := range dst {
		assert.Equalf(t, byte(0), b, "byte %d should be 0 for an all-zero symmetric block", i)
	}
}

// TestQ4GemmPackBAsymmetricRaggedTail exercises spec.md §8's "Asymmetric,
// K=4, values=[-4,-2,2,4]" case. Packing is always by 32-wide sub-stride
// (payload[l] = level(l) | level(l+16)<<4), so each of the four real
// elements lands in the lo nibble of its own payload byte, paired against
// the tail position 16 above it rather than against its neighbor.
func TestQ4GemmPackBAsymmetricRaggedTail(t *testing.T) {
	src := []float32{-4, -2, 2, 4}
	dst := make([]byte, TypeASYM.BlobSize())
	require.NoError(t, Q4GemmPackB(TypeASYM, dst, src, 1, 4, 1))

	scale := math.Float32frombits(uint32(dst[0]) | uint32(dst[1])<<8 | uint32(dst[2])<<16 | uint32(dst[3])<<24)
	assert.InDelta(t, float32(8.0/15.0), scale, 1e-6)
	assert.Equal(t, byte(8), dst[4], "zp")

	// payload[0..3] pack nibble(-4)=0, nibble(-2)=4, nibble(2)=12,
	// nibble(4)=15 (clamped from 16) in the lo nibble, each paired in the
	// hi nibble with position l+16, which is past klen=4 and so packs zp=8.
	assert.Equal(t, byte(0x80), dst[5])
	assert.Equal(t, byte(0x84), dst[6])
	assert.Equal(t, byte(0x8C), dst[7])
	assert.Equal(t, byte(0x8F), dst[8])

	// Every remaining payload byte (positions 4..15 paired with 20..31) packs zp=8 twice.
	for i := 9; i < TypeASYM.BlobSize(); i++ {
		assert.Equalf(t, byte(0x88), dst[i], "tail byte %d should pack zp twice", i)
	}
}

// TestQ4GemmPackBRaggedTailBlockBoundary exercises spec.md §8's "Ragged
// tail, K=33, BlkLen=32" case: the 33rd element starts a new block whose
// remaining 31 positions pack as 0 (not read back, since Q4GemmUnpackB
// never stores past klen, but deterministic all the same).
func TestQ4GemmPackBRaggedTailBlockBoundary(t *testing.T) {
	const k = 33
	src := make([]float32, k)
	for i := 0; i < 32; i++ {
		src[i] = float32(i + 1) // block 0: 1..32, matches the ascending SYM case
	}
	src[32] = 5 // block 1: single real element

	nblocks := 2
	dst := make([]byte, nblocks*TypeSYM.BlobSize())
	require.NoError(t, Q4GemmPackB(TypeSYM, dst, src, 1, k, 1))

	block1 := dst[TypeSYM.BlobSize():]
	scale1 := math.Float32frombits(uint32(block1[0]) | uint32(block1[1])<<8 | uint32(block1[2])<<16 | uint32(block1[3])<<24)
	wantScale1 := reduceSymmetric(5, 5, Bits4)
	assert.Equal(t, wantScale1, scale1)

	// payload[0] packs level(v[32]=5) in the lo nibble against the tail
	// fill (raw 0, not mid) in the hi nibble.
	wantLevel0 := levelSymmetric(5, recip(wantScale1), Bits4, wantScale1 == 0)
	assert.Equal(t, wantLevel0, block1[4])

	// Every remaining payload byte is entirely within the ragged tail and packs 0 twice.
	for i := 5; i < TypeSYM.BlobSize(); i++ {
		assert.Equalf(t, byte(0), block1[i], "tail byte %d should pack 0 twice", i)
	}
}

func TestQ4GemmRoundTrip(t *testing.T) {
	for _, qt := range []QType{TypeSYM, TypeASYM, TypeSYM64, TypeSYM128} {
		t.Run(qt.String(), func(t *testing.T) {
			const n, k, ld = 3, 200, 3
			src := make([]float32, k*ld)
			for i := range src {
				src[i] = float32(math.Sin(float64(i))) * 2
			}

			size := n * ((k + qt.BlkLen() - 1) / qt.BlkLen()) * qt.BlobSize()
			packed := make([]byte, size)
			require.NoError(t, Q4GemmPackB(qt, packed, src, n, k, ld))

			got := make([]float32, k*ld)
			require.NoError(t, Q4GemmUnpackB(qt, got, packed, n, k, ld))

			blkLen := qt.BlkLen()
			for col := 0; col < n; col++ {
				for row := 0; row < k; row++ {
					k0 := (row / blkLen) * blkLen
					klen := blkLen
					if k0+klen > k {
						klen = k - k0
					}
					var min, max float32 = src[k0*ld+col], src[k0*ld+col]
					for l := 1; l < klen; l++ {
						v := src[(k0+l)*ld+col]
						if v < min {
							min = v
						}
						if v > max {
							max = v
						}
					}
					var scale float32
					if qt.Asymmetric() {
						scale, _ = reduceAsymmetric(min, max, Bits4)
					} else {
						scale = reduceSymmetric(min, max, Bits4)
					}
					bound := scale/2 + 1e-5
					idx := row*ld + col
					assert.InDeltaf(t, src[idx], got[idx], float64(bound),
						"qtype=%s col=%d row=%d", qt, col, row)
				}
			}
		})
	}
}

func TestQ4GemmPackBUnsupportedQType(t *testing.T) {
	err := Q4GemmPackB(QType(99), nil, nil, 1, 1, 1)
	require.ErrorIs(t, err, ErrUnsupportedParameter)
}

func TestQ4GemmPackBSizeUnknownQType(t *testing.T) {
	assert.Equal(t, 0, Q4GemmPackBSize(QType(99), 4, 128))
}
