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
	"encoding/binary"
	"fmt"
	"math"

	"github.com/openChatGpts/blockquant/internal/platform"
)

// Q4GemmPackBSize returns the number of bytes Q4GemmPackB needs to pack an
// N x K (transposed B operand) source under qt, or 0 if qt is unknown or
// no Q4Gemm kernel exists for this build (platform.HasQ4GemmKernel).
// Callers must check the returned size before calling Q4GemmPackB.
func Q4GemmPackBSize(qt QType, n, k int) int {
	if !qt.valid() || n <= 0 || k <= 0 || !platform.HasQ4GemmKernel() {
		return 0
	}
	blkLen := qt.BlkLen()
	nblocks := (k + blkLen - 1) / blkLen
	return n * nblocks * qt.BlobSize()
}

// Q4GemmPackB packs a K x N row-major FP32 source (row stride ld, ld >= n)
// column-major into dst: one blob per (column, k-block) pair, blobs for a
// column laid out contiguously and ordered by increasing k-block.
//
// Within a block, elements are packed in 32-wide sub-strides regardless of
// the block's total length (relevant for SYM64/SYM128): sub-stride byte i
// packs v[i] in its low nibble and v[i+16] in its high nibble. Ragged tails
// (k not a multiple of BlkLen) are zero-filled: the symmetric variant packs
// raw 0, the asymmetric variant packs the block's own zero point, which
// dequantizes back to 0.
func Q4GemmPackB(qt QType, dst []byte, src []float32, n, k, ld int) error {
	if !qt.valid() {
		return fmt.Errorf("%w: qtype %v", ErrUnsupportedParameter, qt)
	}

	blkLen := qt.BlkLen()
	nblocks := (k + blkLen - 1) / blkLen
	blobSize := qt.BlobSize()
	asym := qt.Asymmetric()

	for j := 0; j < n; j++ {
		for kb := 0; kb < nblocks; kb++ {
			k0 := kb * blkLen
			klen := blkLen
			if k0+klen > k {
				klen = k - k0
			}

			at := func(l int) float32 { return src[(k0+l)*ld+j] }

			min, max := float32(0), float32(0)
			if klen > 0 {
				min, max = scanMinMax(klen, at)
			}

			var scale float32
			var zp uint8
			if asym {
				scale, zp = reduceAsymmetric(min, max, Bits4)
			} else {
				scale = reduceSymmetric(min, max, Bits4)
			}
			rcp := recip(scale)

			level := func(l int) uint8 {
				if l >= klen {
					if asym {
						return zp
					}
					return 0
				}
				v := at(l)
				if asym {
					return levelAsymmetric(v, rcp, zp, Bits4)
				}
				return levelSymmetric(v, rcp, Bits4, scale == 0)
			}

			blobOff := (j*nblocks + kb) * blobSize
			blob := dst[blobOff : blobOff+blobSize]
			binary.LittleEndian.PutUint32(blob[0:4], math.Float32bits(scale))

			payloadOff := 4
			if asym {
				blob[4] = zp
				payloadOff = 5
			}
			payload := blob[payloadOff:]

			for sub := 0; sub < blkLen; sub += 32 {
				base := sub / 2
				for l := 0; l < 16; l++ {
					lo := level(sub + l)
					hi := level(sub + l + 16)
					payload[base+l] = lo | hi<<4
				}
			}
		}
	}
	return nil
}

// Q4GemmUnpackB inverts Q4GemmPackB: dst is K x N row-major (row stride ld,
// ld >= n) and is overwritten in place. Tail positions beyond the source's
// original K are not written (dst only has room for k rows).
func Q4GemmUnpackB(qt QType, dst []float32, src []byte, n, k, ld int) error {
	if !qt.valid() {
		return fmt.Errorf("%w: qtype %v", ErrUnsupportedParameter, qt)
	}

	blkLen := qt.BlkLen()
	nblocks := (k + blkLen - 1) / blkLen
	blobSize := qt.BlobSize()
	asym := qt.Asymmetric()

	for j := 0; j < n; j++ {
		for kb := 0; kb < nblocks; kb++ {
			k0 := kb * blkLen
			klen := blkLen
			if k0+klen > k {
				klen = k - k0
			}

			blobOff := (j*nblocks + kb) * blobSize
			blob := src[blobOff : blobOff+blobSize]
			scale := math.Float32frombits(binary.LittleEndian.Uint32(blob[0:4]))

			payloadOff := 4
			var zp uint8
			if asym {
				zp = blob[4]
				payloadOff = 5
			}
			payload := blob[payloadOff:]

			store := func(l int, level uint8) {
				if l >= klen {
					return
				}
				var v float32
				if asym {
					v = dequantAsymmetric(level, scale, zp)
				} else {
					v = dequantSymmetric(level, scale, Bits4)
				}
				dst[(k0+l)*ld+j] = v
			}

			for sub := 0; sub < blkLen; sub += 32 {
				base := sub / 2
				for l := 0; l < 16; l++ {
					b := payload[base+l]
					store(sub+l, b&0x0F)
					store(sub+l+16, b>>4)
				}
			}
		}
	}
	return nil
}

// scanMinMax scans n elements produced by at(0..n) and returns their range.
func scanMinMax(n int, at func(int) float32) (min, max float32) {
	min, max = at(0), at(0)
	for i := 1; i < n; i++ {
		v := at(i)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
