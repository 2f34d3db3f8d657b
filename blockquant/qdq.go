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
	"fmt"

	"github.com/openChatGpts/blockquant/blockquant/threadpool"
)

// QDQQuantizedBufferSizes returns the exact byte/element counts a caller
// must allocate before calling QDQQuantizeColumnWise: payload bytes, one
// scale per (meta-row, column), and, for the asymmetric case, pack_count
// zero points per byte — the QDQ-family counterpart to
// BlockwiseQuantizedBufferSizes.
func QDQQuantizedBufferSizes(rows, cols, blockSize int, qbits BitWidth) (dataBytes, nScales, zpBytes int) {
	packCount := qbits.PackCount()
	if packCount == 0 {
		return 0, 0, 0
	}
	metaRows := ceilDiv(rows, blockSize)
	dataBytes = rows * cols / packCount
	nScales = metaRows * cols
	zpBytes = metaRows * cols / packCount
	return dataBytes, nScales, zpBytes
}

// QDQQuantizeColumnWise quantizes src ([rows, cols], row-major) into a
// buffer that keeps src's logical [rows, cols] shape but packs pack_count
// adjacent columns of each row into one byte (pack_count = 8/qbits). cols
// must be a multiple of pack_count.
//
// scales is row-major [ceil(rows/blockSize), cols]; zeroPoints, when
// non-nil, matches that shape but packs pack_count zero points per byte —
// the same pack_count columns a payload byte covers share one zp byte.
func QDQQuantizeColumnWise[T Float](dst []byte, scales []T, zeroPoints []byte, src []T, rows, cols, blockSize int, qbits BitWidth, pool *threadpool.Pool) error {
	packCount := qbits.PackCount()
	if packCount == 0 {
		return fmt.Errorf("%w: qbits %d", ErrUnsupportedParameter, qbits)
	}
	if cols%packCount != 0 {
		return fmt.Errorf("%w: cols %d not a multiple of pack_count %d", ErrInvalidShape, cols, packCount)
	}
	if blockSize <= 0 {
		return fmt.Errorf("%w: blockSize %d", ErrUnsupportedParameter, blockSize)
	}

	metaRows := ceilDiv(rows, blockSize)
	colGroups := cols / packCount
	shiftBits := qbits.ShiftBits()
	asym := zeroPoints != nil

	processGroup := func(metaRow, colGroup int) {
		r0 := metaRow * blockSize
		r1 := min(r0+blockSize, rows)
		base := colGroup * packCount

		var scaleVal, rcp [4]float32
		var zpVal [4]uint8

		for kk := 0; kk < packCount; kk++ {
			col := base + kk

			var mn, mx float32
			if r1 > r0 {
				mn, mx = toF32(src[r0*cols+col]), toF32(src[r0*cols+col])
				for r := r0 + 1; r < r1; r++ {
					v := toF32(src[r*cols+col])
					if v < mn {
						mn = v
					}
					if v > mx {
						mx = v
					}
				}
			}

			var scale float32
			var zp uint8
			if asym {
				scale, zp = reduceAsymmetric(mn, mx, qbits)
			} else {
				scale = reduceSymmetric(mn, mx, qbits)
				zp = uint8(qbits.Mid())
			}
			scaleVal[kk] = scale
			zpVal[kk] = zp
			rcp[kk] = recip(scale)
			scales[metaRow*cols+col] = fromF32[T](scale)
		}

		if asym {
			var b byte
			for kk := 0; kk < packCount; kk++ {
				b |= zpVal[kk] << uint(kk*int(qbits))
			}
			zeroPoints[(metaRow*cols+base)>>shiftBits] = b
		}

		for r := r0; r < r1; r++ {
			var b byte
			for kk := 0; kk < packCount; kk++ {
				col := base + kk
				v := toF32(src[r*cols+col])
				var level uint8
				if asym {
					level = levelAsymmetric(v, rcp[kk], zpVal[kk], qbits)
				} else {
					level = levelSymmetric(v, rcp[kk], qbits, scaleVal[kk] == 0)
				}
				b |= level << uint(kk*int(qbits))
			}
			dst[(r*cols+base)>>shiftBits] = b
		}
	}

	tileCount := metaRows * colGroups
	pool.ParallelFor(tileCount, func(start, end int) {
		for idx := start; idx < end; idx++ {
			processGroup(idx/colGroups, idx%colGroups)
		}
	})
	return nil
}

// QDQDequantizeColumnWise inverts QDQQuantizeColumnWise.
func QDQDequantizeColumnWise[T Float](dst []T, src []byte, scales []T, zeroPoints []byte, rows, cols, blockSize int, qbits BitWidth, pool *threadpool.Pool) error {
	packCount := qbits.PackCount()
	if packCount == 0 {
		return fmt.Errorf("%w: qbits %d", ErrUnsupportedParameter, qbits)
	}
	if cols%packCount != 0 {
		return fmt.Errorf("%w: cols %d not a multiple of pack_count %d", ErrInvalidShape, cols, packCount)
	}
	if blockSize <= 0 {
		return fmt.Errorf("%w: blockSize %d", ErrUnsupportedParameter, blockSize)
	}

	metaRows := ceilDiv(rows, blockSize)
	colGroups := cols / packCount
	shiftBits := qbits.ShiftBits()
	mask := byte(qbits.Max())
	asym := zeroPoints != nil

	processGroup := func(metaRow, colGroup int) {
		r0 := metaRow * blockSize
		r1 := min(r0+blockSize, rows)
		base := colGroup * packCount

		var scaleVal [4]float32
		var zpVal [4]uint8
		for kk := 0; kk < packCount; kk++ {
			scaleVal[kk] = toF32(scales[metaRow*cols+base+kk])
		}
		if asym {
			b := zeroPoints[(metaRow*cols+base)>>shiftBits]
			for kk := 0; kk < packCount; kk++ {
				zpVal[kk] = (b >> uint(kk*int(qbits))) & mask
			}
		} else {
			for kk := 0; kk < packCount; kk++ {
				zpVal[kk] = uint8(qbits.Mid())
			}
		}

		for r := r0; r < r1; r++ {
			b := src[(r*cols+base)>>shiftBits]
			for kk := 0; kk < packCount; kk++ {
				col := base + kk
				level := (b >> uint(kk*int(qbits))) & mask
				var v float32
				if asym {
					v = dequantAsymmetric(level, scaleVal[kk], zpVal[kk])
				} else {
					v = dequantSymmetric(level, scaleVal[kk], qbits)
				}
				dst[r*cols+col] = fromF32[T](v)
			}
		}
	}

	tileCount := metaRows * colGroups
	pool.ParallelFor(tileCount, func(start, end int) {
		for idx := start; idx < end; idx++ {
			processGroup(idx/colGroups, idx%colGroups)
		}
	})
	return nil
}

// QDQQuantizeRowWise is declared per spec.md's interface table but the
// source this spec distills from throws "not implemented" for it, and
// spec.md §9 OQ2 confirms no behavior is mandated here.
func QDQQuantizeRowWise[T Float](dst []byte, scales []T, zeroPoints []byte, src []T, rows, cols, blockSize int, qbits BitWidth, pool *threadpool.Pool) error {
	return ErrNotImplemented
}

// QDQTranspose converts a QDQ row-major row-packed payload (spec.md §4.5)
// into the column-major payload BlockwiseQuantizedShape describes (spec.md
// §4.4), for the same blockSize on both sides. Only qbits == Bits4 is
// supported: the blockwise destination format is fixed at 4 bits (spec.md
// §4.4), so a 2-bit QDQ source has no well-defined blockwise target.
//
// scales and zero points are not touched here — spec.md describes this
// operation purely in terms of the packed nibble payload ("treat nibbles
// as opaque bits"); spec.md §9 OQ1 leaves the bit-shuffling algorithm
// itself to the implementer, which this function resolves by reading each
// logical (row, col) code from the QDQ layout and writing it to the same
// (row, col) position in the blockwise layout.
func QDQTranspose(dst []byte, src []byte, rows, cols, blockSize int, qbits BitWidth) error {
	if qbits != Bits4 {
		return fmt.Errorf("%w: qbits %d (blockwise destination is fixed at 4 bits)", ErrUnsupportedParameter, qbits)
	}
	packCount := qbits.PackCount()
	if cols%packCount != 0 {
		return fmt.Errorf("%w: cols %d not a multiple of pack_count %d", ErrInvalidShape, cols, packCount)
	}

	colBytes := cols / packCount
	shiftBits := qbits.ShiftBits()
	mask := byte(qbits.Max())
	qRows, _ := BlockwiseQuantizedShape(blockSize, true, rows, cols)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			qdqIdx := row*colBytes + (col >> shiftBits)
			code := (src[qdqIdx] >> uint((col%packCount)*int(qbits))) & mask

			outIdx := col*qRows + row/2
			if row%2 == 0 {
				dst[outIdx] = (dst[outIdx] &^ 0x0F) | code
			} else {
				dst[outIdx] = (dst[outIdx] &^ 0xF0) | (code << 4)
			}
		}
	}
	return nil
}
