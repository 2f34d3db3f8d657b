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

// blockwisePackCount is the number of meta-blocks a tile stacks along the
// blocked axis for 4-bit quantization: two zero points packed per byte.
const blockwisePackCount = 2

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// blockwiseAxes splits an [rows, cols] matrix into a "primary" axis (the
// one sliced into blockSize-long blocks) and a "secondary" axis (one
// independent meta-block per unit). columnwise blocks stack along rows;
// rowwise blocks stack along columns — spec.md §4.4 calls the rowwise case
// "the transpose" of the columnwise one, which is exactly this swap.
func blockwiseAxes(columnwise bool, rows, cols int) (primaryLen, secondaryLen int) {
	if columnwise {
		return rows, cols
	}
	return cols, rows
}

func blockwiseRowCol(columnwise bool, p, s int) (row, col int) {
	if columnwise {
		return p, s
	}
	return s, p
}

func blockwiseMetaRowCol(columnwise bool, metaP, s int) (metaRow, metaCol int) {
	if columnwise {
		return metaP, s
	}
	return s, metaP
}

// BlockwiseQuantMetaShape returns the shape of the scale/zero-point grid
// for a blockSize-wide blockwise quantization of a [rows, cols] matrix.
func BlockwiseQuantMetaShape(blockSize int, columnwise bool, rows, cols int) (metaRows, metaCols int) {
	primaryLen, secondaryLen := blockwiseAxes(columnwise, rows, cols)
	metaPrimary := ceilDiv(primaryLen, blockSize)
	return blockwiseMetaRowCol(columnwise, metaPrimary, secondaryLen)
}

// BlockwiseQuantizedShape returns the shape of the packed payload buffer:
// dst is indexed dst[s*qRows + p/2] where p runs over the (padded) primary
// axis and s over the secondary axis — see blockwiseAxes. For the
// columnwise case this coincides exactly with spec.md §3's
// dst[j*q_rows+i/2] (j = column, i = row); the rowwise case is the same
// formula under the row/column swap spec.md calls "the transpose".
func BlockwiseQuantizedShape(blockSize int, columnwise bool, rows, cols int) (qRows, qCols int) {
	primaryLen, secondaryLen := blockwiseAxes(columnwise, rows, cols)
	metaPrimary := ceilDiv(primaryLen, blockSize)
	qRows = ceilDiv(metaPrimary*blockSize*int(Bits4), 8)
	qCols = secondaryLen
	return qRows, qCols
}

// BlockwiseQuantizedBufferSizes returns the exact byte/element counts a
// caller must allocate before calling QuantizeBlockwise.
func BlockwiseQuantizedBufferSizes(blockSize int, columnwise bool, rows, cols int) (dataBytes, nScales, zpBytes int) {
	primaryLen, secondaryLen := blockwiseAxes(columnwise, rows, cols)
	metaPrimary := ceilDiv(primaryLen, blockSize)
	qRows, qCols := BlockwiseQuantizedShape(blockSize, columnwise, rows, cols)

	dataBytes = qRows * qCols
	metaRows, metaCols := BlockwiseQuantMetaShape(blockSize, columnwise, rows, cols)
	nScales = metaRows * metaCols
	zpBytes = ceilDiv(metaPrimary*int(Bits4), 8) * secondaryLen
	return dataBytes, nScales, zpBytes
}

// QuantizeBlockwise partitions src ([rows, cols], row stride ld) into
// blockSize-long blocks along the columnwise or rowwise axis, computes one
// scale (and, when zeroPoints is non-nil, one zero point) per block, and
// emits the column-major bit-packed layout of spec.md §4.4 into dst.
//
// zeroPoints == nil selects symmetric quantization, matching the teacher's
// nil-means-default-policy idiom elsewhere in this package (threadpool's
// nil *Pool, dispatch's nil zp slice). pool == nil runs every tile serially
// in the calling goroutine.
func QuantizeBlockwise[T Float](dst []byte, scales []T, zeroPoints []byte, src []T, blockSize int, columnwise bool, rows, cols, ld int, pool *threadpool.Pool) error {
	if blockSize <= 0 {
		return fmt.Errorf("%w: blockSize %d", ErrUnsupportedParameter, blockSize)
	}

	primaryLen, secondaryLen := blockwiseAxes(columnwise, rows, cols)
	metaPrimary := ceilDiv(primaryLen, blockSize)
	metaRows, _ := BlockwiseQuantMetaShape(blockSize, columnwise, rows, cols)
	qRows, _ := BlockwiseQuantizedShape(blockSize, columnwise, rows, cols)
	tilesPerGroup := ceilDiv(metaPrimary, blockwisePackCount)
	tileSpan := blockwisePackCount * blockSize
	asym := zeroPoints != nil

	at := func(p, s int) float32 {
		row, col := blockwiseRowCol(columnwise, p, s)
		return toF32(src[row*ld+col])
	}

	processTile := func(tileP, s int) {
		var scaleVal [blockwisePackCount]float32
		var zpVal [blockwisePackCount]uint8
		var rcp [blockwisePackCount]float32

		for kpack := 0; kpack < blockwisePackCount; kpack++ {
			metaP := tileP*blockwisePackCount + kpack
			if metaP >= metaPrimary {
				zpVal[kpack] = 8 // spec.md §9 OQ4: default zp for an out-of-range block.
				continue
			}

			p0 := metaP * blockSize
			p1 := min(p0+blockSize, primaryLen)

			var mn, mx float32
			if p1 > p0 {
				mn, mx = at(p0, s), at(p0, s)
				for p := p0 + 1; p < p1; p++ {
					v := at(p, s)
					if v < mn {
						mn = v
					}
					if v > mx {
						mx = v
					}
				}
			}

			var scale float32
			var zp uint8 = 8
			if asym {
				scale, zp = reduceAsymmetric(mn, mx, Bits4)
			} else {
				scale = reduceSymmetric(mn, mx, Bits4)
			}
			scaleVal[kpack] = scale
			zpVal[kpack] = zp
			rcp[kpack] = recip(scale)

			metaRow, metaCol := blockwiseMetaRowCol(columnwise, metaP, s)
			scales[metaCol*metaRows+metaRow] = fromF32[T](scale)
		}

		if asym {
			zpByteIdx := s*tilesPerGroup + tileP
			zeroPoints[zpByteIdx] = zpVal[0] | zpVal[1]<<4
		}

		pNominalEnd := min(tileP*tileSpan+tileSpan, metaPrimary*blockSize)
		for p := tileP * tileSpan; p < pNominalEnd; p += 2 {
			k0 := p/blockSize - tileP*blockwisePackCount
			k1 := (p+1)/blockSize - tileP*blockwisePackCount

			var lo, hi uint8
			if p < primaryLen {
				v := at(p, s)
				if asym {
					lo = levelAsymmetric(v, rcp[k0], zpVal[k0], Bits4)
				} else {
					lo = levelSymmetric(v, rcp[k0], Bits4, scaleVal[k0] == 0)
				}
			} else {
				lo = zpVal[k0]
			}
			if p+1 < primaryLen {
				v := at(p+1, s)
				if asym {
					hi = levelAsymmetric(v, rcp[k1], zpVal[k1], Bits4)
				} else {
					hi = levelSymmetric(v, rcp[k1], Bits4, scaleVal[k1] == 0)
				}
			} else {
				hi = zpVal[k1]
			}

			dst[s*qRows+p/2] = lo | hi<<4
		}
	}

	tileCount := tilesPerGroup * secondaryLen
	pool.ParallelFor(tileCount, func(start, end int) {
		for idx := start; idx < end; idx++ {
			processTile(idx/secondaryLen, idx%secondaryLen)
		}
	})
	return nil
}

// DequantizeBlockwise inverts QuantizeBlockwise, writing a dense [rows,
// cols] matrix (row stride ld implicit: dst has exactly rows*cols
// elements, row-major).
func DequantizeBlockwise[T Float](dst []T, src []byte, scales []T, zeroPoints []byte, blockSize int, columnwise bool, rows, cols int, pool *threadpool.Pool) error {
	if blockSize <= 0 {
		return fmt.Errorf("%w: blockSize %d", ErrUnsupportedParameter, blockSize)
	}

	primaryLen, secondaryLen := blockwiseAxes(columnwise, rows, cols)
	metaPrimary := ceilDiv(primaryLen, blockSize)
	metaRows, _ := BlockwiseQuantMetaShape(blockSize, columnwise, rows, cols)
	qRows, _ := BlockwiseQuantizedShape(blockSize, columnwise, rows, cols)
	asym := zeroPoints != nil
	tilesPerGroup := ceilDiv(metaPrimary, blockwisePackCount)

	processMetaBlock := func(metaP, s int) {
		metaRow, metaCol := blockwiseMetaRowCol(columnwise, metaP, s)
		scale := toF32(scales[metaCol*metaRows+metaRow])

		var zp uint8 = 8
		if asym {
			zpByteIdx := s*tilesPerGroup + metaP/blockwisePackCount
			b := zeroPoints[zpByteIdx]
			if metaP%2 == 0 {
				zp = b & 0x0F
			} else {
				zp = b >> 4
			}
		}

		p0 := metaP * blockSize
		p1 := min(p0+blockSize, primaryLen)
		for p := p0; p < p1; p++ {
			row, col := blockwiseRowCol(columnwise, p, s)
			byteIdx := s*qRows + p/2
			b := src[byteIdx]
			var level uint8
			if p%2 == 0 {
				level = b & 0x0F
			} else {
				level = b >> 4
			}
			var v float32
			if asym {
				v = dequantAsymmetric(level, scale, zp)
			} else {
				v = dequantSymmetric(level, scale, Bits4)
			}
			dst[row*cols+col] = fromF32[T](v)
		}
	}

	tileCount := metaPrimary * secondaryLen
	pool.ParallelFor(tileCount, func(start, end int) {
		for idx := start; idx < end; idx++ {
			processMetaBlock(idx/secondaryLen, idx%secondaryLen)
		}
	})
	return nil
}
