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
	"github.com/samber/lo"

	"github.com/openChatGpts/blockquant/blockquant/threadpool"
)

// legacyBlockSizes is the fixed set of block sizes the original blockwise
// kernel this package generalizes was compiled for. blockSize values
// outside this set are not a caller error: they produce a silent no-op.
// BlockwiseQuantizedBufferSizes does not consult this set: it returns
// non-zero sizes for any positive blockSize, including ones the dispatch
// entries skip.
var legacyBlockSizes = []int{16, 32, 64, 128, 256}

// qdqQbits is the set of bit widths the QDQ dispatch entry accepts. The
// legacy blockwise dispatch only ever shipped a 4-bit kernel; QDQ adds 2.
var qdqQbits = []BitWidth{Bits2, Bits4}

// QuantizeBlockwiseDispatch is the fixed-function entry point historical
// callers reach for: it validates blockSize against the kernel table this
// package was built against (4-bit only) before delegating to
// QuantizeBlockwise. An unrecognized blockSize is a silent no-op: dst,
// scales and zeroPoints are left untouched and nil is returned.
func QuantizeBlockwiseDispatch[T Float](dst []byte, scales []T, zeroPoints []byte, src []T, blockSize int, columnwise bool, rows, cols, ld int, pool *threadpool.Pool) error {
	if !lo.Contains(legacyBlockSizes, blockSize) {
		return nil
	}
	return QuantizeBlockwise[T](dst, scales, zeroPoints, src, blockSize, columnwise, rows, cols, ld, pool)
}

// DequantizeBlockwiseDispatch mirrors QuantizeBlockwiseDispatch.
func DequantizeBlockwiseDispatch[T Float](dst []T, src []byte, scales []T, zeroPoints []byte, blockSize int, columnwise bool, rows, cols int, pool *threadpool.Pool) error {
	if !lo.Contains(legacyBlockSizes, blockSize) {
		return nil
	}
	return DequantizeBlockwise[T](dst, src, scales, zeroPoints, blockSize, columnwise, rows, cols, pool)
}

// QDQQuantizeDispatch validates blockSize and qbits against the QDQ kernel
// table (2- and 4-bit, same block sizes as the legacy dispatch) before
// delegating to QDQQuantizeColumnWise.
func QDQQuantizeDispatch[T Float](dst []byte, scales []T, zeroPoints []byte, src []T, rows, cols, blockSize int, qbits BitWidth, pool *threadpool.Pool) error {
	if !lo.Contains(legacyBlockSizes, blockSize) || !lo.Contains(qdqQbits, qbits) {
		return nil
	}
	return QDQQuantizeColumnWise[T](dst, scales, zeroPoints, src, rows, cols, blockSize, qbits, pool)
}

// QDQDequantizeDispatch mirrors QDQQuantizeDispatch.
func QDQDequantizeDispatch[T Float](dst []T, src []byte, scales []T, zeroPoints []byte, rows, cols, blockSize int, qbits BitWidth, pool *threadpool.Pool) error {
	if !lo.Contains(legacyBlockSizes, blockSize) || !lo.Contains(qdqQbits, qbits) {
		return nil
	}
	return QDQDequantizeColumnWise[T](dst, src, scales, zeroPoints, rows, cols, blockSize, qbits, pool)
}
