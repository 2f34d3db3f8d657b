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

// BitWidth is a quantization bit width. Only 2, 4 and 8 are meaningful:
// 4 is used throughout the Q4Gemm and blockwise families, 2 is additionally
// supported by the QDQ family.
type BitWidth int

const (
	Bits2 BitWidth = 2
	Bits4 BitWidth = 4
	Bits8 BitWidth = 8
)

// Max returns (1<<b)-1, the largest representable unsigned quantization level.
func (b BitWidth) Max() int {
	return (1 << uint(b)) - 1
}

// Mid returns 1<<(b-1), the signed-zero center used by symmetric quantization.
func (b BitWidth) Mid() int {
	return 1 << uint(b-1)
}

// PackCount returns the number of quantized elements that share one output
// byte: 8/b for b in {2,4,8}. Any other bit width is not supported by this
// package and PackCount returns 0 to signal that.
func (b BitWidth) PackCount() int {
	switch b {
	case Bits2, Bits4, Bits8:
		return 8 / int(b)
	default:
		return 0
	}
}

// ShiftBits returns log2(PackCount()), the shift used to go from a flat
// element index to a byte index in a row-packed QDQ buffer (spec: 1 for
// 4-bit, 2 for 2-bit).
func (b BitWidth) ShiftBits() int {
	switch b.PackCount() {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	case 8:
		return 3
	default:
		return 0
	}
}

// QType names one of the four Q4Gemm block descriptors. Each names only a
// byte layout (scale type, optional zero point, payload length); no
// quantization semantics live here.
type QType int

const (
	// TypeSYM packs 32-element symmetric blocks: 4-byte scale + 16-byte payload.
	TypeSYM QType = iota
	// TypeASYM packs 32-element asymmetric blocks: 4-byte scale + 1-byte zero point + 16-byte payload.
	TypeASYM
	// TypeSYM64 packs 64-element symmetric blocks: 4-byte scale + 32-byte payload.
	TypeSYM64
	// TypeSYM128 packs 128-element symmetric blocks: 4-byte scale + 64-byte payload.
	TypeSYM128
)

// String renders the QType the way it appears in spec and test tables.
func (qt QType) String() string {
	switch qt {
	case TypeSYM:
		return "SYM"
	case TypeASYM:
		return "ASYM"
	case TypeSYM64:
		return "SYM64"
	case TypeSYM128:
		return "SYM128"
	default:
		return "unknown"
	}
}

// BlkLen is the number of K values covered by one block of this type.
func (qt QType) BlkLen() int {
	switch qt {
	case TypeSYM, TypeASYM:
		return 32
	case TypeSYM64:
		return 64
	case TypeSYM128:
		return 128
	default:
		return 0
	}
}

// Asymmetric reports whether this block type carries a stored zero point.
func (qt QType) Asymmetric() bool {
	return qt == TypeASYM
}

// BlobSize is the total byte size of one block: 4-byte scale, an optional
// 1-byte zero point, and BlkLen/2 bytes of packed nibble payload.
func (qt QType) BlobSize() int {
	size := 4 + qt.BlkLen()/2
	if qt.Asymmetric() {
		size++
	}
	return size
}

// valid reports whether qt is one of the four known descriptors.
func (qt QType) valid() bool {
	switch qt {
	case TypeSYM, TypeASYM, TypeSYM64, TypeSYM128:
		return true
	default:
		return false
	}
}
