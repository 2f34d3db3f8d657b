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

import "math"

// reduceSymmetric computes the scale for a symmetric block given the
// block's scanned [min, max] range.
//
//	m     = whichever of min, max has the larger magnitude (max on ties)
//	scale = |m| / mid
//
// mid is both the quantization midpoint and the implicit zero point for
// symmetric blocks (no zp is stored). A block that is bit-exactly the
// single value 0 produces scale == 0.
//
// Note on sign: spec.md's prose formula (scale = m / -mid, m signed) can
// yield a negative scale whenever the larger-magnitude extreme is
// positive, which would violate the "every scale is finite and >= 0"
// invariant and does not reproduce the worked byte-exact example in
// spec.md §8 (an ascending all-positive block, scale == +4.0). This
// reduces the magnitude, not the sign, of m — see DESIGN.md.
func reduceSymmetric(min, max float32, qbits BitWidth) float32 {
	amax := max
	if -min > amax {
		amax = -min
	}
	if amax == 0 {
		return 0
	}
	return amax / float32(qbits.Mid())
}

// reduceAsymmetric computes (scale, zp) for an asymmetric block given the
// block's scanned [min, max] range. zp is clamped to [0, maxQuant] with
// explicit branches per value, not a generic saturating clamp helper — spec
// calls this branch out as one reimplementers must keep explicit.
func reduceAsymmetric(min, max float32, qbits BitWidth) (scale float32, zp uint8) {
	if min > 0 {
		min = 0
	}
	if max < 0 {
		max = 0
	}
	maxQuant := float32(qbits.Max())

	scale = (max - min) / maxQuant

	var zpFP float32
	if scale == 0 {
		zpFP = min
	} else {
		zpFP = -min / scale
	}

	rounded := float32(math.RoundToEven(float64(zpFP)))
	switch {
	case rounded < 0:
		zp = 0
	case rounded > maxQuant:
		zp = uint8(qbits.Max())
	default:
		zp = uint8(rounded)
	}
	return scale, zp
}

// recip returns 1/scale, or 0 if scale is the degenerate all-zero-block
// value. Every quantize loop in this package funnels through this instead
// of dividing inline so the zero-scale case can never produce Inf/NaN.
func recip(scale float32) float32 {
	if scale == 0 {
		return 0
	}
	return 1 / scale
}

// levelSymmetric quantizes v against a symmetric block's reciprocal scale,
// rounding to nearest (ties to even) and clamping to the bit width's
// representable range. scaleZero must be true iff the block's scale was
// exactly 0 (the all-zero-block case), in which case every level is 0
// regardless of v — see reduceSymmetric.
func levelSymmetric(v, rcp float32, qbits BitWidth, scaleZero bool) uint8 {
	if scaleZero {
		return 0
	}
	level := math.RoundToEven(float64(v)*float64(rcp)) + float64(qbits.Mid())
	return clampLevel(level, qbits.Max())
}

// levelAsymmetric quantizes v against an asymmetric block's reciprocal
// scale and stored zero point.
func levelAsymmetric(v, rcp float32, zp uint8, qbits BitWidth) uint8 {
	level := math.RoundToEven(float64(v)*float64(rcp)) + float64(zp)
	return clampLevel(level, qbits.Max())
}

func clampLevel(level float64, maxQuant int) uint8 {
	switch {
	case level < 0:
		return 0
	case level > float64(maxQuant):
		return uint8(maxQuant)
	default:
		return uint8(level)
	}
}

// dequantSymmetric inverts levelSymmetric: subtract the implicit mid zero
// point, then scale.
func dequantSymmetric(level uint8, scale float32, qbits BitWidth) float32 {
	return (float32(level) - float32(qbits.Mid())) * scale
}

// dequantAsymmetric inverts levelAsymmetric: subtract the stored zero
// point, then scale.
func dequantAsymmetric(level uint8, scale float32, zp uint8) float32 {
	return (float32(level) - float32(zp)) * scale
}
