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

import "github.com/x448/float16"

// Float is the set of element types the quantizers are specialized over.
// float32 is the common case; float16.Float16 lets callers quantize model
// weights that are already stored in half precision without an extra
// widening pass over the whole matrix.
type Float interface {
	~float32 | float16.Float16
}

// toF32 widens a Float element to float32 for arithmetic. float32 widens
// to itself; float16.Float16 goes through its own conversion table.
func toF32[T Float](v T) float32 {
	switch x := any(v).(type) {
	case float32:
		return x
	case float16.Float16:
		return x.Float32()
	default:
		panic("blockquant: unreachable Float type")
	}
}

// fromF32 narrows a float32 result back to T.
func fromF32[T Float](f float32) T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(f).(T)
	case float16.Float16:
		return any(float16.Fromfloat32(f)).(T)
	default:
		panic("blockquant: unreachable Float type")
	}
}
