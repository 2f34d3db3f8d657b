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

// Package platform is the one piece of read-only global state blockquant
// depends on: a capability probe standing in for the platform dispatch
// table ("GetMlasPlatform().FpQ4GemmDispatch" in the reference
// implementation this package's companion spec distills) that gates
// whether a Q4Gemm GEMM kernel exists for the current build. The actual
// SIMD kernels that would *consume* a packed buffer are out of scope for
// this module (see package blockquant's doc comment); this package only
// answers "does one exist for this process", which is the information
// Q4GemmPackBSize needs to decide whether to report 0.
package platform

import "golang.org/x/sys/cpu"

// Level names an instruction-set tier, adapted from go-highway's internal
// CPU-feature diagnostic (internal/cpuinfo) to the narrower question this
// package answers.
type Level int

const (
	LevelScalar Level = iota
	LevelAVX2
	LevelAVX512
	LevelNEON
)

func (l Level) String() string {
	switch l {
	case LevelAVX2:
		return "avx2"
	case LevelAVX512:
		return "avx512"
	case LevelNEON:
		return "neon"
	default:
		return "scalar"
	}
}

// CurrentLevel reports the best instruction-set tier detected on this
// machine. It never panics and never depends on build tags — golang.org/x/sys/cpu
// exposes feature bits for the running binary's GOARCH unconditionally,
// falling back to all-false structs on architectures it doesn't know.
func CurrentLevel() Level {
	if cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW {
		return LevelAVX512
	}
	if cpu.X86.HasAVX2 && cpu.X86.HasFMA {
		return LevelAVX2
	}
	if cpu.ARM64.HasASIMD {
		return LevelNEON
	}
	return LevelScalar
}

// HasQ4GemmKernel reports whether this build target has a matching Q4Gemm
// GEMM kernel. Onnxruntime's MLAS ships Q4Gemm kernels for AVX2/AVX512 and
// NEON only; every other tier has no kernel, matching the spec's
// "unsupported platform kernel" failure mode.
func HasQ4GemmKernel() bool {
	switch CurrentLevel() {
	case LevelAVX2, LevelAVX512, LevelNEON:
		return true
	default:
		return false
	}
}
