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

package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openChatGpts/blockquant/internal/platform"
)

// TestPackUnpackRoundTrip drives the cobra command tree the way a shell
// caller would, roundtripping a small matrix through `pack` then `unpack`
// and checking recovery within the same kind of scale/2 bound
// q4gemm_test.go uses for the package-level round trip.
func TestPackUnpackRoundTrip(t *testing.T) {
	if !platform.HasQ4GemmKernel() {
		t.Skip("no Q4Gemm kernel available for this build")
	}

	const n, k, ld = 3, 40, 3
	src := make([]float32, k*ld)
	for i := range src {
		src[i] = float32(math.Sin(float64(i))) * 3
	}

	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.f32")
	packedPath := filepath.Join(dir, "packed.bin")
	outPath := filepath.Join(dir, "out.f32")
	require.NoError(t, writeFloat32Matrix(inPath, src))

	pack := newRootCmd()
	pack.SetArgs([]string{"pack",
		"--in", inPath, "--out", packedPath,
		"--qtype", "asym", "--n", "3", "--k", "40",
	})
	require.NoError(t, pack.Execute())

	unpack := newRootCmd()
	unpack.SetArgs([]string{"unpack",
		"--in", packedPath, "--out", outPath,
		"--qtype", "asym", "--n", "3", "--k", "40",
	})
	require.NoError(t, unpack.Execute())

	got, err := readFloat32Matrix(outPath, k, ld)
	require.NoError(t, err)

	// src is bounded in [-3, 3], so any 32-wide asymmetric block's scale is
	// at most 6/15 = 0.4; half that plus slack is a safe recovery bound for
	// every element without reimplementing the package's range-reduction
	// internals in this package.
	const bound = 0.25
	for i := range src {
		assert.InDeltaf(t, src[i], got[i], bound, "i=%d", i)
	}
}
