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
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// readFloat32Matrix reads a raw little-endian float32 file expected to hold
// exactly rows*cols elements, row-major.
func readFloat32Matrix(path string, rows, cols int) ([]float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	want := rows * cols * 4
	if len(raw) != want {
		return nil, fmt.Errorf("%s: %d bytes, want %d (rows=%d cols=%d)", path, len(raw), want, rows, cols)
	}
	out := make([]float32, rows*cols)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

// writeFloat32Matrix writes m as a raw little-endian float32 file.
func writeFloat32Matrix(path string, m []float32) error {
	raw := make([]byte, len(m)*4)
	for i, v := range m {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return os.WriteFile(path, raw, 0o644)
}

func writeBytes(path string, b []byte) error {
	return os.WriteFile(path, b, 0o644)
}

func readBytes(path string) ([]byte, error) {
	return os.ReadFile(path)
}
