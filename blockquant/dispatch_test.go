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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizeBlockwiseDispatchUnknownBlockSizeIsNoop(t *testing.T) {
	dst := []byte{0xAB}
	err := QuantizeBlockwiseDispatch[float32](dst, nil, nil, nil, 17, true, 4, 1, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), dst[0], "unrecognized blockSize must not touch dst")
}

func TestQDQQuantizeDispatchUnknownQbitsIsNoop(t *testing.T) {
	dst := []byte{0xCD}
	err := QDQQuantizeDispatch[float32](dst, nil, nil, nil, 1, 4, 32, Bits8, nil)
	require.NoError(t, err)
	assert.Equal(t, byte(0xCD), dst[0])
}

func TestQuantizeBlockwiseDispatchDelegates(t *testing.T) {
	const rows, cols, blockSize = 32, 2, 32
	src := make([]float32, rows*cols)
	for i := range src {
		src[i] = float32(i%13) - 6
	}

	dataBytes, nScales, _ := BlockwiseQuantizedBufferSizes(blockSize, true, rows, cols)
	viaDispatch := make([]byte, dataBytes)
	direct := make([]byte, dataBytes)
	scalesA := make([]float32, nScales)
	scalesB := make([]float32, nScales)

	require.NoError(t, QuantizeBlockwiseDispatch[float32](viaDispatch, scalesA, nil, src, blockSize, true, rows, cols, cols, nil))
	require.NoError(t, QuantizeBlockwise[float32](direct, scalesB, nil, src, blockSize, true, rows, cols, cols, nil))

	assert.Equal(t, direct, viaDispatch)
	assert.Equal(t, scalesB, scalesA)
}
