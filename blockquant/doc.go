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

// Package blockquant implements blockwise low-bit weight quantization and
// dequantization for dense matrices, compatible with three wire formats:
//
//   - the Q4Gemm packed family (symmetric and asymmetric 4-bit GEMM
//     packing), where each K-length column is sliced into fixed-length
//     sub-blocks carrying their own scale (and, for asymmetric blocks, zero
//     point);
//   - the generic blockwise layout, a column-major, bit-packed, transposed
//     output consumed by a downstream matmul kernel;
//   - the QDQ layout, which preserves the input's row-major shape and packs
//     along rows for graph-level Quantize/Dequantize operator pairs.
//
// All entry points operate on caller-owned buffers. None allocate on the
// hot path, and none retain state across calls. A *threadpool.Pool may be
// supplied to parallelize the per-tile scan/pack work; a nil pool runs the
// identical per-tile logic serially.
package blockquant
