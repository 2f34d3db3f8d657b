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

import "errors"

// Sentinel errors for the failure kinds this package can report. Size
// helpers never return an error; they signal "unsupported" by returning 0
// and the caller is expected to check (spec: "Callers must check sizes").
var (
	// ErrUnsupportedParameter is returned when a compute entry point is
	// asked to operate on a bit width or block size it does not dispatch.
	ErrUnsupportedParameter = errors.New("blockquant: unsupported parameter")

	// ErrInvalidShape is returned when the caller's matrix shape violates a
	// hard precondition, e.g. a QDQ column count that is not a multiple of
	// the format's pack count.
	ErrInvalidShape = errors.New("blockquant: invalid shape")

	// ErrNotImplemented is returned by operations the spec reserves a name
	// for but does not mandate a behavior for (row-wise QDQ quantization).
	ErrNotImplemented = errors.New("blockquant: not implemented")
)
