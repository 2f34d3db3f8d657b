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

// Command blockquant packs and unpacks weight matrices against the three
// wire formats package blockquant implements, and probes which Q4Gemm
// kernel tier (if any) the current build would dispatch to — the CLI
// analogue of internal/cpuinfo's diagnostic role in the teacher repo this
// module was adapted from.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blockquant",
		Short:         "Pack, unpack, quantize and dequantize LLM weight matrices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newPackCmd(),
		newUnpackCmd(),
		newQuantizeCmd(),
		newDequantizeCmd(),
		newProbeCmd(),
	)
	return root
}
