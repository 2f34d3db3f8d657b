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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openChatGpts/blockquant/blockquant"
)

func parseQType(s string) (blockquant.QType, error) {
	switch s {
	case "sym":
		return blockquant.TypeSYM, nil
	case "asym":
		return blockquant.TypeASYM, nil
	case "sym64":
		return blockquant.TypeSYM64, nil
	case "sym128":
		return blockquant.TypeSYM128, nil
	default:
		return 0, fmt.Errorf("unknown qtype %q (want sym, asym, sym64 or sym128)", s)
	}
}

func newPackCmd() *cobra.Command {
	var in, out, qtype string
	var n, k, ld int

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Pack a K x N float32 matrix into a Q4Gemm blob",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ld == 0 {
				ld = n
			}
			qt, err := parseQType(qtype)
			if err != nil {
				return err
			}
			src, err := readFloat32Matrix(in, k, ld)
			if err != nil {
				return err
			}
			size := blockquant.Q4GemmPackBSize(qt, n, k)
			if size == 0 {
				return fmt.Errorf("no Q4Gemm kernel available for this build, or invalid n/k/qtype")
			}
			dst := make([]byte, size)
			if err := blockquant.Q4GemmPackB(qt, dst, src, n, k, ld); err != nil {
				return err
			}
			return writeBytes(out, dst)
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "input raw float32 matrix file (required)")
	cmd.Flags().StringVar(&out, "out", "", "output packed blob file (required)")
	cmd.Flags().StringVar(&qtype, "qtype", "sym", "sym, asym, sym64 or sym128")
	cmd.Flags().IntVar(&n, "n", 0, "number of columns of B (required)")
	cmd.Flags().IntVar(&k, "k", 0, "number of rows of B (required)")
	cmd.Flags().IntVar(&ld, "ld", 0, "row stride of the input matrix (default: n)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("n")
	_ = cmd.MarkFlagRequired("k")

	return cmd
}

func newUnpackCmd() *cobra.Command {
	var in, out, qtype string
	var n, k, ld int

	cmd := &cobra.Command{
		Use:   "unpack",
		Short: "Unpack a Q4Gemm blob back into a K x N float32 matrix",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ld == 0 {
				ld = n
			}
			qt, err := parseQType(qtype)
			if err != nil {
				return err
			}
			src, err := readBytes(in)
			if err != nil {
				return err
			}
			dst := make([]float32, k*ld)
			if err := blockquant.Q4GemmUnpackB(qt, dst, src, n, k, ld); err != nil {
				return err
			}
			return writeFloat32Matrix(out, dst)
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "input packed blob file (required)")
	cmd.Flags().StringVar(&out, "out", "", "output raw float32 matrix file (required)")
	cmd.Flags().StringVar(&qtype, "qtype", "sym", "sym, asym, sym64 or sym128")
	cmd.Flags().IntVar(&n, "n", 0, "number of columns of B (required)")
	cmd.Flags().IntVar(&k, "k", 0, "number of rows of B (required)")
	cmd.Flags().IntVar(&ld, "ld", 0, "row stride of the output matrix (default: n)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("n")
	_ = cmd.MarkFlagRequired("k")

	return cmd
}
