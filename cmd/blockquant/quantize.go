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

func newQuantizeCmd() *cobra.Command {
	var in, outData, outScales, outZP, family string
	var rows, cols, blockSize, qbitsFlag int
	var columnwise, asym bool

	cmd := &cobra.Command{
		Use:   "quantize",
		Short: "Quantize a rows x cols float32 matrix with the blockwise or QDQ family",
		RunE: func(cmd *cobra.Command, args []string) error {
			qbits := blockquant.BitWidth(qbitsFlag)
			src, err := readFloat32Matrix(in, rows, cols)
			if err != nil {
				return err
			}

			var dataBytes, nScales, zpBytes int
			switch family {
			case "blockwise":
				dataBytes, nScales, zpBytes = blockquant.BlockwiseQuantizedBufferSizes(blockSize, columnwise, rows, cols)
			case "qdq":
				dataBytes, nScales, zpBytes = blockquant.QDQQuantizedBufferSizes(rows, cols, blockSize, qbits)
			default:
				return fmt.Errorf("unknown family %q (want blockwise or qdq)", family)
			}

			dst := make([]byte, dataBytes)
			scales := make([]float32, nScales)
			var zp []byte
			if asym {
				zp = make([]byte, zpBytes)
			}

			switch family {
			case "blockwise":
				err = blockquant.QuantizeBlockwiseDispatch[float32](dst, scales, zp, src, blockSize, columnwise, rows, cols, cols, nil)
			case "qdq":
				err = blockquant.QDQQuantizeDispatch[float32](dst, scales, zp, src, rows, cols, blockSize, qbits, nil)
			}
			if err != nil {
				return err
			}

			if err := writeBytes(outData, dst); err != nil {
				return err
			}
			if err := writeFloat32Matrix(outScales, scales); err != nil {
				return err
			}
			if asym && outZP != "" {
				if err := writeBytes(outZP, zp); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "input raw float32 matrix file (required)")
	cmd.Flags().StringVar(&outData, "out-data", "", "output packed payload file (required)")
	cmd.Flags().StringVar(&outScales, "out-scales", "", "output raw float32 scales file (required)")
	cmd.Flags().StringVar(&outZP, "out-zp", "", "output zero-point bytes file (required when --asym)")
	cmd.Flags().StringVar(&family, "family", "blockwise", "blockwise or qdq")
	cmd.Flags().IntVar(&rows, "rows", 0, "matrix row count (required)")
	cmd.Flags().IntVar(&cols, "cols", 0, "matrix column count (required)")
	cmd.Flags().IntVar(&blockSize, "block-size", 32, "quantization block size")
	cmd.Flags().IntVar(&qbitsFlag, "qbits", 4, "2 or 4 (qdq family only; blockwise is always 4)")
	cmd.Flags().BoolVar(&columnwise, "columnwise", true, "block along columns instead of rows (blockwise family only)")
	cmd.Flags().BoolVar(&asym, "asym", false, "use asymmetric (zero-point) quantization")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out-data")
	_ = cmd.MarkFlagRequired("out-scales")
	_ = cmd.MarkFlagRequired("rows")
	_ = cmd.MarkFlagRequired("cols")

	return cmd
}

func newDequantizeCmd() *cobra.Command {
	var inData, inScales, inZP, out, family string
	var rows, cols, blockSize, qbitsFlag int
	var columnwise bool

	cmd := &cobra.Command{
		Use:   "dequantize",
		Short: "Dequantize a packed payload back into a rows x cols float32 matrix",
		RunE: func(cmd *cobra.Command, args []string) error {
			qbits := blockquant.BitWidth(qbitsFlag)

			data, err := readBytes(inData)
			if err != nil {
				return err
			}
			var nScales int
			switch family {
			case "blockwise":
				_, nScales, _ = blockquant.BlockwiseQuantizedBufferSizes(blockSize, columnwise, rows, cols)
			case "qdq":
				_, nScales, _ = blockquant.QDQQuantizedBufferSizes(rows, cols, blockSize, qbits)
			default:
				return fmt.Errorf("unknown family %q (want blockwise or qdq)", family)
			}
			scales, err := readFloat32Matrix(inScales, nScales, 1)
			if err != nil {
				return err
			}
			var zp []byte
			if inZP != "" {
				zp, err = readBytes(inZP)
				if err != nil {
					return err
				}
			}

			dst := make([]float32, rows*cols)
			switch family {
			case "blockwise":
				err = blockquant.DequantizeBlockwiseDispatch[float32](dst, data, scales, zp, blockSize, columnwise, rows, cols, nil)
			case "qdq":
				err = blockquant.QDQDequantizeDispatch[float32](dst, data, scales, zp, rows, cols, blockSize, qbits, nil)
			}
			if err != nil {
				return err
			}
			return writeFloat32Matrix(out, dst)
		},
	}

	cmd.Flags().StringVar(&inData, "in-data", "", "input packed payload file (required)")
	cmd.Flags().StringVar(&inScales, "in-scales", "", "input raw float32 scales file (required)")
	cmd.Flags().StringVar(&inZP, "in-zp", "", "input zero-point bytes file (omit for symmetric)")
	cmd.Flags().StringVar(&out, "out", "", "output raw float32 matrix file (required)")
	cmd.Flags().StringVar(&family, "family", "blockwise", "blockwise or qdq")
	cmd.Flags().IntVar(&rows, "rows", 0, "matrix row count (required)")
	cmd.Flags().IntVar(&cols, "cols", 0, "matrix column count (required)")
	cmd.Flags().IntVar(&blockSize, "block-size", 32, "quantization block size")
	cmd.Flags().IntVar(&qbitsFlag, "qbits", 4, "2 or 4 (qdq family only; blockwise is always 4)")
	cmd.Flags().BoolVar(&columnwise, "columnwise", true, "block along columns instead of rows (blockwise family only)")
	_ = cmd.MarkFlagRequired("in-data")
	_ = cmd.MarkFlagRequired("in-scales")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("rows")
	_ = cmd.MarkFlagRequired("cols")

	return cmd
}
