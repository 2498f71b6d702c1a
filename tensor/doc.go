// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the backend-neutral tensor types used by Born Router.
//
// # Overview
//
// This package provides:
//   - Shape, DataType and Kind (float, int, bool)
//   - Data: the canonical in-process transfer form (dtype, shape, little-endian bytes)
//   - Pending and ReadSync: the eventual result of a backend read and its synchronous drain
//   - DeviceID: device kind and ordinal
//   - RawTensor: reference-counted host storage
//
// # Basic Usage
//
//	data, err := tensor.FromFloat32s([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(data.Float32s()) // [1 2 3 4]
//
// # Synchronous Drain
//
// Backends with asynchronous reads (GPU mapping, device queues) return an
// incomplete Pending. ReadSync waits for it on platforms that can block.
// On js/wasm and wasip1, where waiting would stall the only thread, ReadSync
// returns ErrBlockingUnsupported for reads that have not finished yet.
//
// Data has no serialized form. It exists only while a tensor crosses from one
// backend to another.
package tensor
