// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the host backend for Born Router.
//
// # Overview
//
// Tensors live in reference-counted host buffers:
//   - All data types are kept at their native width
//   - Reads complete immediately (IntoData returns a ready Pending)
//   - Several logical host devices (WithDevices), moves between them copy
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/router/backend/cpu"
//	    "github.com/born-ml/router/tensor"
//	)
//
//	func main() {
//	    host := cpu.New(cpu.WithDevices(2))
//	    h, err := host.FromInt64s([]int64{1, 2, 3}, tensor.Shape{3}, cpu.Device{Index: 0})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    data, _ := host.Read(h)
//	    fmt.Println(data.Int64s())
//	}
//
// # Thread Safety
//
// The backend is safe for concurrent use. A handle is owned by one caller at
// a time.
package cpu
