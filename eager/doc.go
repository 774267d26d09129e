// Copyright 2026 Ember Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package eager implements eager operation execution for the Ember
// runtime.
//
// A Context owns a device table and an operation registry. Work is staged
// through an Op descriptor: pick a registered operation by name, attach
// input TensorHandles and typed attributes, optionally hint a device, then
// Execute. Execution is terminal; the descriptor is released whether the
// run succeeded or failed, and handles returned from Execute are owned by
// the caller.
//
//	ctx, _ := eager.NewContext(eager.ContextOptions{})
//	defer ctx.Close()
//
//	x, _ := eager.HandleFromSlice(ctx, []int32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	defer x.Close()
//
//	op, _ := eager.NewOp(ctx, "Add")
//	op.AddInput(x)
//	op.AddInput(x)
//	op.SetAttrType("T", tensor.Int32)
//
//	var out [1]*eager.TensorHandle
//	if err := op.Execute(out[:]); err != nil {
//		// eager.CodeOf(err) yields the status code.
//	}
//	defer out[0].Close()
//
// Errors carry a status Code taxonomy (InvalidArgument, NotFound,
// FailedPrecondition, ...) retrievable with CodeOf from anywhere in the
// wrapped chain.
package eager
