package eager

import (
	"github.com/ember-ml/ember/tensor"
)

// Execute runs the staged operation and fills out with the resulting
// handles. len(out) must match the op's declared output count. Execute
// consumes the descriptor: successful or not, the op is released and
// cannot be staged on or executed again.
func (op *Op) Execute(out []*TensorHandle) error {
	if op.released {
		return Statusf(FailedPrecondition, "op %q: descriptor already released", op.name)
	}
	if op.executed {
		return Statusf(FailedPrecondition, "op %q: descriptor already executed", op.name)
	}
	op.executed = true
	defer op.Release()

	if op.ctx.closed.Load() {
		return Statusf(FailedPrecondition, "op %q: context is closed", op.name)
	}

	if n := len(op.inputs); n < op.def.MinInputs {
		return Statusf(InvalidArgument, "op %q: got %d inputs, want at least %d", op.name, n, op.def.MinInputs)
	} else if op.def.MaxInputs >= 0 && n > op.def.MaxInputs {
		return Statusf(InvalidArgument, "op %q: got %d inputs, want at most %d", op.name, len(op.inputs), op.def.MaxInputs)
	}
	if len(out) != op.def.NumOutputs {
		return Statusf(InvalidArgument, "op %q: got %d output slots, want %d", op.name, len(out), op.def.NumOutputs)
	}

	raws := make([]*tensor.RawTensor, len(op.inputs))
	for i, h := range op.inputs {
		if h.closed {
			return Statusf(FailedPrecondition, "op %q: input %d was closed before execution", op.name, i)
		}
		raws[i] = h.borrow()
	}

	results, err := op.def.Kernel(op.device.backend, raws, &Attrs{m: op.attrs})
	if err != nil {
		for _, r := range results {
			if r != nil {
				r.Release()
			}
		}
		if _, ok := err.(*Status); ok {
			return err
		}
		return WrapStatus(Internal, err, "op %q", op.name)
	}
	if len(results) != op.def.NumOutputs {
		for _, r := range results {
			if r != nil {
				r.Release()
			}
		}
		return Statusf(Internal, "op %q: kernel produced %d outputs, want %d", op.name, len(results), op.def.NumOutputs)
	}

	for i, r := range results {
		out[i] = newHandle(op.ctx, r, op.device.name)
	}
	return nil
}
