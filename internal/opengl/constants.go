package opengl

import (
	"context"
	"fmt"
	"time"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"fluid-demo/internal/framering"
	"fluid-demo/internal/logging"
	"fluid-demo/shadertypes"
)

// syncFence implements framering.Fence with GL sync objects.
type syncFence struct {
	syncs []uintptr
	poll  time.Duration
}

func (f *syncFence) Wait(ctx context.Context, slot int) error {
	s := f.syncs[slot]
	if s == 0 {
		return nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch gl.ClientWaitSync(s, gl.SYNC_FLUSH_COMMANDS_BIT, uint64(f.poll.Nanoseconds())) {
		case gl.ALREADY_SIGNALED, gl.CONDITION_SATISFIED:
			gl.DeleteSync(s)
			f.syncs[slot] = 0
			return nil
		case gl.WAIT_FAILED:
			return fmt.Errorf("client wait on slot %d: %w", slot, ErrGL)
		}
	}
}

func (f *syncFence) Signal(slot int) error {
	if old := f.syncs[slot]; old != 0 {
		gl.DeleteSync(old)
	}
	f.syncs[slot] = gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
	if f.syncs[slot] == 0 {
		return fmt.Errorf("fence for slot %d: %w", slot, ErrGL)
	}
	return nil
}

func (f *syncFence) release() {
	for i, s := range f.syncs {
		if s != 0 {
			gl.DeleteSync(s)
			f.syncs[i] = 0
		}
	}
}

// ConstantBuffer is a uniform buffer holding one ForcingConstant slot per
// frame in flight. Each Write lands in a slot the GPU is no longer reading
// and binds that slot's range at Binding.
type ConstantBuffer struct {
	UBO     uint32
	Binding uint32

	ring    *framering.Ring
	fence   *syncFence
	current framering.Slot
	pending bool
}

// NewConstantBuffer allocates the buffer. align 0 uses the driver's
// GL_UNIFORM_BUFFER_OFFSET_ALIGNMENT.
func NewConstantBuffer(binding uint32, frames, align int) (*ConstantBuffer, error) {
	if align == 0 {
		var a int32
		gl.GetIntegerv(gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT, &a)
		align = int(a)
	}
	// std140 rounds the block up to a vec4 boundary.
	if align < 16 {
		align = 16
	}
	fence := &syncFence{syncs: make([]uintptr, max(frames, 0)), poll: time.Millisecond}
	ring, err := framering.New(frames, shadertypes.ForcingConstantSize, align, fence)
	if err != nil {
		return nil, err
	}

	cb := &ConstantBuffer{Binding: binding, ring: ring, fence: fence}
	gl.GenBuffers(1, &cb.UBO)
	gl.BindBuffer(gl.UNIFORM_BUFFER, cb.UBO)
	gl.BufferData(gl.UNIFORM_BUFFER, ring.Len(), nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	if err := checkError("allocate constant buffer"); err != nil {
		cb.Delete()
		return nil, err
	}
	logging.Logger().Debug("constant buffer allocated",
		"ubo", cb.UBO, "binding", binding, "frames", frames, "stride", ring.Stride())
	return cb, nil
}

// Write stamps c into the next free slot and binds it. Call Submitted once
// the draw or dispatch reading it has been issued.
func (cb *ConstantBuffer) Write(ctx context.Context, c shadertypes.ForcingConstant) (framering.Slot, error) {
	if cb.pending {
		return framering.Slot{}, framering.ErrAlreadyAcquired
	}
	slot, err := cb.ring.Begin(ctx)
	if err != nil {
		return framering.Slot{}, err
	}
	cb.current, cb.pending = slot, true

	if err := shadertypes.PutForcingConstant(slot.Bytes(), c); err != nil {
		return slot, err
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, cb.UBO)
	gl.BufferSubData(gl.UNIFORM_BUFFER, slot.Offset, slot.Size, gl.Ptr(slot.Bytes()))
	gl.BindBufferRange(gl.UNIFORM_BUFFER, cb.Binding, cb.UBO, slot.Offset, cb.ring.Stride())
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	return slot, checkError("write constant buffer")
}

// Submitted fences the slot returned by the last Write.
func (cb *ConstantBuffer) Submitted() error {
	if !cb.pending {
		return framering.ErrNotAcquired
	}
	if err := cb.ring.End(cb.current); err != nil {
		return err
	}
	cb.pending = false
	return nil
}

// Frames is the number of slots, i.e. frames that may be in flight.
func (cb *ConstantBuffer) Frames() int { return cb.ring.Frames() }

// Slot reads back slot i as the GPU sees it.
func (cb *ConstantBuffer) Slot(i int) (shadertypes.ForcingConstant, error) {
	var c shadertypes.ForcingConstant
	raw, err := ReadBuffer(gl.UNIFORM_BUFFER, cb.UBO, i*cb.ring.Stride(), shadertypes.ForcingConstantSize)
	if err != nil {
		return c, err
	}
	err = c.UnmarshalBinary(raw)
	return c, err
}

func (cb *ConstantBuffer) Delete() {
	cb.fence.release()
	if cb.UBO != 0 {
		gl.DeleteBuffers(1, &cb.UBO)
		cb.UBO = 0
	}
}
