package framering

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluid-demo/math"
	"fluid-demo/shadertypes"
)

// chanFence lets a test play the GPU: Wait blocks until release is called
// for a slot that has been signalled.
type chanFence struct {
	mu       sync.Mutex
	pending  map[int]chan struct{}
	signals  []int
	failWait error
}

func newChanFence() *chanFence {
	return &chanFence{pending: map[int]chan struct{}{}}
}

func (f *chanFence) Wait(ctx context.Context, slot int) error {
	f.mu.Lock()
	ch, ok := f.pending[slot]
	err := f.failWait
	f.mu.Unlock()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *chanFence) Signal(slot int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[slot] = make(chan struct{})
	f.signals = append(f.signals, slot)
	return nil
}

func (f *chanFence) release(slot int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.pending[slot]; ok {
		close(ch)
		delete(f.pending, slot)
	}
}

func TestNewValidates(t *testing.T) {
	fence := newChanFence()
	for _, tc := range []struct {
		frames, size, align int
		fence               Fence
	}{
		{0, 24, 256, fence},
		{5, 24, 256, fence},
		{3, 0, 256, fence},
		{3, 24, 0, fence},
		{3, 24, 100, fence},
		{3, 24, 256, nil},
	} {
		_, err := New(tc.frames, tc.size, tc.align, tc.fence)
		assert.ErrorIs(t, err, ErrBadConfig, "%+v", tc)
	}
}

func TestSlotsAreAligned(t *testing.T) {
	r, err := New(DefaultFrames, shadertypes.ForcingConstantSize, 256, newChanFence())
	require.NoError(t, err)
	assert.Equal(t, 256, r.Stride())
	assert.Equal(t, 3*256, r.Len())

	ctx := context.Background()
	for i := 0; i < 2*DefaultFrames; i++ {
		s, err := r.Begin(ctx)
		require.NoError(t, err)
		assert.Equal(t, i%DefaultFrames, s.Index)
		assert.Equal(t, s.Index*256, s.Offset)
		assert.Len(t, s.Bytes(), shadertypes.ForcingConstantSize)
		require.NoError(t, r.End(s))
		// GPU finishes immediately
		r.fence.(*chanFence).release(s.Index)
	}
	assert.Equal(t, uint64(6), r.Frame())

	small, err := New(2, shadertypes.ForcingConstantSize, 4, newChanFence())
	require.NoError(t, err)
	assert.Equal(t, shadertypes.ForcingConstantSize, small.Stride())
}

func TestSlotBytesReachBackingBuffer(t *testing.T) {
	r, err := New(2, shadertypes.ForcingConstantSize, 64, newChanFence())
	require.NoError(t, err)

	s, err := r.Begin(context.Background())
	require.NoError(t, err)
	c := shadertypes.ForcingConstant{A: math.NewVec2(1, 2), B: math.NewVec2(3, 4), Force: math.NewVec2(5, 6)}
	require.NoError(t, shadertypes.PutForcingConstant(s.Bytes(), c))

	var got shadertypes.ForcingConstant
	require.NoError(t, got.UnmarshalBinary(r.data[s.Offset:s.Offset+shadertypes.ForcingConstantSize]))
	assert.Equal(t, c, got)
}

func TestBeginWaitsForGPU(t *testing.T) {
	fence := newChanFence()
	r, err := New(2, 24, 4, fence)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		s, err := r.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, r.End(s))
	}

	got := make(chan Slot)
	go func() {
		s, err := r.Begin(ctx)
		assert.NoError(t, err)
		got <- s
	}()

	select {
	case <-got:
		t.Fatal("slot 0 reused while the GPU still holds it")
	case <-time.After(20 * time.Millisecond):
	}

	fence.release(0)
	select {
	case s := <-got:
		assert.Equal(t, 0, s.Index)
	case <-time.After(time.Second):
		t.Fatal("Begin did not return after the fence was released")
	}
}

func TestBeginHonoursContext(t *testing.T) {
	fence := newChanFence()
	r, err := New(1, 24, 4, fence)
	require.NoError(t, err)

	s, err := r.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, r.End(s))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = r.Begin(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// the failed Begin released its claim
	fence.release(0)
	s, err = r.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, s.Index)
}

func TestMisuse(t *testing.T) {
	r, err := New(2, 24, 4, newChanFence())
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, r.End(Slot{Index: 0, ring: r}), ErrNotAcquired)

	s, err := r.Begin(ctx)
	require.NoError(t, err)
	_, err = r.Begin(ctx)
	assert.ErrorIs(t, err, ErrAlreadyAcquired)

	other, err := New(2, 24, 4, newChanFence())
	require.NoError(t, err)
	assert.ErrorIs(t, other.End(s), ErrNotAcquired)

	require.NoError(t, r.End(s))
	assert.ErrorIs(t, r.End(s), ErrNotAcquired)
}

func TestWaitError(t *testing.T) {
	fence := newChanFence()
	fence.failWait = errors.New("device lost")
	r, err := New(2, 24, 4, fence)
	require.NoError(t, err)

	_, err = r.Begin(context.Background())
	assert.ErrorIs(t, err, fence.failWait)
	assert.ErrorContains(t, err, "slot 0")
}
