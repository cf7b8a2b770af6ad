// Package framering hands out per-frame slots of a constant buffer so the
// host never overwrites bytes the GPU may still be reading.
//
// A frame stamps its forcing constant into the slot returned by Begin and
// calls End once the GPU work reading that slot has been submitted. Begin
// blocks on the slot's fence before reusing it, which bounds the number of
// frames in flight to the number of slots.
package framering

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

const (
	MinFrames     = 1
	MaxFrames     = 4
	DefaultFrames = 3
)

var (
	ErrNotAcquired     = errors.New("framering: slot was not acquired")
	ErrAlreadyAcquired = errors.New("framering: a slot is already acquired")
	ErrBadConfig       = errors.New("framering: invalid configuration")
)

// Fence tracks GPU completion per slot.
type Fence interface {
	// Wait blocks until the GPU has finished with slot, or ctx is done.
	Wait(ctx context.Context, slot int) error
	// Signal records that GPU work reading slot has been submitted.
	Signal(slot int) error
}

// Slot is one aligned region of the backing buffer.
type Slot struct {
	Index  int
	Offset int
	Size   int

	ring *Ring
}

// Bytes is the host-side staging memory for the slot. It stays valid until
// End is called for this slot.
func (s Slot) Bytes() []byte {
	return s.ring.data[s.Offset : s.Offset+s.Size]
}

// Ring is safe for concurrent use; at most one slot is acquired at a time.
type Ring struct {
	mu       sync.Mutex
	fence    Fence
	frames   int
	stride   int
	record   int
	next     int
	acquired int // -1 when idle
	frame    uint64
	data     []byte
}

// New creates a ring of frames slots, each holding one record of
// recordSize bytes and starting at a multiple of align.
func New(frames, recordSize, align int, fence Fence) (*Ring, error) {
	if frames < MinFrames || frames > MaxFrames {
		return nil, fmt.Errorf("frames in flight %d, want %d..%d: %w", frames, MinFrames, MaxFrames, ErrBadConfig)
	}
	if recordSize <= 0 {
		return nil, fmt.Errorf("record size %d: %w", recordSize, ErrBadConfig)
	}
	if align <= 0 || align&(align-1) != 0 {
		return nil, fmt.Errorf("alignment %d is not a power of two: %w", align, ErrBadConfig)
	}
	if fence == nil {
		return nil, fmt.Errorf("nil fence: %w", ErrBadConfig)
	}
	stride := (recordSize + align - 1) &^ (align - 1)
	return &Ring{
		fence:    fence,
		frames:   frames,
		stride:   stride,
		record:   recordSize,
		acquired: -1,
		data:     make([]byte, stride*frames),
	}, nil
}

func (r *Ring) Frames() int { return r.frames }

// Stride is the distance in bytes between consecutive slots.
func (r *Ring) Stride() int { return r.stride }

// Len is the size of the backing buffer the GPU side must allocate.
func (r *Ring) Len() int { return len(r.data) }

// Frame counts completed Begin/End pairs.
func (r *Ring) Frame() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

// Begin acquires the next slot, waiting for the GPU to release it.
func (r *Ring) Begin(ctx context.Context) (Slot, error) {
	r.mu.Lock()
	if r.acquired >= 0 {
		r.mu.Unlock()
		return Slot{}, ErrAlreadyAcquired
	}
	idx := r.next
	r.acquired = idx
	r.mu.Unlock()

	if err := r.fence.Wait(ctx, idx); err != nil {
		r.mu.Lock()
		r.acquired = -1
		r.mu.Unlock()
		return Slot{}, fmt.Errorf("framering: wait for slot %d: %w", idx, err)
	}
	return Slot{Index: idx, Offset: idx * r.stride, Size: r.record, ring: r}, nil
}

// End signals the slot's fence and advances to the next slot.
func (r *Ring) End(s Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ring != r || r.acquired != s.Index {
		return ErrNotAcquired
	}
	if err := r.fence.Signal(s.Index); err != nil {
		return fmt.Errorf("framering: signal slot %d: %w", s.Index, err)
	}
	r.acquired = -1
	r.next = (s.Index + 1) % r.frames
	r.frame++
	return nil
}
