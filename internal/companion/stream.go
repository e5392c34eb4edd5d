package companion

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// StreamHost grants surfaces that are delivered to a client as an event stream.
type StreamHost struct {
	enabled bool
}

func NewStreamHost(enabled bool) *StreamHost {
	return &StreamHost{enabled: enabled}
}

func (h *StreamHost) Supported() bool {
	return h.enabled
}

func (h *StreamHost) Request(ctx context.Context, size Size) (Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewStreamSurface(size), nil
}

// StreamSurface buffers only the latest frame. A slow reader skips frames it
// did not get to; it never blocks the renderer.
type StreamSurface struct {
	id       string
	size     Size
	frames   chan Frame
	done     chan struct{}
	once     sync.Once
	attached atomic.Bool
}

func NewStreamSurface(size Size) *StreamSurface {
	return &StreamSurface{
		id:     "companion:" + uuid.NewString(),
		size:   size,
		frames: make(chan Frame, 1),
		done:   make(chan struct{}),
	}
}

func (s *StreamSurface) ID() string {
	return s.id
}

func (s *StreamSurface) Size() Size {
	return s.size
}

// Render replaces any frame the reader has not consumed yet.
func (s *StreamSurface) Render(frame Frame) {
	select {
	case <-s.done:
		return
	default:
	}
	for {
		select {
		case s.frames <- frame:
			return
		default:
		}
		select {
		case <-s.frames:
		default:
		}
	}
}

func (s *StreamSurface) Frames() <-chan Frame {
	return s.frames
}

// Attach claims the surface for a single reader.
func (s *StreamSurface) Attach() bool {
	return s.attached.CompareAndSwap(false, true)
}

func (s *StreamSurface) Detach() {
	s.attached.Store(false)
}

func (s *StreamSurface) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *StreamSurface) Done() <-chan struct{} {
	return s.done
}
