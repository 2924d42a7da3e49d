package capture

import (
	"io"
	"sync"

	"gocv.io/x/gocv"
)

// MockStream plays back a fixed frame sequence for testing. ReadFrame
// returns io.EOF once the sequence is exhausted, matching file sources.
type MockStream struct {
	frames []*gocv.Mat
	index  int
	mu     sync.Mutex
	open   bool
}

func NewMockStream(frames []*gocv.Mat) *MockStream {
	return &MockStream{frames: frames}
}

func (m *MockStream) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	m.index = 0
	return nil
}

func (m *MockStream) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	return nil
}

func (m *MockStream) ReadFrame() (*gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return nil, ErrNotOpen
	}
	if m.index >= len(m.frames) {
		return nil, io.EOF
	}

	// Clone so callers can Close their copy freely.
	frame := m.frames[m.index].Clone()
	m.index++
	return &frame, nil
}

func (m *MockStream) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}
