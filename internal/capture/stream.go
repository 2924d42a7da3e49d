// Package capture opens video sources for live sign recognition. A source
// is either a camera device or a pre-recorded video file; both yield frames
// through the same Stream interface.
package capture

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNotOpen is returned when reading from a stream that is not open.
var ErrNotOpen = errors.New("capture: stream is not open")

// OpenError reports that a source could not be opened. The Device flag
// distinguishes a bad camera index from a bad video path.
type OpenError struct {
	Source string
	Device bool
}

func (e *OpenError) Error() string {
	if e.Device {
		return fmt.Sprintf("capture: cannot open camera device %s", e.Source)
	}
	return fmt.Sprintf("capture: cannot open video file %s", e.Source)
}

// Source identifies a video input.
type Source struct {
	deviceID int
	path     string
	isDevice bool
}

// ParseSource interprets a source string: a bare integer selects a camera
// device, anything else is treated as a path to a video file.
func ParseSource(s string) Source {
	if id, err := strconv.Atoi(s); err == nil {
		return Source{deviceID: id, isDevice: true}
	}
	return Source{path: s}
}

// IsDevice reports whether the source is a camera device.
func (s Source) IsDevice() bool { return s.isDevice }

func (s Source) String() string {
	if s.isDevice {
		return strconv.Itoa(s.deviceID)
	}
	return s.path
}

// Stream yields frames from a video source. ReadFrame returns io.EOF once
// a file source is exhausted; camera sources never return io.EOF.
type Stream interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}

// videoStream reads frames from a camera or video file using GoCV.
type videoStream struct {
	source  Source
	capture *gocv.VideoCapture
	mu      sync.Mutex
	open    bool
}

// NewStream creates a Stream for the given source. The underlying device
// or file is not touched until Open.
func NewStream(source Source) Stream {
	return &videoStream{source: source}
}

func (v *videoStream) Open() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.open {
		return nil
	}

	var (
		vc  *gocv.VideoCapture
		err error
	)
	if v.source.isDevice {
		vc, err = gocv.OpenVideoCapture(v.source.deviceID)
	} else {
		vc, err = gocv.OpenVideoCapture(v.source.path)
	}
	if err != nil || !vc.IsOpened() {
		if vc != nil {
			vc.Close()
		}
		return &OpenError{Source: v.source.String(), Device: v.source.isDevice}
	}

	v.capture = vc
	v.open = true
	return nil
}

func (v *videoStream) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open || v.capture == nil {
		v.open = false
		return nil
	}

	err := v.capture.Close()
	v.capture = nil
	v.open = false
	return err
}

// ReadFrame reads the next frame. The caller owns the returned Mat and
// must Close it.
func (v *videoStream) ReadFrame() (*gocv.Mat, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open || v.capture == nil {
		return nil, ErrNotOpen
	}

	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		if !v.source.isDevice {
			return nil, io.EOF
		}
		return nil, errors.New("capture: failed to read frame from camera")
	}

	return &mat, nil
}

func (v *videoStream) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}
