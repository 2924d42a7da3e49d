package capture

import (
	"errors"
	"io"
	"testing"

	"gocv.io/x/gocv"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in     string
		device bool
	}{
		{"0", true},
		{"2", true},
		{"recording.mp4", false},
		{"/data/signs/demo.avi", false},
	}

	for _, tt := range tests {
		src := ParseSource(tt.in)
		if src.IsDevice() != tt.device {
			t.Errorf("ParseSource(%q).IsDevice() = %v, want %v", tt.in, src.IsDevice(), tt.device)
		}
		if src.String() != tt.in {
			t.Errorf("ParseSource(%q).String() = %q", tt.in, src.String())
		}
	}
}

func TestMockStream_Playback(t *testing.T) {
	frames := make([]*gocv.Mat, 3)
	for i := range frames {
		mat := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
		defer mat.Close()
		frames[i] = &mat
	}

	stream := NewMockStream(frames)

	if _, err := stream.ReadFrame(); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("ReadFrame() before Open error = %v, want ErrNotOpen", err)
	}

	if err := stream.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !stream.IsOpen() {
		t.Fatal("IsOpen() = false after Open")
	}

	for i := 0; i < len(frames); i++ {
		frame, err := stream.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		if frame.Empty() {
			t.Fatalf("ReadFrame() %d returned empty frame", i)
		}
		frame.Close()
	}

	if _, err := stream.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Fatalf("ReadFrame() after playback error = %v, want io.EOF", err)
	}
}

func TestVideoStream_BadPath(t *testing.T) {
	stream := NewStream(ParseSource("does-not-exist.mp4"))

	err := stream.Open()
	var openErr *OpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("Open() error = %v, want *OpenError", err)
	}
	if openErr.Device {
		t.Error("OpenError.Device = true for a file path")
	}
}

func TestVideoStream_ReadBeforeOpen(t *testing.T) {
	stream := NewStream(ParseSource("whatever.mp4"))
	if _, err := stream.ReadFrame(); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("ReadFrame() error = %v, want ErrNotOpen", err)
	}
}
