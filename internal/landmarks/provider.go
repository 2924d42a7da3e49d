package landmarks

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Tracked regions a provider must locate before a Set can be assembled.
const (
	RegionPose      = "pose"
	RegionLeftHand  = "left_hand"
	RegionRightHand = "right_hand"
)

// DetectionError reports that the provider could not locate the keypoints
// of a required region (occlusion, no hand in frame). Callers may recover
// by skipping the frame or prompting a re-capture; the core never retries.
type DetectionError struct {
	Region string
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("landmarks: %s not detected", e.Region)
}

// Provider extracts the fixed keypoint set from a single image.
type Provider interface {
	// Detect analyzes an image and returns the keypoint set for the
	// provider's order. Returns a *DetectionError when a required region
	// is missing.
	Detect(img *gocv.Mat) (*Set, error)

	// Close releases any resources held by the provider.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ScriptPath optionally pins the location of the holistic service
	// script. When empty, well-known locations are searched.
	ScriptPath string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
