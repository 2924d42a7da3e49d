package landmarks

import (
	"math"

	"gocv.io/x/gocv"
)

// MockProvider is a test implementation of the Provider interface.
// It allows tests to control the detection results.
type MockProvider struct {
	set *Set
	err error
}

// NewMockProvider creates a new MockProvider instance.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// SetResult sets the keypoint set that will be returned by Detect.
func (m *MockProvider) SetResult(set *Set) {
	m.set = set
}

// SetError sets the error that will be returned by Detect.
func (m *MockProvider) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured set or error.
func (m *MockProvider) Detect(img *gocv.Mat) (*Set, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.set == nil {
		return nil, &DetectionError{Region: RegionPose}
	}
	return m.set, nil
}

// Close is a no-op for the mock provider.
func (m *MockProvider) Close() error {
	return nil
}

// SyntheticSet returns a deterministic keypoint set for the given class
// index. Different classes produce geometrically distinct poses, which
// makes the sets usable as stand-in training examples in tests.
func SyntheticSet(order *Order, class int) *Set {
	points := make([]Point3D, order.Len())
	for i := range points {
		phase := 0.37*float64(i) + 1.3*float64(class)
		points[i] = Point3D{
			X: 0.5 + 0.4*math.Sin(phase),
			Y: 0.5 + 0.4*math.Cos(1.7*phase),
			Z: 0.05 * math.Sin(2.9*phase),
		}
	}
	set, _ := NewSet(order, points)
	return set
}
