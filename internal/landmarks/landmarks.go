// Package landmarks defines the keypoint model and the landmark provider
// boundary for static sign recognition.
package landmarks

import "fmt"

// Point3D represents a 3D point in normalized image coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist            = 0
	ThumbCMC         = 1
	ThumbMCP         = 2
	ThumbIP          = 3
	ThumbTip         = 4
	IndexMCP         = 5
	IndexPIP         = 6
	IndexDIP         = 7
	IndexTip         = 8
	MiddleMCP        = 9
	MiddlePIP        = 10
	MiddleDIP        = 11
	MiddleTip        = 12
	RingMCP          = 13
	RingPIP          = 14
	RingDIP          = 15
	RingTip          = 16
	PinkyMCP         = 17
	PinkyPIP         = 18
	PinkyDIP         = 19
	PinkyTip         = 20
	NumHandLandmarks = 21
)

// Pose landmark indices (MediaPipe pose convention) for the upper-body
// points used by static signs.
const (
	PoseLeftShoulder  = 11
	PoseRightShoulder = 12
	PoseLeftElbow     = 13
	PoseRightElbow    = 14
)

// handJointNames lists the 21 hand joint names in MediaPipe index order.
var handJointNames = [NumHandLandmarks]string{
	"wrist",
	"thumb_cmc", "thumb_mcp", "thumb_ip", "thumb_tip",
	"index_mcp", "index_pip", "index_dip", "index_tip",
	"middle_mcp", "middle_pip", "middle_dip", "middle_tip",
	"ring_mcp", "ring_pip", "ring_dip", "ring_tip",
	"pinky_mcp", "pinky_pip", "pinky_dip", "pinky_tip",
}

// Order is an explicit, versioned enumeration of the keypoints a feature
// vector is built from. Dataset generation and inference must use the same
// Order; the version travels with trained artifacts so mismatches fail
// loudly instead of silently corrupting predictions.
type Order struct {
	Version string   `json:"version"`
	Names   []string `json:"names"`

	index map[string]int
}

// OrderVersionV1 identifies the canonical 46-keypoint order: the four
// upper-body pose points followed by the left hand then the right hand,
// each hand in MediaPipe joint order.
const OrderVersionV1 = "v1"

// DefaultOrder returns the v1 keypoint order. Its 46 keypoints give a
// 46*45/2 = 1035 element distance feature vector.
func DefaultOrder() *Order {
	names := make([]string, 0, 4+2*NumHandLandmarks)
	names = append(names, "left_shoulder", "right_shoulder", "left_elbow", "right_elbow")
	for _, j := range handJointNames {
		names = append(names, "left_hand_"+j)
	}
	for _, j := range handJointNames {
		names = append(names, "right_hand_"+j)
	}
	return NewOrder(OrderVersionV1, names)
}

// NewOrder builds an Order from a version string and an ordered name list.
func NewOrder(version string, names []string) *Order {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return &Order{Version: version, Names: names, index: idx}
}

// Len returns the number of keypoints in the order.
func (o *Order) Len() int {
	return len(o.Names)
}

// Index returns the position of the named keypoint, or -1 if absent.
func (o *Order) Index(name string) int {
	if o.index == nil {
		o.index = make(map[string]int, len(o.Names))
		for i, n := range o.Names {
			o.index[n] = i
		}
	}
	if i, ok := o.index[name]; ok {
		return i
	}
	return -1
}

// Set is an ordered sequence of keypoints laid out according to an Order.
// Sets are produced once per image by a Provider and are immutable
// thereafter.
type Set struct {
	Order  *Order
	Points []Point3D
}

// NewSet creates a Set, validating that the point count matches the order.
func NewSet(order *Order, points []Point3D) (*Set, error) {
	if len(points) != order.Len() {
		return nil, fmt.Errorf("landmarks: set has %d points, order %q expects %d",
			len(points), order.Version, order.Len())
	}
	return &Set{Order: order, Points: points}, nil
}

// Len returns the number of keypoints in the set.
func (s *Set) Len() int {
	return len(s.Points)
}

// Point returns the coordinate of the named keypoint.
func (s *Set) Point(name string) (Point3D, bool) {
	i := s.Order.Index(name)
	if i < 0 {
		return Point3D{}, false
	}
	return s.Points[i], true
}
