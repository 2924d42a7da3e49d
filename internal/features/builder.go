package features

import (
	"fmt"
	"math"

	"github.com/signlab/pjmsign/internal/landmarks"
)

// Builder computes the pairwise Euclidean distance feature vector for
// keypoint sets of a fixed order. Element k of the output encodes the
// distance between pair (i,j), i<j, enumerated in keypoint order. The
// same enumeration is used during dataset generation, so it is part of
// the trained model's contract.
type Builder struct {
	order *landmarks.Order
}

// NewBuilder creates a Builder bound to the given keypoint order.
func NewBuilder(order *landmarks.Order) *Builder {
	return &Builder{order: order}
}

// PairCount returns the number of unordered pairs among k keypoints.
func PairCount(k int) int {
	return k * (k - 1) / 2
}

// Len returns the length of vectors this builder produces.
func (b *Builder) Len() int {
	return PairCount(b.order.Len())
}

// Order returns the keypoint order the builder is bound to.
func (b *Builder) Order() *landmarks.Order {
	return b.order
}

// Build computes the feature vector for a keypoint set. The input set must
// use the builder's order; distances are plain Euclidean distances in the
// provider's coordinate space, no rescaling is applied here.
func (b *Builder) Build(set *landmarks.Set) ([]float64, error) {
	if set.Order.Version != b.order.Version {
		return nil, fmt.Errorf("features: set uses order %q, builder expects %q",
			set.Order.Version, b.order.Version)
	}
	if set.Len() != b.order.Len() {
		return nil, &DimensionMismatchError{Want: b.order.Len(), Got: set.Len()}
	}

	out := make([]float64, 0, b.Len())
	for i := 0; i < set.Len(); i++ {
		for j := i + 1; j < set.Len(); j++ {
			out = append(out, distance3D(set.Points[i], set.Points[j]))
		}
	}
	return out, nil
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b landmarks.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
