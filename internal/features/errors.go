// Package features converts keypoint sets into pairwise-distance feature
// vectors and scales them for classification.
package features

import "fmt"

// DimensionMismatchError reports a vector whose length disagrees with the
// fitted or expected dimensionality. Fatal for the sample, not the process.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("features: dimension mismatch: want %d, got %d", e.Want, e.Got)
}
