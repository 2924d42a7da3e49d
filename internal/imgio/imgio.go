// Package imgio provides image loading and the simple geometric transforms
// used for dataset expansion (mirrored signs, rescaled captures).
package imgio

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrUnreadableImage is returned when a path does not decode to an image.
var ErrUnreadableImage = errors.New("imgio: path is not a readable image")

// Open reads an image from disk. The caller owns the returned Mat and must
// Close it.
func Open(path string) (*gocv.Mat, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrUnreadableImage, path)
	}
	return &mat, nil
}

// Rescale resizes an image to the given percentage of its original size
// using area interpolation. The factor must be positive.
func Rescale(src *gocv.Mat, percent int) (*gocv.Mat, error) {
	if percent <= 0 {
		return nil, fmt.Errorf("imgio: rescale percent must be positive, got %d", percent)
	}

	width := src.Cols() * percent / 100
	height := src.Rows() * percent / 100

	dst := gocv.NewMat()
	gocv.Resize(*src, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationArea)
	return &dst, nil
}

// Mirror flips an image horizontally. Mirroring doubles a static-sign
// dataset: a right-handed sign becomes a valid left-handed sample.
func Mirror(src *gocv.Mat) *gocv.Mat {
	dst := gocv.NewMat()
	gocv.Flip(*src, &dst, 1)
	return &dst
}

// Save writes an image to disk.
func Save(path string, img *gocv.Mat) error {
	if ok := gocv.IMWrite(path, *img); !ok {
		return fmt.Errorf("imgio: failed to write %s", path)
	}
	return nil
}

// Center returns the image center coordinates as (x, y).
func Center(img *gocv.Mat) (float64, float64) {
	return float64(img.Cols()) / 2, float64(img.Rows()) / 2
}
