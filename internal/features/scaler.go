package features

import "errors"

// ErrNotFitted is returned when Transform is called before Fit.
var ErrNotFitted = errors.New("features: scaler is not fitted")

// MinMaxScaler linearly rescales each feature dimension to [0,1] using
// per-dimension extrema recorded from the training set. The scaler is fit
// once on training data and reused verbatim for all other data.
//
// Transform does not clamp: inference inputs outside the fitted range
// produce values outside [0,1].
type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// NewMinMaxScaler creates an unfitted scaler.
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{}
}

// Fitted reports whether the scaler carries coherent extrema. Min and Max
// must be the same non-zero length; a scaler deserialized with a truncated
// array is treated as unfitted rather than indexed out of range.
func (s *MinMaxScaler) Fitted() bool {
	return len(s.Min) > 0 && len(s.Max) == len(s.Min)
}

// Dim returns the fitted dimensionality, or 0 if unfitted.
func (s *MinMaxScaler) Dim() int {
	return len(s.Min)
}

// Fit records per-dimension min and max over the training vectors.
func (s *MinMaxScaler) Fit(vectors [][]float64) error {
	if len(vectors) == 0 {
		return errors.New("features: no vectors to fit scaler on")
	}

	dim := len(vectors[0])
	s.Min = make([]float64, dim)
	s.Max = make([]float64, dim)
	copy(s.Min, vectors[0])
	copy(s.Max, vectors[0])

	for _, v := range vectors[1:] {
		if len(v) != dim {
			return &DimensionMismatchError{Want: dim, Got: len(v)}
		}
		for j, x := range v {
			if x < s.Min[j] {
				s.Min[j] = x
			}
			if x > s.Max[j] {
				s.Max[j] = x
			}
		}
	}
	return nil
}

// Transform maps each dimension linearly to [0,1] using the fitted
// extrema. Dimensions with max == min map to 0.
func (s *MinMaxScaler) Transform(v []float64) ([]float64, error) {
	if !s.Fitted() {
		return nil, ErrNotFitted
	}
	if len(v) != s.Dim() {
		return nil, &DimensionMismatchError{Want: s.Dim(), Got: len(v)}
	}

	out := make([]float64, len(v))
	for j, x := range v {
		span := s.Max[j] - s.Min[j]
		if span == 0 {
			out[j] = 0
			continue
		}
		out[j] = (x - s.Min[j]) / span
	}
	return out, nil
}

// FitTransform fits the scaler and transforms every training vector.
func (s *MinMaxScaler) FitTransform(vectors [][]float64) ([][]float64, error) {
	if err := s.Fit(vectors); err != nil {
		return nil, err
	}
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		t, err := s.Transform(v)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
