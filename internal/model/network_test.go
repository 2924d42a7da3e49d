package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signlab/pjmsign/internal/features"
)

func TestNetwork_PredictSimplex(t *testing.T) {
	n := NewNetwork(12, 42)

	in := make([]float64, 12)
	for i := range in {
		in[i] = float64(i) / 12
	}

	probs, err := n.Predict(in)
	require.NoError(t, err)
	require.Len(t, probs, NumClasses)

	var sum float64
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestNetwork_PredictDeterministic(t *testing.T) {
	n := NewNetwork(8, 7)

	in := []float64{0.1, 0.9, 0.3, 0.5, 0.0, 1.0, 0.25, 0.75}

	a, err := n.Predict(in)
	require.NoError(t, err)
	b, err := n.Predict(in)
	require.NoError(t, err)

	// Dropout must be inert at inference: bit-identical outputs.
	for i := range a {
		assert.Equal(t, a[i], b[i], "probability %d differs between identical predictions", i)
	}
}

func TestNetwork_PredictDimensionMismatch(t *testing.T) {
	n := NewNetwork(1035, 1)

	_, err := n.Predict(make([]float64, 1034))
	var dimErr *features.DimensionMismatchError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 1035, dimErr.Want)
	assert.Equal(t, 1034, dimErr.Got)
}

func TestNetwork_PredictNonFinite(t *testing.T) {
	n := NewNetwork(4, 1)

	tests := []struct {
		name string
		in   []float64
	}{
		{"NaN", []float64{0.1, math.NaN(), 0.3, 0.4}},
		{"+Inf", []float64{0.1, 0.2, math.Inf(1), 0.4}},
		{"-Inf", []float64{0.1, 0.2, 0.3, math.Inf(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Predict(tt.in)
			var numErr *NumericInstabilityError
			require.ErrorAs(t, err, &numErr)
		})
	}
}

func TestSoftmax_Stability(t *testing.T) {
	// Large logits must not overflow into NaN.
	probs := softmax([]float64{1000, 1001, 999})
	var sum float64
	for _, p := range probs {
		require.False(t, math.IsNaN(p))
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Equal(t, 1, Argmax(probs))
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, 0, Argmax([]float64{0.9, 0.05, 0.05}))
	assert.Equal(t, 2, Argmax([]float64{0.1, 0.2, 0.7}))
}
