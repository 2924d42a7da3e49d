// Package model implements the fixed-topology feed-forward classifier for
// static sign recognition and its offline training loop.
package model

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/signlab/pjmsign/internal/features"
)

// Fixed architecture parameters. Changing any of these invalidates every
// previously trained artifact.
const (
	// NumClasses is the number of sign classes the network discriminates.
	NumClasses = 27

	// LeakySlope is the negative-side slope of the LeakyReLU activations.
	LeakySlope = 0.8

	// DropoutRate is the train-time dropout probability after each hidden
	// activation. Dropout is never applied at inference.
	DropoutRate = 0.5
)

// hiddenWidths lists the output widths of the three hidden dense layers.
// The final layer always maps to NumClasses.
var hiddenWidths = [3]int{1035, 512, 64}

// NumericInstabilityError reports NaN or Inf encountered in an input
// vector. The sample is rejected rather than classified into garbage.
type NumericInstabilityError struct {
	Index int
	Value float64
}

func (e *NumericInstabilityError) Error() string {
	return fmt.Sprintf("model: non-finite value %v at dimension %d", e.Value, e.Index)
}

// denseLayer holds the weights (rows = outputs, cols = inputs) and biases
// of one fully connected layer.
type denseLayer struct {
	w *mat.Dense
	b *mat.VecDense
}

// Network is the 4-layer fully connected classifier:
//
//	input -> Dense(1035) -> LeakyReLU(0.8) -> Dropout(0.5)
//	      -> Dense(512)  -> LeakyReLU(0.8) -> Dropout(0.5)
//	      -> Dense(64)   -> LeakyReLU(0.8) -> Dropout(0.5)
//	      -> Dense(27)   -> Softmax
//
// Dropout masks are drawn only inside Train; Predict is deterministic.
type Network struct {
	inputDim int
	layers   []denseLayer
	rng      *rand.Rand
}

// NewNetwork creates a network for the given input dimensionality with
// Glorot-initialized weights. The seed controls weight initialization and
// train-time dropout masks, making runs reproducible.
func NewNetwork(inputDim int, seed int64) *Network {
	rng := rand.New(rand.NewSource(seed))

	widths := append(hiddenWidths[:], NumClasses)
	layers := make([]denseLayer, len(widths))

	in := inputDim
	for i, out := range widths {
		w := mat.NewDense(out, in, nil)
		limit := math.Sqrt(6.0 / float64(in+out))
		for r := 0; r < out; r++ {
			for c := 0; c < in; c++ {
				w.Set(r, c, (rng.Float64()*2-1)*limit)
			}
		}
		layers[i] = denseLayer{w: w, b: mat.NewVecDense(out, nil)}
		in = out
	}

	return &Network{inputDim: inputDim, layers: layers, rng: rng}
}

// InputDim returns the feature dimensionality the network expects.
func (n *Network) InputDim() int {
	return n.inputDim
}

// Predict runs a deterministic forward pass and returns the 27-way class
// probability distribution. The result is a simplex: all entries
// non-negative and summing to 1. Dropout layers are inert here.
func (n *Network) Predict(scaled []float64) ([]float64, error) {
	if len(scaled) != n.inputDim {
		return nil, &features.DimensionMismatchError{Want: n.inputDim, Got: len(scaled)}
	}
	for i, x := range scaled {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, &NumericInstabilityError{Index: i, Value: x}
		}
	}

	a := mat.NewVecDense(len(scaled), append([]float64(nil), scaled...))
	for i, layer := range n.layers {
		z := mat.NewVecDense(layer.w.RawMatrix().Rows, nil)
		z.MulVec(layer.w, a)
		z.AddVec(z, layer.b)
		if i < len(n.layers)-1 {
			leakyReLUInPlace(z)
		}
		a = z
	}

	return softmax(a.RawVector().Data), nil
}

// leakyReLUInPlace applies LeakyReLU with the fixed negative slope.
func leakyReLUInPlace(v *mat.VecDense) {
	data := v.RawVector().Data
	for i, x := range data {
		if x < 0 {
			data[i] = x * LeakySlope
		}
	}
}

// softmax converts logits to probabilities, shifting by the maximum logit
// for numeric stability.
func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, x := range logits[1:] {
		if x > maxLogit {
			maxLogit = x
		}
	}

	out := make([]float64, len(logits))
	var sum float64
	for i, x := range logits {
		out[i] = math.Exp(x - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Argmax returns the index of the largest probability.
func Argmax(probs []float64) int {
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best
}
