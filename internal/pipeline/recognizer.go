// Package pipeline wires the landmark provider, feature builder, scaler,
// classifier and label table into a single inference path.
package pipeline

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/signlab/pjmsign/internal/features"
	"github.com/signlab/pjmsign/internal/labels"
	"github.com/signlab/pjmsign/internal/landmarks"
	"github.com/signlab/pjmsign/internal/model"
)

// Prediction is the result of classifying one image.
type Prediction struct {
	// Index is the argmax class index.
	Index int
	// Label is the strict class label for Index.
	Label labels.Label
	// Display is the presentation form of Label, with visually identical
	// signs folded together.
	Display labels.Label
	// Confidence is the probability assigned to Index.
	Confidence float64
	// Probabilities is the full 27-way distribution.
	Probabilities []float64
}

// Recognizer runs the full static-sign pipeline. The scaler and network
// are loaded once and treated as read-only for the lifetime of the
// recognizer; ownership of intermediate data is strictly linear from
// provider to label table.
type Recognizer struct {
	provider landmarks.Provider
	builder  *features.Builder
	scaler   *features.MinMaxScaler
	network  *model.Network
}

// New creates a Recognizer from already-loaded components. The artifact's
// keypoint order version must match the order the provider produces.
func New(provider landmarks.Provider, order *landmarks.Order, art *model.Artifact) (*Recognizer, error) {
	if art.OrderVersion != order.Version {
		return nil, fmt.Errorf("pipeline: artifact was trained against keypoint order %q, provider uses %q",
			art.OrderVersion, order.Version)
	}

	builder := features.NewBuilder(order)
	if builder.Len() != art.Network.InputDim() {
		return nil, &model.ArtifactMismatchError{
			ScalerDim: builder.Len(),
			ModelDim:  art.Network.InputDim(),
		}
	}

	return &Recognizer{
		provider: provider,
		builder:  builder,
		scaler:   art.Scaler,
		network:  art.Network,
	}, nil
}

// Load reads a trained artifact and builds a Recognizer around the given
// provider. Fails fast on any scaler/model/order inconsistency.
func Load(artifactPath string, provider landmarks.Provider, order *landmarks.Order) (*Recognizer, error) {
	art, err := model.LoadArtifact(artifactPath)
	if err != nil {
		return nil, err
	}
	return New(provider, order, art)
}

// Recognize classifies the sign in an image. Detection failures and
// per-sample numeric failures surface as typed errors; there is no default
// prediction and no retry.
func (r *Recognizer) Recognize(img *gocv.Mat) (*Prediction, error) {
	set, err := r.provider.Detect(img)
	if err != nil {
		return nil, err
	}
	return r.RecognizeSet(set)
}

// RecognizeSet classifies a pre-extracted keypoint set, skipping the
// provider stage. Useful when landmarks were produced during dataset
// generation.
func (r *Recognizer) RecognizeSet(set *landmarks.Set) (*Prediction, error) {
	vec, err := r.builder.Build(set)
	if err != nil {
		return nil, err
	}

	scaled, err := r.scaler.Transform(vec)
	if err != nil {
		return nil, err
	}

	probs, err := r.network.Predict(scaled)
	if err != nil {
		return nil, err
	}

	idx := model.Argmax(probs)
	label, err := labels.Map(idx)
	if err != nil {
		return nil, err
	}

	return &Prediction{
		Index:         idx,
		Label:         label,
		Display:       labels.Display(label),
		Confidence:    probs[idx],
		Probabilities: probs,
	}, nil
}

// Close releases the provider's resources.
func (r *Recognizer) Close() error {
	return r.provider.Close()
}
