package pipeline

import (
	"errors"
	"testing"

	"github.com/signlab/pjmsign/internal/features"
	"github.com/signlab/pjmsign/internal/labels"
	"github.com/signlab/pjmsign/internal/landmarks"
	"github.com/signlab/pjmsign/internal/model"
)

// trainedArtifact fits a scaler and trains a network on synthetic keypoint
// sets for the given classes so the pipeline has something real to serve.
func trainedArtifact(t *testing.T, order *landmarks.Order, classes []int) *model.Artifact {
	t.Helper()

	builder := features.NewBuilder(order)

	var x, y [][]float64
	for rep := 0; rep < 4; rep++ {
		for _, class := range classes {
			vec, err := builder.Build(landmarks.SyntheticSet(order, class))
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			target, err := labels.OneHot(class)
			if err != nil {
				t.Fatalf("OneHot() error = %v", err)
			}
			x = append(x, vec)
			y = append(y, target)
		}
	}

	scaler := features.NewMinMaxScaler()
	scaled, err := scaler.FitTransform(x)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	network := model.NewNetwork(builder.Len(), 17)
	cfg := model.TrainConfig{Epochs: 40, BatchSize: 6, LearningRate: 0.01}
	history, err := network.Train(scaled, y, nil, nil, cfg)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if history.Best.ValAccuracy < 1.0 {
		t.Logf("training did not fully converge: best accuracy %.3f", history.Best.ValAccuracy)
	}

	return &model.Artifact{Scaler: scaler, Network: network, OrderVersion: order.Version}
}

func TestRecognizer_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping training-backed test")
	}

	order := landmarks.DefaultOrder()
	classes := []int{0, 16, 22}
	art := trainedArtifact(t, order, classes)

	rec, err := New(landmarks.NewMockProvider(), order, art)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, class := range classes {
		pred, err := rec.RecognizeSet(landmarks.SyntheticSet(order, class))
		if err != nil {
			t.Fatalf("RecognizeSet(class %d) error = %v", class, err)
		}

		if pred.Index != class {
			t.Errorf("predicted class %d, want %d", pred.Index, class)
		}
		if pred.Confidence <= 0.5 {
			t.Errorf("confidence = %.3f for class %d, want > 0.5", pred.Confidence, class)
		}

		wantLabel, _ := labels.Map(class)
		if pred.Label != wantLabel {
			t.Errorf("label = %q, want %q", pred.Label, wantLabel)
		}
		if pred.Display != labels.Display(wantLabel) {
			t.Errorf("display = %q, want %q", pred.Display, labels.Display(wantLabel))
		}
	}
}

func TestRecognizer_AliasedDisplay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping training-backed test")
	}

	order := landmarks.DefaultOrder()
	art := trainedArtifact(t, order, []int{0, 5})

	rec, err := New(landmarks.NewMockProvider(), order, art)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	pred, err := rec.RecognizeSet(landmarks.SyntheticSet(order, 0))
	if err != nil {
		t.Fatalf("RecognizeSet() error = %v", err)
	}

	if pred.Index != 0 {
		t.Skipf("model predicted %d, alias check needs class 0", pred.Index)
	}
	// Class 0 is the digit "0"; its presentation form is "o".
	if pred.Label != "0" || pred.Display != "o" {
		t.Errorf("label/display = %q/%q, want \"0\"/\"o\"", pred.Label, pred.Display)
	}
}

func TestNew_OrderVersionMismatch(t *testing.T) {
	order := landmarks.DefaultOrder()
	scaler := features.NewMinMaxScaler()
	vecs := [][]float64{make([]float64, features.PairCount(order.Len()))}
	if err := scaler.Fit(vecs); err != nil {
		t.Fatal(err)
	}

	art := &model.Artifact{
		Scaler:       scaler,
		Network:      model.NewNetwork(features.PairCount(order.Len()), 1),
		OrderVersion: "v0-legacy",
	}

	if _, err := New(landmarks.NewMockProvider(), order, art); err == nil {
		t.Error("expected error for mismatched order version")
	}
}

func TestNew_DimensionMismatch(t *testing.T) {
	order := landmarks.DefaultOrder()
	scaler := features.NewMinMaxScaler()
	if err := scaler.Fit([][]float64{make([]float64, 10)}); err != nil {
		t.Fatal(err)
	}

	art := &model.Artifact{
		Scaler:       scaler,
		Network:      model.NewNetwork(10, 1),
		OrderVersion: order.Version,
	}

	_, err := New(landmarks.NewMockProvider(), order, art)
	var mismatch *model.ArtifactMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error = %v, want *ArtifactMismatchError", err)
	}
}

func TestRecognizer_DetectionErrorPropagates(t *testing.T) {
	order := landmarks.DefaultOrder()
	builder := features.NewBuilder(order)

	scaler := features.NewMinMaxScaler()
	if err := scaler.Fit([][]float64{make([]float64, builder.Len())}); err != nil {
		t.Fatal(err)
	}
	art := &model.Artifact{
		Scaler:       scaler,
		Network:      model.NewNetwork(builder.Len(), 1),
		OrderVersion: order.Version,
	}

	provider := landmarks.NewMockProvider()
	provider.SetError(&landmarks.DetectionError{Region: landmarks.RegionLeftHand})

	rec, err := New(provider, order, art)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = rec.Recognize(nil)
	var detErr *landmarks.DetectionError
	if !errors.As(err, &detErr) {
		t.Fatalf("error = %v, want *DetectionError", err)
	}
	if detErr.Region != landmarks.RegionLeftHand {
		t.Errorf("region = %q, want %q", detErr.Region, landmarks.RegionLeftHand)
	}
}
