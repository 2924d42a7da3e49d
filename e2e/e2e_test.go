package e2e

import (
	"path/filepath"
	"testing"

	"github.com/signlab/pjmsign/internal/dataset"
	"github.com/signlab/pjmsign/internal/features"
	"github.com/signlab/pjmsign/internal/labels"
	"github.com/signlab/pjmsign/internal/landmarks"
	"github.com/signlab/pjmsign/internal/model"
	"github.com/signlab/pjmsign/internal/pipeline"
	"github.com/signlab/pjmsign/internal/runstore"
)

// TestE2E_TrainAndRecognize exercises the complete workflow: synthetic
// landmark sets become CSV datasets, a network is trained with run
// bookkeeping and checkpointing, and the saved artifact drives a
// recognizer back to the original labels.
func TestE2E_TrainAndRecognize(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	order := landmarks.DefaultOrder()
	builder := features.NewBuilder(order)
	classes := []int{0, 16, 22} // "0", "o", "ty"

	featPath := filepath.Join(tmpDir, "X.csv")
	targPath := filepath.Join(tmpDir, "y.csv")

	t.Run("BuildDataset", func(t *testing.T) {
		var x, y [][]float64
		for _, class := range classes {
			set := landmarks.SyntheticSet(order, class)
			vec, err := builder.Build(set)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			target, err := labels.OneHot(class)
			if err != nil {
				t.Fatalf("OneHot() error = %v", err)
			}
			for i := 0; i < 4; i++ {
				x = append(x, vec)
				y = append(y, target)
			}
		}

		if err := dataset.SaveMatrix(featPath, x); err != nil {
			t.Fatalf("SaveMatrix() error = %v", err)
		}
		if err := dataset.SaveMatrix(targPath, y); err != nil {
			t.Fatalf("SaveMatrix() error = %v", err)
		}
	})

	store, err := runstore.New(filepath.Join(tmpDir, "runs.db"))
	if err != nil {
		t.Fatalf("runstore.New() error = %v", err)
	}
	defer store.Close()

	artifactPath := filepath.Join(tmpDir, "model.json")
	var runID string

	t.Run("Train", func(t *testing.T) {
		x, y, err := dataset.LoadSplit(featPath, targPath, builder.Len(), labels.Count)
		if err != nil {
			t.Fatalf("LoadSplit() error = %v", err)
		}

		scaler := features.NewMinMaxScaler()
		scaled, err := scaler.FitTransform(x)
		if err != nil {
			t.Fatalf("FitTransform() error = %v", err)
		}

		network := model.NewNetwork(builder.Len(), 1)

		run := &runstore.Run{
			Epochs:         40,
			BatchSize:      6,
			LearningRate:   0.01,
			CheckpointPath: artifactPath,
		}
		if err := store.Runs().Create(run); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		runID = run.ID

		cfg := model.TrainConfig{
			Epochs:       40,
			BatchSize:    6,
			LearningRate: 0.01,
			Checkpoint: func(m model.EpochMetrics) error {
				art := &model.Artifact{
					Scaler:       scaler,
					Network:      network,
					OrderVersion: order.Version,
				}
				return art.Save(artifactPath)
			},
		}

		history, err := network.Train(scaled, y, nil, nil, cfg)
		if err != nil {
			t.Fatalf("Train() error = %v", err)
		}

		for _, m := range history.Epochs {
			if err := store.Runs().AddEpoch(run.ID, m); err != nil {
				t.Fatalf("AddEpoch() error = %v", err)
			}
		}
		if err := store.Runs().Finish(run.ID, history.Best.ValAccuracy, artifactPath); err != nil {
			t.Fatalf("Finish() error = %v", err)
		}

		if history.Best.ValAccuracy < 0.9 {
			t.Errorf("Best.ValAccuracy = %v, want >= 0.9 on separable data", history.Best.ValAccuracy)
		}
	})

	t.Run("RunRecorded", func(t *testing.T) {
		run, err := store.Runs().GetByID(runID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if !run.FinishedAt.Valid {
			t.Error("run not marked finished")
		}

		epochs, err := store.Runs().EpochsByRun(runID)
		if err != nil {
			t.Fatalf("EpochsByRun() error = %v", err)
		}
		if len(epochs) != 40 {
			t.Errorf("recorded epochs = %d, want 40", len(epochs))
		}
	})

	t.Run("Recognize", func(t *testing.T) {
		provider := landmarks.NewMockProvider()
		rec, err := pipeline.Load(artifactPath, provider, order)
		if err != nil {
			t.Fatalf("pipeline.Load() error = %v", err)
		}
		defer rec.Close()

		for _, class := range classes {
			set := landmarks.SyntheticSet(order, class)
			pred, err := rec.RecognizeSet(set)
			if err != nil {
				t.Fatalf("RecognizeSet(class %d) error = %v", class, err)
			}
			if pred.Index != class {
				t.Errorf("class %d: predicted %d (%s)", class, pred.Index, pred.Label)
			}
			if pred.Confidence <= 0.5 {
				t.Errorf("class %d: confidence = %v, want > 0.5", class, pred.Confidence)
			}
		}
	})

	t.Run("AliasedDisplay", func(t *testing.T) {
		provider := landmarks.NewMockProvider()
		rec, err := pipeline.Load(artifactPath, provider, order)
		if err != nil {
			t.Fatalf("pipeline.Load() error = %v", err)
		}
		defer rec.Close()

		pred, err := rec.RecognizeSet(landmarks.SyntheticSet(order, 0))
		if err != nil {
			t.Fatalf("RecognizeSet() error = %v", err)
		}
		if pred.Label != "0" {
			t.Fatalf("Label = %q, want %q", pred.Label, "0")
		}
		if pred.Display != "o" {
			t.Errorf("Display = %q, want %q", pred.Display, "o")
		}
	})
}
