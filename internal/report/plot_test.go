package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/signlab/pjmsign/internal/model"
)

func TestTrainingCurves(t *testing.T) {
	epochs := []model.EpochMetrics{
		{Epoch: 1, Loss: 2.1, ValAccuracy: 0.2, ValPrecision: 0.2, ValRecall: 0.2},
		{Epoch: 2, Loss: 1.4, ValAccuracy: 0.5, ValPrecision: 0.5, ValRecall: 0.4},
		{Epoch: 3, Loss: 0.9, ValAccuracy: 0.8, ValPrecision: 0.7, ValRecall: 0.7},
	}

	path := filepath.Join(t.TempDir(), "curves.png")
	if err := TrainingCurves(epochs, "test run", path); err != nil {
		t.Fatalf("TrainingCurves() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}

func TestTrainingCurves_NoEpochs(t *testing.T) {
	if err := TrainingCurves(nil, "empty", "unused.png"); err == nil {
		t.Error("expected error for empty history")
	}
}
