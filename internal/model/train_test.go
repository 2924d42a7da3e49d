package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trainingFixture builds a small separable problem: three distinct input
// patterns, each assigned one of the 27 classes and repeated a few times.
func trainingFixture(inputDim int) (x, y [][]float64) {
	patterns := [][]float64{
		make([]float64, inputDim),
		make([]float64, inputDim),
		make([]float64, inputDim),
	}
	for i := 0; i < inputDim; i++ {
		patterns[0][i] = 1
		patterns[1][i] = float64(i%2) * 0.5
		patterns[2][i] = 1 - float64(i)/float64(inputDim)
	}
	classes := []int{0, 9, 26}

	for rep := 0; rep < 4; rep++ {
		for p, pattern := range patterns {
			row := append([]float64(nil), pattern...)
			target := make([]float64, NumClasses)
			target[classes[p]] = 1
			x = append(x, row)
			y = append(y, target)
		}
	}
	return x, y
}

func TestNetwork_Train(t *testing.T) {
	x, y := trainingFixture(6)

	n := NewNetwork(6, 3)
	cfg := TrainConfig{Epochs: 60, BatchSize: 4, LearningRate: 0.005}

	history, err := n.Train(x, y, nil, nil, cfg)
	require.NoError(t, err)
	require.Len(t, history.Epochs, 60)

	// The separable fixture should be learned comfortably.
	assert.Greater(t, history.Best.ValAccuracy, 0.5)
	assert.Less(t, history.Epochs[len(history.Epochs)-1].Loss, history.Epochs[0].Loss)
}

func TestNetwork_TrainCheckpointOnImprovement(t *testing.T) {
	x, y := trainingFixture(6)

	n := NewNetwork(6, 5)

	var checkpoints []EpochMetrics
	cfg := TrainConfig{
		Epochs:       40,
		BatchSize:    4,
		LearningRate: 0.005,
		Checkpoint: func(m EpochMetrics) error {
			checkpoints = append(checkpoints, m)
			return nil
		},
	}

	history, err := n.Train(x, y, nil, nil, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, checkpoints, "at least the first epoch improves on the initial best")

	// Checkpoints fire only on strict improvement, so the recorded
	// accuracies must be strictly increasing.
	for i := 1; i < len(checkpoints); i++ {
		assert.Greater(t, checkpoints[i].ValAccuracy, checkpoints[i-1].ValAccuracy)
	}
	assert.Equal(t, history.Best.ValAccuracy, checkpoints[len(checkpoints)-1].ValAccuracy)
}

func TestNetwork_TrainValidation(t *testing.T) {
	n := NewNetwork(4, 1)

	t.Run("empty training set", func(t *testing.T) {
		_, err := n.Train(nil, nil, nil, nil, DefaultTrainConfig())
		assert.Error(t, err)
	})

	t.Run("row count mismatch", func(t *testing.T) {
		x := [][]float64{{0, 0, 0, 0}}
		_, err := n.Train(x, nil, nil, nil, DefaultTrainConfig())
		assert.Error(t, err)
	})

	t.Run("malformed one-hot width", func(t *testing.T) {
		x := [][]float64{{0, 0, 0, 0}}
		y := [][]float64{{1, 0}}
		_, err := n.Train(x, y, nil, nil, DefaultTrainConfig())
		assert.Error(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		x := [][]float64{{0, 0, 0, 0}}
		y := [][]float64{make([]float64, NumClasses)}
		_, err := n.Train(x, y, nil, nil, TrainConfig{Epochs: 0, BatchSize: 1, LearningRate: 0.1})
		assert.Error(t, err)
	})
}

func TestNetwork_EvaluateRejectsShortTargets(t *testing.T) {
	// A target row narrower than the class count must error instead of
	// silently scoring it as class 0.
	n := NewNetwork(4, 1)

	x := [][]float64{{0.1, 0.2, 0.3, 0.4}}
	y := [][]float64{make([]float64, NumClasses-1)}

	_, _, _, err := n.Evaluate(x, y)
	require.Error(t, err)
}

func TestMacroPrecisionRecall(t *testing.T) {
	yTrue := []int{0, 0, 1, 1, 2}
	yPred := []int{0, 1, 1, 1, 2}

	prec, rec := macroPrecisionRecall(yTrue, yPred, 3)

	// Class 0: precision 1/1, recall 1/2. Class 1: precision 2/3, recall 1.
	// Class 2: precision 1, recall 1.
	assert.InDelta(t, (1.0+2.0/3.0+1.0)/3, prec, 1e-12)
	assert.InDelta(t, (0.5+1.0+1.0)/3, rec, 1e-12)
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.75, accuracy([]int{1, 2, 3, 4}, []int{1, 2, 3, 0}))
	assert.Equal(t, 0.0, accuracy(nil, nil))
}
