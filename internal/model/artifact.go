package model

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/signlab/pjmsign/internal/features"
)

// ArtifactVersion identifies the on-disk artifact schema.
const ArtifactVersion = 1

// ArtifactMismatchError reports an inconsistent scaler/model pairing inside
// an artifact. Fatal at load time; the session must not start.
type ArtifactMismatchError struct {
	ScalerDim int
	ModelDim  int
}

func (e *ArtifactMismatchError) Error() string {
	return fmt.Sprintf("model: artifact scaler dimensionality %d disagrees with model input %d",
		e.ScalerDim, e.ModelDim)
}

// Artifact bundles everything needed to serve predictions: the fitted
// scaler, the trained network and the keypoint order version they were
// built against. Scaler and model always travel together; a model trained
// against one scaler is invalid with another.
type Artifact struct {
	Scaler       *features.MinMaxScaler
	Network      *Network
	OrderVersion string
}

// artifactFile is the persisted JSON form of an Artifact.
type artifactFile struct {
	Version      int                    `json:"version"`
	OrderVersion string                 `json:"order_version"`
	Scaler       *features.MinMaxScaler `json:"scaler"`
	Model        networkState           `json:"model"`
}

type networkState struct {
	InputDim int          `json:"input_dim"`
	Layers   []layerState `json:"layers"`
}

type layerState struct {
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Weights []float64 `json:"weights"`
	Biases  []float64 `json:"biases"`
}

// Save writes the artifact atomically: a temp file in the target directory
// followed by a rename, so a crash never leaves a torn artifact behind.
func (a *Artifact) Save(path string) error {
	if a.Scaler.Dim() != a.Network.InputDim() {
		return &ArtifactMismatchError{ScalerDim: a.Scaler.Dim(), ModelDim: a.Network.InputDim()}
	}

	state := networkState{InputDim: a.Network.inputDim}
	for _, l := range a.Network.layers {
		r, c := l.w.Dims()
		state.Layers = append(state.Layers, layerState{
			Rows:    r,
			Cols:    c,
			Weights: append([]float64(nil), l.w.RawMatrix().Data...),
			Biases:  append([]float64(nil), l.b.RawVector().Data...),
		})
	}

	data, err := json.Marshal(artifactFile{
		Version:      ArtifactVersion,
		OrderVersion: a.OrderVersion,
		Scaler:       a.Scaler,
		Model:        state,
	})
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads an artifact and verifies that the scaler and model
// agree on feature dimensionality. Any inconsistency aborts the load.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if file.Version != ArtifactVersion {
		return nil, fmt.Errorf("model: unsupported artifact version %d", file.Version)
	}
	if file.Scaler == nil || !file.Scaler.Fitted() {
		return nil, fmt.Errorf("model: artifact carries no fitted scaler")
	}
	if len(file.Model.Layers) == 0 {
		return nil, fmt.Errorf("model: artifact carries no layers")
	}
	if file.Scaler.Dim() != file.Model.InputDim {
		return nil, &ArtifactMismatchError{ScalerDim: file.Scaler.Dim(), ModelDim: file.Model.InputDim}
	}

	n := &Network{
		inputDim: file.Model.InputDim,
		rng:      rand.New(rand.NewSource(1)),
	}
	in := file.Model.InputDim
	for i, l := range file.Model.Layers {
		if l.Cols != in {
			return nil, fmt.Errorf("model: layer %d expects %d inputs, previous layer provides %d", i, l.Cols, in)
		}
		if len(l.Weights) != l.Rows*l.Cols || len(l.Biases) != l.Rows {
			return nil, fmt.Errorf("model: layer %d has malformed parameter counts", i)
		}
		n.layers = append(n.layers, denseLayer{
			w: mat.NewDense(l.Rows, l.Cols, append([]float64(nil), l.Weights...)),
			b: mat.NewVecDense(l.Rows, append([]float64(nil), l.Biases...)),
		})
		in = l.Rows
	}
	if in != NumClasses {
		return nil, fmt.Errorf("model: artifact output width %d, want %d classes", in, NumClasses)
	}

	return &Artifact{
		Scaler:       file.Scaler,
		Network:      n,
		OrderVersion: file.OrderVersion,
	}, nil
}
