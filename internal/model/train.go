package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// TrainConfig holds the knobs of one training run. The core never reads
// global configuration; callers populate this from their own settings.
type TrainConfig struct {
	// Epochs is the number of full passes over the training set.
	Epochs int

	// BatchSize is the mini-batch size for gradient averaging.
	BatchSize int

	// LearningRate is the fixed Adamax step size.
	LearningRate float64

	// Checkpoint, when set, is invoked after every epoch whose validation
	// accuracy strictly improves on the best seen so far. An epoch that
	// does not improve is simply discarded; nothing is persisted for it.
	Checkpoint func(EpochMetrics) error
}

// DefaultTrainConfig returns the training defaults used for the published
// sign classifier.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Epochs:       100,
		BatchSize:    32,
		LearningRate: 1e-4,
	}
}

// EpochMetrics records the tracked metrics of one epoch.
type EpochMetrics struct {
	Epoch        int     `json:"epoch"`
	Loss         float64 `json:"loss"`
	ValAccuracy  float64 `json:"val_accuracy"`
	ValPrecision float64 `json:"val_precision"`
	ValRecall    float64 `json:"val_recall"`
}

// History is the full per-epoch record of a training run.
type History struct {
	Epochs []EpochMetrics
	Best   EpochMetrics
}

// Train fits the network on one-hot encoded 27-class targets by minimizing
// categorical cross-entropy with the Adamax optimizer. Validation metrics
// are computed each epoch on the held-out split; when valX is empty the
// training set itself is used, which only makes sense for smoke tests.
func (n *Network) Train(trainX, trainY, valX, valY [][]float64, cfg TrainConfig) (*History, error) {
	if len(trainX) == 0 {
		return nil, errors.New("model: empty training set")
	}
	if len(trainX) != len(trainY) {
		return nil, fmt.Errorf("model: %d feature rows but %d target rows", len(trainX), len(trainY))
	}
	if cfg.Epochs <= 0 || cfg.BatchSize <= 0 || cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("model: invalid train config %+v", cfg)
	}
	for i, y := range trainY {
		if len(y) != NumClasses {
			return nil, fmt.Errorf("model: target row %d has %d classes, want %d", i, len(y), NumClasses)
		}
	}
	if len(valX) == 0 {
		valX, valY = trainX, trainY
	}

	opt := newAdamax(cfg.LearningRate, n.layers)

	history := &History{Best: EpochMetrics{ValAccuracy: -1}}
	order := make([]int, len(trainX))
	for i := range order {
		order[i] = i
	}

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		n.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		var epochLoss float64
		for start := 0; start < len(order); start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}
			batch := order[start:end]

			grads := newGradients(n.layers)
			for _, idx := range batch {
				loss, err := n.backprop(trainX[idx], trainY[idx], grads)
				if err != nil {
					return nil, err
				}
				epochLoss += loss
			}
			grads.scale(1 / float64(len(batch)))
			opt.step(n.layers, grads)
		}

		acc, prec, rec, err := n.Evaluate(valX, valY)
		if err != nil {
			return nil, err
		}

		m := EpochMetrics{
			Epoch:        epoch,
			Loss:         epochLoss / float64(len(trainX)),
			ValAccuracy:  acc,
			ValPrecision: prec,
			ValRecall:    rec,
		}
		history.Epochs = append(history.Epochs, m)

		// Monotonic best-so-far retention: persist only on strict
		// improvement of validation accuracy.
		if m.ValAccuracy > history.Best.ValAccuracy {
			history.Best = m
			if cfg.Checkpoint != nil {
				if err := cfg.Checkpoint(m); err != nil {
					return nil, fmt.Errorf("checkpoint epoch %d: %w", epoch, err)
				}
			}
		}
	}

	return history, nil
}

// Evaluate computes accuracy, macro precision and macro recall of the
// network's argmax predictions against one-hot targets.
func (n *Network) Evaluate(x, y [][]float64) (acc, prec, rec float64, err error) {
	if len(x) != len(y) {
		return 0, 0, 0, fmt.Errorf("model: %d feature rows but %d target rows", len(x), len(y))
	}
	for i, row := range y {
		if len(row) != NumClasses {
			return 0, 0, 0, fmt.Errorf("model: target row %d has %d classes, want %d", i, len(row), NumClasses)
		}
	}

	yTrue := make([]int, len(x))
	yPred := make([]int, len(x))
	for i := range x {
		probs, err := n.Predict(x[i])
		if err != nil {
			return 0, 0, 0, err
		}
		yPred[i] = Argmax(probs)
		yTrue[i] = Argmax(y[i])
	}

	prec, rec = macroPrecisionRecall(yTrue, yPred, NumClasses)
	return accuracy(yTrue, yPred), prec, rec, nil
}

// trainCache holds the intermediate values of one forward pass needed for
// backpropagation.
type trainCache struct {
	inputs []*mat.VecDense // layer inputs, inputs[0] is the sample
	pre    []*mat.VecDense // pre-activation outputs
	masks  [][]float64     // inverted dropout masks per hidden layer
}

// backprop runs one stochastic forward/backward pass and accumulates the
// sample's gradients into grads. Returns the sample's cross-entropy loss.
func (n *Network) backprop(x, y []float64, grads *gradients) (float64, error) {
	if len(x) != n.inputDim {
		return 0, fmt.Errorf("model: sample has %d features, network expects %d", len(x), n.inputDim)
	}

	cache := trainCache{
		inputs: make([]*mat.VecDense, len(n.layers)),
		pre:    make([]*mat.VecDense, len(n.layers)),
		masks:  make([][]float64, len(n.layers)-1),
	}

	// Forward pass with LeakyReLU and inverted dropout on hidden layers.
	a := mat.NewVecDense(len(x), append([]float64(nil), x...))
	for i, layer := range n.layers {
		cache.inputs[i] = a

		z := mat.NewVecDense(layer.w.RawMatrix().Rows, nil)
		z.MulVec(layer.w, a)
		z.AddVec(z, layer.b)
		cache.pre[i] = z

		if i == len(n.layers)-1 {
			a = z
			break
		}

		out := mat.NewVecDense(z.Len(), append([]float64(nil), z.RawVector().Data...))
		leakyReLUInPlace(out)

		mask := make([]float64, out.Len())
		keep := 1 - DropoutRate
		data := out.RawVector().Data
		for j := range mask {
			if n.rng.Float64() < keep {
				mask[j] = 1 / keep
			}
			data[j] *= mask[j]
		}
		cache.masks[i] = mask
		a = out
	}

	probs := softmax(a.RawVector().Data)

	var loss float64
	for c, p := range probs {
		if y[c] > 0 {
			loss -= y[c] * math.Log(math.Max(p, 1e-15))
		}
	}

	// Softmax + cross-entropy gradient at the logits.
	delta := make([]float64, NumClasses)
	for c := range delta {
		delta[c] = probs[c] - y[c]
	}

	for l := len(n.layers) - 1; l >= 0; l-- {
		in := cache.inputs[l].RawVector().Data

		gw := grads.w[l]
		gb := grads.b[l]
		for r, d := range delta {
			gb.SetVec(r, gb.AtVec(r)+d)
			for c, av := range in {
				gw.Set(r, c, gw.At(r, c)+d*av)
			}
		}

		if l == 0 {
			break
		}

		// Propagate through the layer's weights, the previous layer's
		// dropout mask and the LeakyReLU derivative.
		prev := make([]float64, len(in))
		w := n.layers[l].w
		for c := range prev {
			var sum float64
			for r, d := range delta {
				sum += w.At(r, c) * d
			}
			sum *= cache.masks[l-1][c]
			if cache.pre[l-1].AtVec(c) < 0 {
				sum *= LeakySlope
			}
			prev[c] = sum
		}
		delta = prev
	}

	return loss, nil
}

// gradients accumulates weight and bias gradients per layer.
type gradients struct {
	w []*mat.Dense
	b []*mat.VecDense
}

func newGradients(layers []denseLayer) *gradients {
	g := &gradients{
		w: make([]*mat.Dense, len(layers)),
		b: make([]*mat.VecDense, len(layers)),
	}
	for i, l := range layers {
		r, c := l.w.Dims()
		g.w[i] = mat.NewDense(r, c, nil)
		g.b[i] = mat.NewVecDense(r, nil)
	}
	return g
}

func (g *gradients) scale(f float64) {
	for i := range g.w {
		g.w[i].Scale(f, g.w[i])
		g.b[i].ScaleVec(f, g.b[i])
	}
}

// adamax implements the Adamax optimizer (Adam with an infinity-norm
// second moment), as used to train the published classifier.
type adamax struct {
	lr, beta1, beta2, eps float64
	t                     int
	mW, uW                []*mat.Dense
	mB, uB                []*mat.VecDense
}

func newAdamax(lr float64, layers []denseLayer) *adamax {
	o := &adamax{lr: lr, beta1: 0.9, beta2: 0.999, eps: 1e-8}
	for _, l := range layers {
		r, c := l.w.Dims()
		o.mW = append(o.mW, mat.NewDense(r, c, nil))
		o.uW = append(o.uW, mat.NewDense(r, c, nil))
		o.mB = append(o.mB, mat.NewVecDense(r, nil))
		o.uB = append(o.uB, mat.NewVecDense(r, nil))
	}
	return o
}

func (o *adamax) step(layers []denseLayer, grads *gradients) {
	o.t++
	correction := 1 - math.Pow(o.beta1, float64(o.t))

	for i := range layers {
		o.stepSlice(layers[i].w.RawMatrix().Data, grads.w[i].RawMatrix().Data,
			o.mW[i].RawMatrix().Data, o.uW[i].RawMatrix().Data, correction)
		o.stepSlice(layers[i].b.RawVector().Data, grads.b[i].RawVector().Data,
			o.mB[i].RawVector().Data, o.uB[i].RawVector().Data, correction)
	}
}

func (o *adamax) stepSlice(w, g, m, u []float64, correction float64) {
	for k := range w {
		m[k] = o.beta1*m[k] + (1-o.beta1)*g[k]
		u[k] = math.Max(o.beta2*u[k], math.Abs(g[k]))
		w[k] -= (o.lr / correction) * m[k] / (u[k] + o.eps)
	}
}
