package linear

import (
	"math"
	"sort"
)

type Options struct {
	Epochs       int
	LearningRate float64
	BatchSize    int
}

type Weights struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
}

type Metrics struct {
	Loss      float64 `json:"loss"`
	Accuracy  float64 `json:"accuracy"`
	AUC       float64 `json:"roc_auc"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

// TrainLogistic fits a logistic regression with mini-batch gradient
// descent. Gradients: dL/dw_i = (p-y)*x_i, dL/db = (p-y). Weights start at
// zero so training is deterministic for a given sample order.
func TrainLogistic(samples [][]float64, labels []float64, opts Options) (Weights, Metrics) {
	if opts.Epochs <= 0 {
		opts.Epochs = 200
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = 0.05
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}

	n := len(samples)
	if n == 0 {
		return Weights{}, Metrics{}
	}
	featureCount := len(samples[0])
	weights := make([]float64, featureCount)
	var bias float64

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for start := 0; start < n; start += opts.BatchSize {
			end := start + opts.BatchSize
			if end > n {
				end = n
			}

			grad := make([]float64, featureCount)
			var biasGrad float64
			for i := start; i < end; i++ {
				prediction := sigmoid(dot(weights, samples[i]) + bias)
				residual := prediction - labels[i]
				for j := 0; j < featureCount; j++ {
					grad[j] += residual * samples[i][j]
				}
				biasGrad += residual
			}

			batchLen := float64(end - start)
			for j := 0; j < featureCount; j++ {
				weights[j] -= opts.LearningRate * grad[j] / batchLen
			}
			bias -= opts.LearningRate * biasGrad / batchLen
		}
	}

	w := Weights{Bias: bias, Coefficients: weights}
	return w, Evaluate(w, samples, labels)
}

// Predict returns the probability of the positive class for one sample.
func Predict(weights Weights, sample []float64) float64 {
	return sigmoid(dot(weights.Coefficients, sample) + weights.Bias)
}

// Evaluate scores a fitted model on a labeled set. Accuracy, precision and
// recall use the 0.5 cut; AUC is rank-based with ties counted half.
func Evaluate(weights Weights, samples [][]float64, labels []float64) Metrics {
	if len(samples) == 0 {
		return Metrics{}
	}

	probs := make([]float64, len(samples))
	var loss float64
	var correct, truePos, falsePos, falseNeg int
	for i, sample := range samples {
		p := Predict(weights, sample)
		probs[i] = p

		clamped := clamp(p, 1e-9, 1-1e-9)
		loss += -labels[i]*math.Log(clamped) - (1-labels[i])*math.Log(1-clamped)

		predicted := p >= 0.5
		actual := labels[i] == 1
		if predicted == actual {
			correct++
		}
		switch {
		case predicted && actual:
			truePos++
		case predicted && !actual:
			falsePos++
		case !predicted && actual:
			falseNeg++
		}
	}

	m := Metrics{
		Loss:     loss / float64(len(samples)),
		Accuracy: float64(correct) / float64(len(samples)),
		AUC:      rocAUC(probs, labels),
	}
	if truePos+falsePos > 0 {
		m.Precision = float64(truePos) / float64(truePos+falsePos)
	}
	if truePos+falseNeg > 0 {
		m.Recall = float64(truePos) / float64(truePos+falseNeg)
	}
	return m
}

// rocAUC computes the area under the ROC curve via the rank-sum identity:
// AUC = (sum of positive ranks - nPos*(nPos+1)/2) / (nPos*nNeg).
func rocAUC(probs, labels []float64) float64 {
	type scored struct {
		prob  float64
		label float64
	}
	items := make([]scored, len(probs))
	for i := range probs {
		items[i] = scored{prob: probs[i], label: labels[i]}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].prob < items[j].prob })

	var nPos, nNeg float64
	var rankSum float64
	i := 0
	for i < len(items) {
		j := i
		for j < len(items) && items[j].prob == items[i].prob {
			j++
		}
		// Tied scores share the average rank of their block.
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if items[k].label == 1 {
				rankSum += avgRank
				nPos++
			} else {
				nNeg++
			}
		}
		i = j
	}

	if nPos == 0 || nNeg == 0 {
		return 0
	}
	return (rankSum - nPos*(nPos+1)/2) / (nPos * nNeg)
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
