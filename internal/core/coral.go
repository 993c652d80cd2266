package core

import (
	"errors"
	"math"
)

const FamilyNeuralNet = "neural_network"

// OnnxFormat loads CORAL ordinal networks exported to ONNX. The network takes a
// [1, NumFeatures] float32 batch and emits one logit per rank threshold.
type OnnxFormat struct {
	InputName  string
	OutputName string
}

var _ ModelFormat = OnnxFormat{}

func (OnnxFormat) Name() string {
	return FamilyNeuralNet
}

func (OnnxFormat) Extensions() []string {
	return []string{".onnx"}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// normalizeRankLogits converts CORAL threshold logits into a churn prediction.
// P(rank > k) = sigmoid(logit_k); the first threshold separates the retained
// class from churn.
func normalizeRankLogits(logits []float32) (Prediction, error) {
	if len(logits) == 0 {
		return Prediction{}, errors.New("model returned no outputs")
	}

	probs := make([]float64, len(logits))
	rank := 0
	for i, logit := range logits {
		v := float64(logit)
		if math.IsNaN(v) {
			return Prediction{}, errors.New("model returned NaN logit")
		}
		probs[i] = sigmoid(v)
		if probs[i] > 0.5 {
			rank++
		}
	}

	return Prediction{
		Label:       min(rank, 1),
		Probability: probs[0],
		Family:      FamilyNeuralNet,
		Raw:         probs,
	}, nil
}
