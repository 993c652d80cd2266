package core

import (
	"context"
	"fmt"
)

// ModelID identifies one of the pre-trained churn classifiers
type ModelID string

// Available models
const (
	Coral        ModelID = "coral"
	RandomForest ModelID = "random_forest"
)

type ModelDescriptor struct {
	ID          ModelID
	DisplayName string
	// Artifact is the file name relative to the models directory.
	Artifact string
}

var descriptors = [...]ModelDescriptor{
	{ID: Coral, DisplayName: "CORAL (Best Performing)", Artifact: "coral.onnx"},
	{ID: RandomForest, DisplayName: "Random Forest", Artifact: "random_forest.forest.json"},
}

// Registry is the static model table. It is built once at startup and is safe
// to share between requests.
type Registry struct {
	models []ModelDescriptor
	byID   map[ModelID]ModelDescriptor
}

func NewRegistry(models ...ModelDescriptor) *Registry {
	if len(models) == 0 {
		models = descriptors[:]
	}

	r := &Registry{
		models: make([]ModelDescriptor, len(models)),
		byID:   make(map[ModelID]ModelDescriptor, len(models)),
	}
	copy(r.models, models)
	for _, m := range r.models {
		r.byID[m.ID] = m
	}
	return r
}

func (r *Registry) Lookup(id string) (ModelDescriptor, error) {
	desc, ok := r.byID[ModelID(id)]
	if !ok {
		return ModelDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	return desc, nil
}

// Models returns the descriptors in display order.
func (r *Registry) Models() []ModelDescriptor {
	out := make([]ModelDescriptor, len(r.models))
	copy(out, r.models)
	return out
}

func (r *Registry) Len() int {
	return len(r.models)
}

// Prediction is the model output normalized across model families.
type Prediction struct {
	// Label is 1 when the customer is predicted to churn.
	Label int
	// Probability is the estimated probability of churn.
	Probability float64
	Family      string
	Raw         []float64
}

func (p Prediction) Churns() bool {
	return p.Label == 1
}

type Predictor interface {
	Predict(ctx context.Context, features []float64) (Prediction, error)

	Release()
}
