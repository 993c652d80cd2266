package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	PredictionHeader = "Customer Churn Prediction"
	FieldModel       = "model"
)

type PredictionDisplay struct {
	Id         uuid.UUID
	Header     string
	Severity   Severity
	Message    string
	Model      ModelID
	ModelName  string
	Prediction Prediction
	Features   []float64
}

// Evaluator runs one prediction per form submission. It keeps no state between
// calls besides the registry and the predictor cache.
type Evaluator struct {
	registry   *Registry
	predictors *PredictorCache
}

func NewEvaluator(registry *Registry, predictors *PredictorCache) *Evaluator {
	return &Evaluator{registry: registry, predictors: predictors}
}

func (e *Evaluator) Registry() *Registry {
	return e.registry
}

// Evaluate validates raw, encodes it, loads the selected model and predicts.
// Errors are always *EvalError. Missing input is detected before any model is
// resolved or loaded.
func (e *Evaluator) Evaluate(ctx context.Context, modelID string, raw RawFields) (PredictionDisplay, error) {
	missing := raw.MissingFields()
	if modelID == "" {
		missing = append([]string{FieldModel}, missing...)
	}
	if len(missing) > 0 {
		return PredictionDisplay{}, &EvalError{
			Kind:   KindMissingInput,
			Fields: missing,
			Err:    &FieldError{Missing: missing, kind: ErrMissingInput},
		}
	}

	desc, err := e.registry.Lookup(modelID)
	if err != nil {
		slog.Warn("prediction requested for unknown model", "model_id", modelID)
		return PredictionDisplay{}, classify(err)
	}

	record, err := Encode(raw)
	if err != nil {
		slog.Info("rejecting malformed prediction input", "model_id", desc.ID, "error", err)
		return PredictionDisplay{}, classify(err)
	}
	features := record.Vector()

	start := time.Now()
	predictor, release, err := e.predictors.Get(ctx, desc)
	if err != nil {
		slog.Error("error loading model", "model_id", desc.ID, "error", err)
		return PredictionDisplay{}, classify(err)
	}
	defer release()

	prediction, err := predictor.Predict(ctx, features)
	if err != nil {
		slog.Error("error running prediction", "model_id", desc.ID, "error", err)
		return PredictionDisplay{}, classify(fmt.Errorf("error running %s: %w", desc.ID, err))
	}

	display := PredictionDisplay{
		Id:         uuid.New(),
		Header:     PredictionHeader,
		Severity:   SeveritySuccess,
		Message:    predictionMessage(desc, prediction),
		Model:      desc.ID,
		ModelName:  desc.DisplayName,
		Prediction: prediction,
		Features:   features,
	}

	slog.Info("prediction complete", "id", display.Id, "model_id", desc.ID, "label", prediction.Label, "probability", prediction.Probability, "duration", time.Since(start))

	return display, nil
}

func predictionMessage(desc ModelDescriptor, p Prediction) string {
	if p.Churns() {
		return fmt.Sprintf("%s predicts this customer will churn (%.1f%% churn probability).", desc.DisplayName, p.Probability*100)
	}
	return fmt.Sprintf("%s predicts this customer will stay (%.1f%% churn probability).", desc.DisplayName, p.Probability*100)
}
