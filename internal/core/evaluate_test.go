package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEvaluator(t *testing.T, dir string, cacheSize int, formats ...ModelFormat) *Evaluator {
	t.Helper()
	if len(formats) == 0 {
		formats = []ModelFormat{OnnxFormat{InputName: "input", OutputName: "logits"}, ForestFormat{}}
	}
	registry := NewRegistry()
	cache, err := NewPredictorCache(NewLoader(dir, formats...), cacheSize, registry.Len())
	require.NoError(t, err)
	return NewEvaluator(registry, cache)
}

func requireEvalError(t *testing.T, err error, kind ErrorKind) *EvalError {
	t.Helper()
	require.Error(t, err)
	var evalErr *EvalError
	require.True(t, errors.As(err, &evalErr), "expected *EvalError, got %T", err)
	assert.Equal(t, kind, evalErr.Kind)
	return evalErr
}

func TestEvaluateRandomForest(t *testing.T) {
	dir := t.TempDir()
	writeTestForest(t, dir)
	evaluator := setupEvaluator(t, dir, 0)

	display, err := evaluator.Evaluate(context.Background(), "random_forest", validFields())
	require.NoError(t, err)

	assert.Equal(t, SeveritySuccess, display.Severity)
	assert.Equal(t, PredictionHeader, display.Header)
	assert.Equal(t, RandomForest, display.Model)
	assert.Equal(t, "Random Forest", display.ModelName)
	assert.Contains(t, display.Message, "Random Forest")
	assert.Contains(t, display.Message, "stay")
	assert.Equal(t, []float64{650, 0, 35, 50000.0, 3, 1, 5, 1, 60000, 0, 1, 0}, display.Features)
	assert.InDelta(t, 0.45, display.Prediction.Probability, 1e-9)
	assert.NotEqual(t, display.Id.String(), "00000000-0000-0000-0000-000000000000")
}

func TestEvaluateTwiceIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeTestForest(t, dir)
	evaluator := setupEvaluator(t, dir, 0)

	first, err := evaluator.Evaluate(context.Background(), "random_forest", validFields())
	require.NoError(t, err)
	second, err := evaluator.Evaluate(context.Background(), "random_forest", validFields())
	require.NoError(t, err)

	assert.Equal(t, first.Features, second.Features)
	assert.Equal(t, first.Prediction, second.Prediction)
	assert.NotEqual(t, first.Id, second.Id)
}

func TestEvaluateMissingInputSkipsLoading(t *testing.T) {
	format := &countingFormat{}
	// The models directory does not exist; any load attempt would fail with
	// ErrArtifactNotFound instead of missing input.
	evaluator := setupEvaluator(t, filepath.Join(t.TempDir(), "absent"), 0, format)

	for _, field := range requiredFields {
		raw := validFields()
		raw[field] = "  "

		_, err := evaluator.Evaluate(context.Background(), string(RandomForest), raw)
		evalErr := requireEvalError(t, err, KindMissingInput)
		assert.Equal(t, []string{field}, evalErr.Fields)

		display := evalErr.Display()
		assert.Equal(t, SeverityInfo, display.Severity)
		assert.Contains(t, display.Message, field)
	}

	assert.Equal(t, int32(0), format.loads.Load())
}

func TestEvaluateNoModelSelected(t *testing.T) {
	evaluator := setupEvaluator(t, t.TempDir(), 0)

	_, err := evaluator.Evaluate(context.Background(), "", validFields())
	evalErr := requireEvalError(t, err, KindMissingInput)
	assert.Equal(t, []string{FieldModel}, evalErr.Fields)
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestEvaluateUnknownModel(t *testing.T) {
	evaluator := setupEvaluator(t, t.TempDir(), 0)

	_, err := evaluator.Evaluate(context.Background(), "gradient_boosting", validFields())
	evalErr := requireEvalError(t, err, KindUnknownModel)
	assert.Equal(t, SeverityDanger, evalErr.Display().Severity)
}

func TestEvaluateCoralArtifactNotFound(t *testing.T) {
	evaluator := setupEvaluator(t, t.TempDir(), 0)

	_, err := evaluator.Evaluate(context.Background(), "coral", validFields())
	evalErr := requireEvalError(t, err, KindArtifactNotFound)
	assert.ErrorIs(t, err, ErrArtifactNotFound)
	assert.Equal(t, SeverityDanger, evalErr.Display().Severity)
}

func TestEvaluateCoralWithoutRuntime(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coral.onnx"), []byte("onnx"), 0o600))
	evaluator := setupEvaluator(t, dir, 0, ForestFormat{})

	_, err := evaluator.Evaluate(context.Background(), "coral", validFields())
	requireEvalError(t, err, KindUnsupportedFormat)
}

func TestEvaluateMalformedInput(t *testing.T) {
	dir := t.TempDir()
	writeTestForest(t, dir)
	evaluator := setupEvaluator(t, dir, 0)

	raw := validFields()
	raw[FieldCreditScore] = "six fifty"

	_, err := evaluator.Evaluate(context.Background(), "random_forest", raw)
	evalErr := requireEvalError(t, err, KindMalformedInput)
	assert.Equal(t, FieldCreditScore, evalErr.Field)

	display := evalErr.Display()
	assert.Equal(t, SeverityDanger, display.Severity)
	assert.Equal(t, "Invalid value for credit_score: expected a number.", display.Message)
}

func TestEvaluateWithCache(t *testing.T) {
	dir := t.TempDir()
	writeTestForest(t, dir)
	evaluator := setupEvaluator(t, dir, 1)

	_, err := evaluator.Evaluate(context.Background(), "random_forest", validFields())
	require.NoError(t, err)

	// Cached predictors keep serving after the artifact is gone.
	require.NoError(t, os.Remove(filepath.Join(dir, "random_forest.forest.json")))
	_, err = evaluator.Evaluate(context.Background(), "random_forest", validFields())
	require.NoError(t, err)
}
