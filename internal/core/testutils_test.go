package core

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// testTrees splits on age and on the Germany flag.
func testTrees() [][]TreeNode {
	return [][]TreeNode{
		{
			{FeatureIdx: 2, Threshold: 40, LeftChild: 1, RightChild: 2},
			{IsLeaf: true, Value: []float64{8, 2}},
			{IsLeaf: true, Value: []float64{4, 6}},
		},
		{
			{FeatureIdx: 10, Threshold: 0.5, LeftChild: 1, RightChild: 2},
			{IsLeaf: true, Value: []float64{9, 1}},
			{IsLeaf: true, Value: []float64{3, 7}},
		},
	}
}

func writeTestForest(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "random_forest.forest.json")
	require.NoError(t, SaveForest(path, NumFeatures, []int{0, 1}, testTrees()))
	return path
}

type constantPredictor struct {
	prediction Prediction
	released   *atomic.Int32
}

func (p *constantPredictor) Predict(ctx context.Context, features []float64) (Prediction, error) {
	return p.prediction, nil
}

func (p *constantPredictor) Release() {
	if p.released != nil {
		p.released.Add(1)
	}
}

// countingFormat records how many artifacts it was asked to load.
type countingFormat struct {
	loads    atomic.Int32
	released atomic.Int32
}

func (f *countingFormat) Name() string { return "counting" }

func (f *countingFormat) Extensions() []string { return []string{".bin"} }

func (f *countingFormat) Load(path string) (Predictor, error) {
	f.loads.Add(1)
	return &constantPredictor{prediction: Prediction{Label: 1, Probability: 0.9, Family: "counting"}, released: &f.released}, nil
}
