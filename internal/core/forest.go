package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
)

const FamilyTreeEnsemble = "tree_ensemble"

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	IsLeaf     bool    `json:"is_leaf"`
	// Value holds the class counts (or probabilities) of a leaf, in the order
	// of the forest classes.
	Value []float64 `json:"value,omitempty"`
}

type forestArtifact struct {
	NFeatures int          `json:"n_features"`
	Classes   []int        `json:"classes"`
	Trees     [][]TreeNode `json:"trees"`
}

// Forest is a tree-ensemble classifier exported as JSON split nodes. It is
// read-only after load and safe for concurrent Predict calls.
type Forest struct {
	nFeatures int
	classes   []int
	churnIdx  int
	trees     [][]TreeNode
}

func NewForest(nFeatures int, classes []int, trees [][]TreeNode) (*Forest, error) {
	if nFeatures <= 0 {
		return nil, errors.New("forest must declare a positive feature count")
	}
	if len(classes) < 2 {
		return nil, fmt.Errorf("forest must have at least 2 classes, found %d", len(classes))
	}
	churnIdx := slices.Index(classes, 1)
	if churnIdx < 0 {
		return nil, errors.New("forest classes do not include the churn class 1")
	}
	if len(trees) == 0 {
		return nil, errors.New("forest has no trees")
	}

	for t, nodes := range trees {
		if err := validateTree(nodes, nFeatures, len(classes)); err != nil {
			return nil, fmt.Errorf("invalid tree %d: %w", t, err)
		}
	}

	return &Forest{
		nFeatures: nFeatures,
		classes:   slices.Clone(classes),
		churnIdx:  churnIdx,
		trees:     trees,
	}, nil
}

// Children are required to come after their parent, which also rules out
// cycles.
func validateTree(nodes []TreeNode, nFeatures, nClasses int) error {
	if len(nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			if len(node.Value) != nClasses {
				return fmt.Errorf("leaf %d has %d class values, expected %d", i, len(node.Value), nClasses)
			}
			total := 0.0
			for _, v := range node.Value {
				if v < 0 {
					return fmt.Errorf("leaf %d has a negative class value", i)
				}
				total += v
			}
			if total == 0 {
				return fmt.Errorf("leaf %d has an empty class distribution", i)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d, out of range [0, %d)", i, node.FeatureIdx, nFeatures)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(nodes) {
				return fmt.Errorf("node %d has invalid child index %d", i, child)
			}
		}
	}
	return nil
}

func (f *Forest) leaf(nodes []TreeNode, features []float64) TreeNode {
	idx := 0
	for {
		node := nodes[idx]
		if node.IsLeaf {
			return node
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

func (f *Forest) Predict(ctx context.Context, features []float64) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	if len(features) != f.nFeatures {
		return Prediction{}, fmt.Errorf("forest expects %d features, got %d", f.nFeatures, len(features))
	}

	dist := make([]float64, len(f.classes))
	for _, nodes := range f.trees {
		leaf := f.leaf(nodes, features)
		total := 0.0
		for _, v := range leaf.Value {
			total += v
		}
		for c, v := range leaf.Value {
			dist[c] += v / total
		}
	}

	best := 0
	for c := range dist {
		dist[c] /= float64(len(f.trees))
		if dist[c] > dist[best] {
			best = c
		}
	}

	label := 0
	if f.classes[best] == 1 {
		label = 1
	}

	return Prediction{
		Label:       label,
		Probability: dist[f.churnIdx],
		Family:      FamilyTreeEnsemble,
		Raw:         dist,
	}, nil
}

func (f *Forest) Release() {}

type ForestFormat struct{}

var _ ModelFormat = ForestFormat{}

func (ForestFormat) Name() string {
	return FamilyTreeEnsemble
}

func (ForestFormat) Extensions() []string {
	return []string{".forest.json"}
}

func (ForestFormat) Load(path string) (Predictor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading forest artifact: %w", err)
	}

	var artifact forestArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("error parsing forest artifact: %w", err)
	}

	return NewForest(artifact.NFeatures, artifact.Classes, artifact.Trees)
}

// SaveForest writes a forest in the artifact format read by ForestFormat.
func SaveForest(path string, nFeatures int, classes []int, trees [][]TreeNode) error {
	if _, err := NewForest(nFeatures, classes, trees); err != nil {
		return err
	}
	payload, err := json.Marshal(forestArtifact{NFeatures: nFeatures, Classes: classes, Trees: trees})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}
