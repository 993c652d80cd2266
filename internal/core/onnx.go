//go:build !windows

package core

import (
	"context"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// InitOnnxRuntime loads the ONNX Runtime shared library. It must succeed
// before an OnnxFormat is registered with a Loader.
func InitOnnxRuntime(dylib string) (func() error, error) {
	ort.SetSharedLibraryPath(dylib)
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("could not init ONNX Runtime: %w", err)
	}
	return ort.DestroyEnvironment, nil
}

type OnnxModel struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
}

func (f OnnxFormat) Load(path string) (Predictor, error) {
	if !ort.IsInitialized() {
		return nil, fmt.Errorf("%w: ONNX Runtime is not initialized", ErrUnsupportedFormat)
	}

	onnxBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read onnx model: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSessionWithONNXData(
		onnxBytes,
		[]string{f.InputName},
		[]string{f.OutputName},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory session: %w", err)
	}

	return &OnnxModel{session: session}, nil
}

func (m *OnnxModel) Predict(ctx context.Context, features []float64) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	row := make([]float32, len(features))
	for i, v := range features {
		row[i] = float32(v)
	}

	inT, err := ort.NewTensor(ort.NewShape(1, int64(len(row))), row)
	if err != nil {
		return Prediction{}, err
	}
	defer inT.Destroy()

	// A nil output is allocated by the runtime.
	outputs := []ort.Value{nil}

	m.mu.Lock()
	err = m.session.Run([]ort.Value{inT}, outputs)
	m.mu.Unlock()
	if err != nil {
		return Prediction{}, fmt.Errorf("session run error: %w", err)
	}
	defer outputs[0].Destroy()

	outT, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return Prediction{}, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}

	// First row of the [1, K] batch output.
	return normalizeRankLogits(outT.GetData())
}

func (m *OnnxModel) Release() {
	m.session.Destroy()
}
