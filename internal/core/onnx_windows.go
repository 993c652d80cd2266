//go:build windows

package core

import (
	"errors"
	"fmt"
)

var ErrOnnxNotSupportedOnWindows = errors.New("ONNX models are not supported on Windows")

func InitOnnxRuntime(_ string) (func() error, error) {
	return nil, ErrOnnxNotSupportedOnWindows
}

func (OnnxFormat) Load(_ string) (Predictor, error) {
	return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, ErrOnnxNotSupportedOnWindows)
}
