package api

import (
	"errors"
	"net/http"

	"churn-dashboard/internal/core"
	"churn-dashboard/pkg/api"

	"github.com/go-chi/chi/v5"
)

type BackendService struct {
	evaluator *core.Evaluator
}

func NewBackendService(evaluator *core.Evaluator) *BackendService {
	return &BackendService{evaluator: evaluator}
}

func (s *BackendService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Get("/models", RestHandler(s.ListModels))
	r.Route("/predict", func(r chi.Router) {
		r.Post("/", RestHandler(s.Predict))
		r.Get("/", RestHandler(s.PredictForm))
	})
}

func (s *BackendService) ListModels(r *http.Request) (any, error) {
	models := s.evaluator.Registry().Models()
	infos := make([]api.Model, 0, len(models))
	for _, m := range models {
		infos = append(infos, api.Model{Id: string(m.ID), Name: m.DisplayName})
	}
	return infos, nil
}

func (s *BackendService) Predict(r *http.Request) (any, error) {
	req, err := ParseRequest[api.PredictRequest](r)
	if err != nil {
		return nil, err
	}
	return s.evaluate(r, req.ModelId, req.Fields)
}

func (s *BackendService) PredictForm(r *http.Request) (any, error) {
	form, err := ParseRequestQueryParams[api.PredictForm](r)
	if err != nil {
		return nil, err
	}
	return s.evaluate(r, form.ModelId, form.Fields())
}

func (s *BackendService) evaluate(r *http.Request, modelID string, fields map[string]any) (any, error) {
	display, err := s.evaluator.Evaluate(r.Context(), modelID, core.RawFields(fields))
	if err != nil {
		var evalErr *core.EvalError
		if !errors.As(err, &evalErr) {
			return nil, CodedError(http.StatusInternalServerError, err)
		}
		return nil, CodedErrorWithBody(statusForKind(evalErr.Kind), err, evalErr.Display())
	}
	return display, nil
}

// Missing input is a prompt for the user rather than a failure.
func statusForKind(kind core.ErrorKind) int {
	switch kind {
	case core.KindMissingInput:
		return http.StatusOK
	case core.KindUnknownModel, core.KindArtifactNotFound:
		return http.StatusNotFound
	case core.KindUnsupportedFormat:
		return http.StatusUnprocessableEntity
	case core.KindMalformedInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
