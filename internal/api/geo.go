package api

import (
	"errors"
	"net/http"

	"churn-dashboard/internal/geo"
	"churn-dashboard/pkg/api"

	"github.com/go-chi/chi/v5"
)

type GeoService struct {
	frame *geo.Frame
}

// NewGeoService serves the churn map. frame may be nil when no dataset could
// be loaded, in which case the data endpoints report 503.
func NewGeoService(frame *geo.Frame) *GeoService {
	return &GeoService{frame: frame}
}

func (s *GeoService) AddRoutes(r chi.Router) {
	r.Route("/geo", func(r chi.Router) {
		r.Get("/metrics", RestHandler(s.ListMetrics))
		r.Get("/map", RestHandler(s.GetMap))
		r.Get("/countries/{iso}", RestHandler(s.GetCountry))
	})
}

func (s *GeoService) ListMetrics(r *http.Request) (any, error) {
	return geo.MetricOptions(), nil
}

func (s *GeoService) GetMap(r *http.Request) (any, error) {
	if s.frame == nil {
		return nil, CodedErrorf(http.StatusServiceUnavailable, "churn dataset is not loaded")
	}

	query, err := ParseRequestQueryParams[api.MapQuery](r)
	if err != nil {
		return nil, err
	}
	metric := geo.Metric(query.Metric)
	if metric == "" {
		metric = geo.ChurnRate
	}

	series, err := s.frame.Series(metric)
	if err != nil {
		if errors.Is(err, geo.ErrUnknownMetric) {
			return nil, CodedErrorf(http.StatusBadRequest, "unknown metric '%s'", query.Metric)
		}
		return nil, CodedError(http.StatusInternalServerError, err)
	}
	return series, nil
}

func (s *GeoService) GetCountry(r *http.Request) (any, error) {
	if s.frame == nil {
		return nil, CodedErrorf(http.StatusServiceUnavailable, "churn dataset is not loaded")
	}

	iso := chi.URLParam(r, "iso")
	details, err := s.frame.Details(iso)
	if err != nil {
		if errors.Is(err, geo.ErrCountryNotAvailable) {
			return nil, CodedErrorf(http.StatusNotFound, "Country data not available")
		}
		return nil, CodedError(http.StatusInternalServerError, err)
	}
	return details, nil
}
