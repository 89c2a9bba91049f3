package lingo

import (
	"context"

	"github.com/pitabwire/lingo/cache"
	"github.com/pitabwire/lingo/config"
	"github.com/pitabwire/lingo/detection"
	interceptors "github.com/pitabwire/lingo/localization/interceptors/http"
	"github.com/pitabwire/lingo/routing"
	"github.com/pitabwire/lingo/stores"
	"github.com/pitabwire/lingo/telemetry"
)

// WithConfig uses cfg instead of the configuration read from the environment.
func WithConfig(cfg *config.Configuration) Option {
	return func(_ context.Context, s *Service) {
		s.cfg = cfg
	}
}

// WithDetectors replaces the detectors built from the DETECTORS setting.
func WithDetectors(detectors ...detection.Detector) Option {
	return func(_ context.Context, s *Service) {
		s.detectors = detectors
	}
}

// WithStores replaces the stores built from the STORES setting.
func WithStores(storeList ...stores.Store) Option {
	return func(_ context.Context, s *Service) {
		s.stores = storeList
	}
}

// WithRouteTranslator translates localized route URIs with t.
func WithRouteTranslator(t routing.URITranslator) Option {
	return func(_ context.Context, s *Service) {
		s.translator = t
	}
}

// WithSlugCache keeps model slugs in raw instead of the configured backend.
func WithSlugCache(raw cache.RawCache) Option {
	return func(_ context.Context, s *Service) {
		s.slugCache = raw
	}
}

// WithViewRenderer renders the not found view with r.
func WithViewRenderer(r ViewRenderer) Option {
	return func(_ context.Context, s *Service) {
		s.renderer = r
	}
}

// WithLocaleErrorHandler answers requests whose locale detection or storage failed.
func WithLocaleErrorHandler(h interceptors.ErrorHandler) Option {
	return func(_ context.Context, s *Service) {
		s.errorHandler = h
	}
}

// WithTelemetryOptions passes opts to the telemetry manager.
func WithTelemetryOptions(opts ...telemetry.Option) Option {
	return func(_ context.Context, s *Service) {
		s.telemetryOptions = append(s.telemetryOptions, opts...)
	}
}
