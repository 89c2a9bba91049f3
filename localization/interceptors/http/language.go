package http

import (
	"net/http"

	"github.com/pitabwire/util"
	"go.opentelemetry.io/otel/metric"

	"github.com/pitabwire/lingo/detection"
	"github.com/pitabwire/lingo/localization"
	"github.com/pitabwire/lingo/telemetry"
)

const pkgName = "lingo/localization"

// Detector resolves the locale of a request.
type Detector interface {
	Detect(r *http.Request) (detection.Result, bool, error)
}

// Storer records a resolved locale.
type Storer interface {
	Store(w http.ResponseWriter, r *http.Request, locale string) error
}

// ErrorHandler answers a request whose detection or storage failed.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareOptions struct {
	defaultLocale   string
	errorHandler    ErrorHandler
	contentLanguage bool
}

// Option configures LocaleHTTPMiddleware.
type Option func(*middlewareOptions)

// WithDefaultLocale sets the current locale of requests nothing else resolves.
func WithDefaultLocale(locale string) Option {
	return func(o *middlewareOptions) {
		o.defaultLocale = locale
	}
}

// WithErrorHandler replaces the default handler answering 500 on failures.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *middlewareOptions) {
		if h != nil {
			o.errorHandler = h
		}
	}
}

// WithoutContentLanguage stops the middleware from setting Content-Language.
func WithoutContentLanguage() Option {
	return func(o *middlewareOptions) {
		o.contentLanguage = false
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	util.Log(r.Context()).WithError(err).Error("could not resolve request locale")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// LocaleHTTPMiddleware installs a request scoped current locale, resolves the
// request locale with detector and records it with storer. storer may be nil.
func LocaleHTTPMiddleware(detector Detector, storer Storer, opts ...Option) func(http.Handler) http.Handler {
	o := &middlewareOptions{errorHandler: defaultErrorHandler, contentLanguage: true}
	for _, opt := range opts {
		opt(o)
	}

	tracer := telemetry.NewTracer(pkgName)
	resolved := telemetry.DimensionlessMeasure(pkgName, "/resolved", "Count of requests by resolved locale and detector")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initial := localization.FromContext(r.Context())
			if initial == "" {
				initial = o.defaultLocale
			}
			r = r.WithContext(localization.ToContext(r.Context(), initial))

			spanCtx, span := tracer.Start(r.Context(), "resolve")
			result, ok, err := detector.Detect(r)
			if err == nil && ok && storer != nil {
				err = storer.Store(w, r, result.Locale)
			}
			tracer.End(spanCtx, span, err,
				telemetry.AttrLocaleKey.String(result.Locale),
				telemetry.AttrDetectorKey.String(result.Detector))
			if err != nil {
				o.errorHandler(w, r, err)
				return
			}

			if ok {
				resolved.Add(r.Context(), 1, metric.WithAttributes(
					telemetry.AttrLocaleKey.String(result.Locale),
					telemetry.AttrDetectorKey.String(result.Detector)))
			} else {
				util.Log(r.Context()).WithField("locale", initial).Debug("no locale detected, keeping default")
			}

			if current := localization.FromContext(r.Context()); o.contentLanguage && current != "" {
				w.Header().Set("Content-Language", current)
			}

			next.ServeHTTP(w, r)
		})
	}
}
