package lingo

import (
	"net/http"

	"github.com/pitabwire/lingo/localization"
	"github.com/pitabwire/lingo/routing"
)

// NotFoundData is handed to the not found view.
type NotFoundData struct {
	Locale string
	Path   string
}

// RegisterFallback makes the fallback handler, behind the locale middleware, the
// receiver of every request no route matches.
func (s *Service) RegisterFallback() *routing.Route {
	return s.registry.Fallback(s.FallbackHandler(), s.SetLocale)
}

// FallbackHandler answers unmatched requests. With redirects to localized URLs on,
// a request whose URL in the current locale reaches a registered route is
// redirected there. Everything else gets the not found view, or a plain 404 when
// no such view exists.
func (s *Service) FallbackHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := localization.FromContext(r.Context())

		if s.cfg.RedirectsToLocalizedURLs() {
			if target, ok := s.localizedRedirect(r, locale); ok {
				s.Log(r.Context()).
					WithField("from", r.URL.String()).
					WithField("to", target).
					Debug("redirecting to localized url")
				http.Redirect(w, r, target, s.cfg.GetRedirectStatusCode())
				return
			}
		}

		s.notFound(w, r, locale)
	})
}

func (s *Service) localizedRedirect(r *http.Request, locale string) (string, bool) {
	if locale == "" {
		return "", false
	}

	var opts []routing.URLOption
	if !s.settings.Supported.HasCustomDomains() {
		opts = append(opts, routing.Relative())
	}
	target, err := s.urls.LocalizedURL(r, locale, opts...)
	if err != nil {
		s.Log(r.Context()).WithError(err).Debug("no localized url for request")
		return "", false
	}

	probe, err := http.NewRequestWithContext(r.Context(), r.Method, target, nil)
	if err != nil {
		return "", false
	}
	if probe.Host == "" {
		probe.Host = r.Host
	}
	if probe.Host == r.Host && probe.URL.Path == r.URL.Path && probe.URL.RawQuery == r.URL.RawQuery {
		return "", false
	}

	route, ok := s.registry.Match(probe)
	if !ok || route.Fallback {
		return "", false
	}
	return target, true
}

func (s *Service) notFound(w http.ResponseWriter, r *http.Request, locale string) {
	view := s.cfg.GetNotFoundView()
	if s.renderer == nil || !s.renderer.Has(view) {
		http.NotFound(w, r)
		return
	}

	err := s.renderer.Render(w, r, http.StatusNotFound, view, NotFoundData{Locale: locale, Path: r.URL.Path})
	if err != nil {
		s.Log(r.Context()).WithError(err).Error("could not render not found view")
		http.NotFound(w, r)
	}
}
