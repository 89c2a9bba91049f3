package routing

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// LocalizedURL returns the URL of the current request in locale. Named routes are
// regenerated from the current path values and query, each path value passed
// through the binder of its parameter when one is registered. Requests without a
// named route, such as the fallback, get their slug or domain rewritten.
func (g *URLGenerator) LocalizedURL(r *http.Request, locale string, opts ...URLOption) (string, error) {
	o := &urlOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if locale == "" {
		locale = g.currentLocale(r.Context())
	}
	locale = g.settings.Normalize(locale)

	route := RouteFromContext(r.Context())
	if route != nil && route.Name != "" && !route.Fallback {
		params := o.params
		if params == nil {
			params = Params{}
			for _, name := range route.Parameters() {
				value, err := route.bind(r, name)
				if err != nil {
					return "", fmt.Errorf("route %s: bind %s: %w", route.Name, name, err)
				}
				params[name] = value
			}
			for key, values := range r.URL.Query() {
				if _, taken := params[key]; !taken {
					params[key] = values
				}
			}
		}
		return g.Route(r.Context(), route.Name, params, append(opts, InLocale(locale))...)
	}

	u := g.LocalizeURL(requestURL(r, !o.relative), locale)
	return u.String(), nil
}

// LocalizeURL rewrites u for locale: the host for domain maps, otherwise the
// leading locale slug, which is dropped for the omitted locale.
func (g *URLGenerator) LocalizeURL(u *url.URL, locale string) *url.URL {
	out := *u
	supported := g.settings.Supported

	if supported.HasCustomDomains() {
		if domain, ok := supported.DomainFor(locale); ok {
			out.Host = domain
		}
		return &out
	}

	segments := strings.Split(strings.Trim(out.Path, "/"), "/")
	if len(segments) > 0 {
		if _, isSlug := supported.LocaleForSlug(segments[0]); isSlug {
			segments = segments[1:]
		}
	}
	if prefix := g.settings.Prefix(locale); prefix != "" {
		segments = append([]string{prefix}, segments...)
	}

	out.Path = joinPath("", strings.Join(segments, "/"))
	out.RawPath = ""
	return &out
}
