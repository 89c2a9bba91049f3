package routing

import (
	"context"
	"net/http"
	"regexp"
	"strings"
)

type contextKey string

func (c contextKey) String() string {
	return "lingo/routing/" + string(c)
}

const ctxKeyRoute = contextKey("routeKey")

// Middleware wraps a route handler.
type Middleware func(http.Handler) http.Handler

// Route is a registered route as recorded by the Registry.
type Route struct {
	Name     string
	Method   string
	Path     string
	Domain   string
	Pattern  string
	Locale   string
	Fallback bool
	Handler  string
	Metadata map[string]string

	binders map[string]ParamBinder
}

// ParamBinder turns the path value of param in r into a route parameter, typically
// a RouteKeyer whose value differs per locale.
type ParamBinder func(r *http.Request, param string) (any, error)

// Bind registers binder for the path parameter param. LocalizedURL uses it to carry
// the bound value, rather than the raw path value, into the target locale.
func (r *Route) Bind(param string, binder ParamBinder) *Route {
	if r.binders == nil {
		r.binders = map[string]ParamBinder{}
	}
	r.binders[param] = binder
	return r
}

func (r *Route) bind(req *http.Request, param string) (any, error) {
	if binder, ok := r.binders[param]; ok {
		return binder(req, param)
	}
	return req.PathValue(param), nil
}

// Meta returns a metadata value attached to the route at registration.
func (r *Route) Meta(key string) string {
	if r == nil || r.Metadata == nil {
		return ""
	}
	return r.Metadata[key]
}

// Parameters lists the wildcard names of the route path in order.
func (r *Route) Parameters() []string {
	if r == nil {
		return nil
	}
	matches := wildcardPattern.FindAllStringSubmatch(r.Path, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m[1], "..."))
	}
	return names
}

var wildcardPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// RouteToContext adds the matched route to the current supplied context.
func RouteToContext(ctx context.Context, route *Route) context.Context {
	return context.WithValue(ctx, ctxKeyRoute, route)
}

// RouteFromContext extracts the matched route from the supplied context if any exist.
func RouteFromContext(ctx context.Context) *Route {
	route, ok := ctx.Value(ctxKeyRoute).(*Route)
	if !ok {
		return nil
	}
	return route
}
