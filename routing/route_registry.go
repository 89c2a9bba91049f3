package routing

import (
	"context"
	"maps"
	"net/http"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// GroupRootName names a route after its group alone, so the root of a localized
// group is addressable by its locale, e.g. "nl".
const GroupRootName = "."

// DefaultRouteAction is the metadata key localized groups tag their locale with.
const DefaultRouteAction = "locale"

// URITranslator translates a route URI into a locale.
type URITranslator interface {
	Translate(ctx context.Context, uri, locale string) string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithTranslator sets the translator used by Group.URI.
func WithTranslator(t URITranslator) RegistryOption {
	return func(r *Registry) {
		r.translator = t
	}
}

// WithRouteAction sets the metadata key that carries the locale of localized groups.
func WithRouteAction(key string) RegistryOption {
	return func(r *Registry) {
		if key != "" {
			r.routeAction = key
		}
	}
}

// Registry wraps http.ServeMux and records registered routes by name and pattern
// for URL generation and introspection.
type Registry struct {
	mux *http.ServeMux

	mu       sync.RWMutex
	routes   []*Route
	named    map[string]*Route
	patterns map[string]*Route

	translator  URITranslator
	routeAction string

	root *Group
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		mux:         http.NewServeMux(),
		named:       map[string]*Route{},
		patterns:    map[string]*Route{},
		routeAction: DefaultRouteAction,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.root = &Group{registry: r}
	return r
}

// RouteAction is the metadata key carrying the locale of localized routes.
func (r *Registry) RouteAction() string {
	return r.routeAction
}

// Root is the top level group without any attributes.
func (r *Registry) Root() *Group {
	return r.root
}

// Group registers routes sharing attrs.
func (r *Registry) Group(attrs GroupAttributes, fn func(g *Group)) {
	r.root.Group(attrs, fn)
}

// Handle registers a named route. An empty method matches every method.
func (r *Registry) Handle(method, path, name string, handler http.Handler) *Route {
	return r.root.Handle(method, path, name, handler)
}

// HandleFunc registers a named route for a handler function.
func (r *Registry) HandleFunc(method, path, name string, handler func(http.ResponseWriter, *http.Request)) *Route {
	return r.root.HandleFunc(method, path, name, handler)
}

// Fallback registers the handler receiving every request no other route matches.
func (r *Registry) Fallback(handler http.Handler, middleware ...Middleware) *Route {
	route := &Route{
		Path:     "/",
		Pattern:  "/",
		Fallback: true,
		Handler:  handlerName(handler),
	}
	r.register(route, handler, middleware)
	return route
}

func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Routes returns a copy of every registered route in registration order.
func (r *Registry) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Route, 0, len(r.routes))
	for _, route := range r.routes {
		out = append(out, *route)
	}
	return out
}

// Route looks up a route by name.
func (r *Registry) Route(name string) (*Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.named[name]
	return route, ok
}

// HasRoute reports whether a route with name exists.
func (r *Registry) HasRoute(name string) bool {
	_, ok := r.Route(name)
	return ok
}

// Match returns the route the mux would dispatch req to.
func (r *Registry) Match(req *http.Request) (*Route, bool) {
	_, pattern := r.mux.Handler(req)
	if pattern == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.patterns[pattern]
	return route, ok
}

func (r *Registry) register(route *Route, handler http.Handler, middleware []Middleware) {
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}

	next := handler
	wrapped := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		next.ServeHTTP(w, req.WithContext(RouteToContext(req.Context(), route)))
	})

	r.mu.Lock()
	r.routes = append(r.routes, route)
	r.patterns[route.Pattern] = route
	if route.Name != "" {
		r.named[route.Name] = route
	}
	r.mu.Unlock()

	r.mux.Handle(route.Pattern, wrapped)
}

// GroupAttributes are shared by every route of a group. Prefix and Name
// accumulate when groups nest; Domain and Locale are replaced.
type GroupAttributes struct {
	Prefix     string
	Name       string
	Domain     string
	Locale     string
	Metadata   map[string]string
	Middleware []Middleware
}

// Group registers routes with shared attributes.
type Group struct {
	registry *Registry
	attrs    GroupAttributes
}

// Locale is the locale this group belongs to, empty outside localized groups.
func (g *Group) Locale() string {
	return g.attrs.Locale
}

// Registry returns the registry the group registers into.
func (g *Group) Registry() *Registry {
	return g.registry
}

// URI translates uri into the group locale.
func (g *Group) URI(uri string) string {
	if g.registry.translator == nil || g.attrs.Locale == "" {
		return uri
	}
	return g.registry.translator.Translate(context.Background(), uri, g.attrs.Locale)
}

// Group registers a nested group.
func (g *Group) Group(attrs GroupAttributes, fn func(g *Group)) {
	fn(&Group{registry: g.registry, attrs: g.merge(attrs)})
}

func (g *Group) merge(attrs GroupAttributes) GroupAttributes {
	merged := GroupAttributes{
		Prefix: joinPath(g.attrs.Prefix, attrs.Prefix),
		Name:   g.attrs.Name + attrs.Name,
		Domain: g.attrs.Domain,
		Locale: g.attrs.Locale,
	}
	if attrs.Domain != "" {
		merged.Domain = attrs.Domain
	}
	if attrs.Locale != "" {
		merged.Locale = attrs.Locale
	}

	if len(g.attrs.Metadata)+len(attrs.Metadata) > 0 {
		merged.Metadata = make(map[string]string, len(g.attrs.Metadata)+len(attrs.Metadata))
		maps.Copy(merged.Metadata, g.attrs.Metadata)
		maps.Copy(merged.Metadata, attrs.Metadata)
	}

	merged.Middleware = append(append([]Middleware{}, g.attrs.Middleware...), attrs.Middleware...)
	return merged
}

// Handle registers a named route in the group. An empty method matches every method.
func (g *Group) Handle(method, path, name string, handler http.Handler) *Route {
	full := joinPath(g.attrs.Prefix, path)

	route := &Route{
		Method:  strings.ToUpper(method),
		Path:    full,
		Domain:  g.attrs.Domain,
		Locale:  g.attrs.Locale,
		Handler: handlerName(handler),
		Pattern: muxPattern(method, g.attrs.Domain, full),
	}
	switch name {
	case "":
	case GroupRootName:
		route.Name = strings.TrimSuffix(g.attrs.Name, ".")
	default:
		route.Name = g.attrs.Name + name
	}
	if len(g.attrs.Metadata) > 0 {
		route.Metadata = maps.Clone(g.attrs.Metadata)
	}

	g.registry.register(route, handler, g.attrs.Middleware)
	return route
}

// HandleFunc registers a named route for a handler function.
func (g *Group) HandleFunc(method, path, name string, handler func(http.ResponseWriter, *http.Request)) *Route {
	return g.Handle(method, path, name, http.HandlerFunc(handler))
}

// Get registers a GET route.
func (g *Group) Get(path, name string, handler func(http.ResponseWriter, *http.Request)) *Route {
	return g.HandleFunc(http.MethodGet, path, name, handler)
}

// Post registers a POST route.
func (g *Group) Post(path, name string, handler func(http.ResponseWriter, *http.Request)) *Route {
	return g.HandleFunc(http.MethodPost, path, name, handler)
}

func joinPath(prefix, path string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{prefix, path} {
		if p = strings.Trim(p, "/"); p != "" {
			parts = append(parts, p)
		}
	}
	return "/" + strings.Join(parts, "/")
}

func muxPattern(method, domain, path string) string {
	if path == "/" {
		path = "/{$}"
	}
	pattern := domain + path
	if method != "" {
		pattern = strings.ToUpper(method) + " " + pattern
	}
	return pattern
}

func handlerName(handler any) string {
	if handler == nil {
		return ""
	}
	v := reflect.ValueOf(handler)
	if v.Kind() == reflect.Func {
		if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
			return fn.Name()
		}
		return ""
	}
	return reflect.TypeOf(handler).String()
}
