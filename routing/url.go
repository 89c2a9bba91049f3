package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pitabwire/util"

	"github.com/pitabwire/lingo/locales"
	"github.com/pitabwire/lingo/localization"
)

var (
	// ErrRouteNotFound is returned when a resolved route name is not registered.
	ErrRouteNotFound = errors.New("route not found")
	// ErrMissingParameter is returned when a route wildcard has no value.
	ErrMissingParameter = errors.New("missing route parameter")
)

// Params are the values substituted into route wildcards. Values not consumed by a
// wildcard become the query string.
type Params map[string]any

// RouteKeyer is a route parameter whose URL value depends on the target locale,
// such as a model with a translated slug.
type RouteKeyer interface {
	RouteKey(ctx context.Context, locale string) (string, error)
}

type urlOptions struct {
	locale   string
	relative bool
	params   Params
}

// URLOption adjusts a single URL generation.
type URLOption func(*urlOptions)

// InLocale generates the URL of the route variant in locale.
func InLocale(locale string) URLOption {
	return func(o *urlOptions) {
		o.locale = locale
	}
}

// Relative generates a path instead of an absolute URL.
func Relative() URLOption {
	return func(o *urlOptions) {
		o.relative = true
	}
}

// WithParams overrides the parameters LocalizedURL takes from the current request.
// Without it the path values of the request are used, after any binder registered
// with Route.Bind has turned them into locale aware values.
func WithParams(params Params) URLOption {
	return func(o *urlOptions) {
		o.params = params
	}
}

// URLGenerator builds URLs for named routes of a Registry in any locale.
type URLGenerator struct {
	registry *Registry
	resolver NameResolver
	settings locales.Settings
	baseURL  *url.URL
	signer   *Signer

	defaultLocale string
}

// GeneratorOption configures a URLGenerator.
type GeneratorOption func(*URLGenerator)

// WithDefaultLocale sets the locale used when a context carries no current locale,
// such as in background jobs.
func WithDefaultLocale(locale string) GeneratorOption {
	return func(g *URLGenerator) {
		g.defaultLocale = locale
	}
}

// NewURLGenerator creates a generator rendering absolute URLs against baseURL.
// signer may be nil when signed URLs are not used.
func NewURLGenerator(
	registry *Registry,
	settings locales.Settings,
	baseURL string,
	signer *Signer,
	opts ...GeneratorOption,
) (*URLGenerator, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("url generator: base url: %w", err)
	}
	if base.Scheme == "" {
		base.Scheme = "http"
	}

	g := &URLGenerator{
		registry: registry,
		resolver: NameResolver{Settings: settings, HasRoute: registry.HasRoute},
		settings: settings,
		baseURL:  base,
		signer:   signer,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// DefaultLocale is the locale assumed for contexts without a current locale.
func (g *URLGenerator) DefaultLocale() string {
	return g.defaultLocale
}

func (g *URLGenerator) currentLocale(ctx context.Context) string {
	if current := localization.FromContext(ctx); current != "" {
		return current
	}
	return g.defaultLocale
}

// Resolver exposes the name resolver used by the generator.
func (g *URLGenerator) Resolver() NameResolver {
	return g.resolver
}

// Route generates the URL of the named route. The locale is the one requested
// through InLocale, else the current locale of ctx, else the default locale.
func (g *URLGenerator) Route(ctx context.Context, name string, params Params, opts ...URLOption) (string, error) {
	o := &urlOptions{}
	for _, opt := range opts {
		opt(o)
	}

	current := g.currentLocale(ctx)
	resolved := g.resolver.Resolve(name, o.locale, current)

	route, ok := g.registry.Route(resolved)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, resolved)
	}

	locale := route.Locale
	if locale == "" {
		locale = o.locale
		if locale == "" {
			locale = current
		}
		locale = g.settings.Normalize(locale)
	}
	if locale != localization.FromContext(ctx) {
		ctx = localization.WithLocale(ctx, locale)
	}

	path, query, err := g.fill(ctx, route, locale, params)
	if err != nil {
		return "", err
	}

	if !o.relative && route.Domain == "" {
		path = strings.TrimSuffix(g.baseURL.EscapedPath(), "/") + path
	}

	u := &url.URL{RawPath: path, RawQuery: query}
	if u.Path, err = url.PathUnescape(path); err != nil {
		return "", fmt.Errorf("route %s: %w", resolved, err)
	}
	if !o.relative {
		u.Scheme = g.baseURL.Scheme
		u.Host = g.baseURL.Host
		if route.Domain != "" {
			u.Host = route.Domain
		}
	}

	util.Log(ctx).WithField("route", resolved).WithField("locale", locale).Debug("generated route url")
	return u.String(), nil
}

// SignedRoute generates the URL of the named route with a signature, valid until
// expiresAt unless expiresAt is zero.
func (g *URLGenerator) SignedRoute(
	ctx context.Context,
	name string,
	params Params,
	expiresAt time.Time,
	opts ...URLOption,
) (string, error) {
	if g.signer == nil {
		return "", ErrNoSigningKey
	}
	raw, err := g.Route(ctx, name, params, opts...)
	if err != nil {
		return "", err
	}
	return g.signer.Sign(raw, expiresAt)
}

// HasValidSignature verifies a request made to a signed URL.
func (g *URLGenerator) HasValidSignature(r *http.Request, absolute bool) bool {
	if g.signer == nil {
		return false
	}
	return g.signer.HasValidSignature(r, absolute)
}

// HasLocalized reports whether name is registered in locale, or in any locale when
// locale is empty.
func (g *URLGenerator) HasLocalized(name, locale string) bool {
	base := g.resolver.StripLocale(name)
	if locale != "" {
		return g.registry.HasRoute(locale + "." + base)
	}
	for _, l := range g.settings.Supported.Locales() {
		if g.registry.HasRoute(l + "." + base) {
			return true
		}
	}
	return false
}

func (g *URLGenerator) fill(ctx context.Context, route *Route, locale string, params Params) (string, string, error) {
	remaining := make(Params, len(params))
	for k, v := range params {
		remaining[k] = v
	}

	var fillErr error
	path := wildcardPattern.ReplaceAllStringFunc(route.Path, func(token string) string {
		if fillErr != nil {
			return token
		}
		name := strings.Trim(token, "{}")
		rest := strings.HasSuffix(name, "...")
		name = strings.TrimSuffix(name, "...")

		value, ok := remaining[name]
		if !ok {
			fillErr = fmt.Errorf("%w: %s for route %s", ErrMissingParameter, name, route.Name)
			return token
		}
		delete(remaining, name)

		s, err := paramString(ctx, value, locale)
		if err != nil {
			fillErr = fmt.Errorf("route %s parameter %s: %w", route.Name, name, err)
			return token
		}
		if s == "" {
			fillErr = fmt.Errorf("%w: %s for route %s", ErrMissingParameter, name, route.Name)
			return token
		}
		if rest {
			parts := strings.Split(s, "/")
			for i := range parts {
				parts[i] = url.PathEscape(parts[i])
			}
			return strings.Join(parts, "/")
		}
		return url.PathEscape(s)
	})
	if fillErr != nil {
		return "", "", fillErr
	}

	if len(remaining) == 0 {
		return path, "", nil
	}

	keys := make([]string, 0, len(remaining))
	for k := range remaining {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	query := url.Values{}
	for _, k := range keys {
		switch v := remaining[k].(type) {
		case []string:
			for _, item := range v {
				query.Add(k, item)
			}
		default:
			s, err := paramString(ctx, v, locale)
			if err != nil {
				return "", "", fmt.Errorf("route %s parameter %s: %w", route.Name, k, err)
			}
			query.Add(k, s)
		}
	}
	return path, query.Encode(), nil
}

func paramString(ctx context.Context, value any, locale string) (string, error) {
	switch v := value.(type) {
	case RouteKeyer:
		return v.RouteKey(ctx, locale)
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(v), nil
	}
}
