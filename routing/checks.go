package routing

import (
	"context"
	"path"
	"strings"
)

// IsFallback reports whether ctx belongs to a request served by the fallback route.
func IsFallback(ctx context.Context) bool {
	route := RouteFromContext(ctx)
	return route != nil && route.Fallback
}

// IsLocalized reports whether ctx belongs to a request served by a localized route.
func IsLocalized(ctx context.Context) bool {
	route := RouteFromContext(ctx)
	return route != nil && route.Locale != ""
}

// Is reports whether the current route name, without its locale prefix, matches one
// of the glob patterns. A non empty locale must also match the route locale.
func Is(ctx context.Context, locale string, patterns ...string) bool {
	route := RouteFromContext(ctx)
	if route == nil || route.Name == "" {
		return false
	}
	if locale != "" && route.Locale != locale {
		return false
	}

	name := route.Name
	if route.Locale != "" {
		name = strings.TrimPrefix(name, route.Locale+".")
	}

	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
