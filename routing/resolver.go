package routing

import (
	"strings"

	"github.com/pitabwire/lingo/locales"
)

// NameResolver maps a requested route name and locale to a registered route name.
type NameResolver struct {
	Settings locales.Settings
	HasRoute func(name string) bool
}

// Resolve returns the concrete route name for name in the requested locale, or the
// current locale when none is requested. Unsupported locales are replaced by the
// fallback locale. A localized name that is not registered falls back to the bare
// name when that one is. Existence of the result is not checked.
func (n NameResolver) Resolve(name, requested, current string) string {
	if requested == "" && n.has(name) {
		return name
	}

	base := n.StripLocale(name)

	locale := requested
	if locale == "" {
		locale = current
	}
	locale = n.Settings.Normalize(locale)

	candidate := locale
	if base != "" {
		candidate = locale + "." + base
	}
	if locale == "" {
		candidate = base
	}

	if !n.has(candidate) && base != "" && n.has(base) {
		return base
	}

	return candidate
}

// StripLocale removes a leading supported locale segment from name.
func (n NameResolver) StripLocale(name string) string {
	head, rest, found := strings.Cut(name, ".")
	if !n.Settings.Supported.IsSupported(head) {
		return name
	}
	if !found {
		return ""
	}
	return rest
}

func (n NameResolver) has(name string) bool {
	return n.HasRoute != nil && name != "" && n.HasRoute(name)
}
