package routing

import (
	"github.com/pitabwire/lingo/locales"
)

type localizedOptions struct {
	middleware []Middleware
	supported  *locales.Supported
	omitted    *string
}

// LocalizedOption adjusts a single Localized registration.
type LocalizedOption func(*localizedOptions)

// WithLocalizedMiddleware adds middleware to every localized group, typically the
// locale middleware.
func WithLocalizedMiddleware(middleware ...Middleware) LocalizedOption {
	return func(o *localizedOptions) {
		o.middleware = append(o.middleware, middleware...)
	}
}

// WithLocales registers the groups for another set of locales than configured.
func WithLocales(supported *locales.Supported) LocalizedOption {
	return func(o *localizedOptions) {
		o.supported = supported
	}
}

// WithOmitted overrides the omitted locale for this registration. An empty locale
// prefixes every locale.
func WithOmitted(locale string) LocalizedOption {
	return func(o *localizedOptions) {
		o.omitted = &locale
	}
}

// Localized registers the routes added by fn once per locale. Every copy is named
// "{locale}.{name}", tagged with its locale and prefixed with the locale slug unless
// it is the omitted locale or locales map to domains. The omitted locale goes last.
func (r *Registry) Localized(settings locales.Settings, fn func(g *Group), opts ...LocalizedOption) {
	r.root.Localized(settings, fn, opts...)
}

// Localized is Registry.Localized nested in a group.
func (g *Group) Localized(settings locales.Settings, fn func(g *Group), opts ...LocalizedOption) {
	o := &localizedOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.supported != nil {
		settings.Supported = o.supported
	}
	if o.omitted != nil {
		settings.Omitted = *o.omitted
	}

	for _, locale := range settings.Order() {
		attrs := GroupAttributes{
			Prefix:     settings.Prefix(locale),
			Name:       locale + ".",
			Locale:     locale,
			Metadata:   map[string]string{g.registry.routeAction: locale},
			Middleware: o.middleware,
		}
		if domain, ok := settings.Supported.DomainFor(locale); ok {
			attrs.Domain = domain
		}
		g.Group(attrs, fn)
	}
}
