// Package slugs keeps the per locale URL slugs of models, so a route parameter can
// render as "chair" in English and "stoel" in Dutch and resolve back to its model.
package slugs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pitabwire/util"

	"github.com/pitabwire/lingo/cache"
	"github.com/pitabwire/lingo/localization"
	"github.com/pitabwire/lingo/routing"
)

// ErrNotFound is returned when a model has no slug in a locale, or a slug maps to no model.
var ErrNotFound = errors.New("slug not found")

// Catalog stores slugs by model kind, model id and locale in a cache backend. Each
// model is one entry holding its slugs per locale, next to a reverse index entry
// per slug.
type Catalog struct {
	prefix string
	ttl    time.Duration

	models cache.Cache[modelKey, map[string]string]
	index  cache.Cache[slugKey, string]
}

type modelKey struct {
	kind string
	id   string
}

type slugKey struct {
	kind   string
	locale string
	slug   string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPrefix namespaces the catalog keys, for caches shared with other data.
func WithPrefix(prefix string) Option {
	return func(c *Catalog) {
		c.prefix = prefix
	}
}

// WithTTL expires slugs after ttl. Zero leaves expiry to the backend.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) {
		c.ttl = ttl
	}
}

func NewCatalog(raw cache.RawCache, opts ...Option) *Catalog {
	c := &Catalog{prefix: "lingo:slugs"}
	for _, opt := range opts {
		opt(c)
	}

	c.models = cache.NewGenericCache[modelKey, map[string]string](raw, func(k modelKey) string {
		return strings.Join([]string{c.prefix, "f", k.kind, k.id}, ":")
	})
	c.index = cache.NewGenericCache[slugKey, string](raw, func(k slugKey) string {
		return strings.Join([]string{c.prefix, "r", k.kind, k.locale, k.slug}, ":")
	})
	return c
}

// Put records the slugs of one model, keyed by locale. Slugs already recorded for
// other locales are kept.
func (c *Catalog) Put(ctx context.Context, kind, id string, slugs map[string]string) error {
	key := modelKey{kind: kind, id: id}
	current, _, err := c.models.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("slugs: read %s/%s: %w", kind, id, err)
	}
	if current == nil {
		current = make(map[string]string, len(slugs))
	}

	for locale, slug := range slugs {
		if slug == "" {
			continue
		}
		if previous, found := current[locale]; found && previous != slug {
			if err = c.index.Delete(ctx, slugKey{kind: kind, locale: locale, slug: previous}); err != nil {
				return fmt.Errorf("slugs: drop %s/%s: %w", kind, previous, err)
			}
		}
		current[locale] = slug
	}

	if err = c.models.Set(ctx, key, current, c.ttl); err != nil {
		return fmt.Errorf("slugs: store %s/%s: %w", kind, id, err)
	}
	for locale, slug := range current {
		if err = c.index.Set(ctx, slugKey{kind: kind, locale: locale, slug: slug}, id, c.ttl); err != nil {
			return fmt.Errorf("slugs: index %s/%s: %w", kind, slug, err)
		}
	}

	util.Log(ctx).WithField("kind", kind).WithField("id", id).Debug("stored localized slugs")
	return nil
}

// Slugs returns every recorded slug of a model, keyed by locale.
func (c *Catalog) Slugs(ctx context.Context, kind, id string) (map[string]string, bool, error) {
	slugs, found, err := c.models.Get(ctx, modelKey{kind: kind, id: id})
	if err != nil {
		return nil, false, fmt.Errorf("slugs: read %s/%s: %w", kind, id, err)
	}
	return slugs, found, nil
}

// Slug returns the slug of a model in locale.
func (c *Catalog) Slug(ctx context.Context, kind, id, locale string) (string, bool, error) {
	slugs, found, err := c.Slugs(ctx, kind, id)
	if err != nil || !found {
		return "", false, err
	}
	slug, found := slugs[locale]
	return slug, found, nil
}

// Lookup returns the id of the model whose slug in locale is slug.
func (c *Catalog) Lookup(ctx context.Context, kind, locale, slug string) (string, bool, error) {
	id, found, err := c.index.Get(ctx, slugKey{kind: kind, locale: locale, slug: slug})
	if err != nil {
		return "", false, fmt.Errorf("slugs: lookup %s/%s: %w", kind, slug, err)
	}
	return id, found, nil
}

// Model returns a route parameter rendering the slug of a model in the target locale.
func (c *Catalog) Model(kind, id string) Binding {
	return Binding{catalog: c, Kind: kind, ID: id}
}

// Bind resolves the route parameter param of r, a slug in the request locale, to the
// model it names.
func (c *Catalog) Bind(r *http.Request, kind, param string) (Binding, error) {
	slug := r.PathValue(param)
	if slug == "" {
		return Binding{}, fmt.Errorf("%w: %s has no route parameter %s", ErrNotFound, r.URL.Path, param)
	}

	locale := ""
	if route := routing.RouteFromContext(r.Context()); route != nil {
		locale = route.Locale
	}
	if locale == "" {
		locale = localization.FromContext(r.Context())
	}

	id, found, err := c.Lookup(r.Context(), kind, locale, slug)
	if err != nil {
		return Binding{}, err
	}
	if !found {
		return Binding{}, fmt.Errorf("%w: %s %q in %s", ErrNotFound, kind, slug, locale)
	}
	return c.Model(kind, id), nil
}

// Binder returns a route parameter binder resolving slugs of kind, for Route.Bind.
func (c *Catalog) Binder(kind string) routing.ParamBinder {
	return func(r *http.Request, param string) (any, error) {
		return c.Bind(r, kind, param)
	}
}

// Binding is a model addressed by localized slugs.
type Binding struct {
	catalog *Catalog
	Kind    string
	ID      string
}

var _ routing.RouteKeyer = Binding{}

// RouteKey returns the slug of the model in locale.
func (b Binding) RouteKey(ctx context.Context, locale string) (string, error) {
	if b.catalog == nil {
		return "", fmt.Errorf("%w: %s %s is not bound to a catalog", ErrNotFound, b.Kind, b.ID)
	}
	slug, found, err := b.catalog.Slug(ctx, b.Kind, b.ID, locale)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %s %s in %s", ErrNotFound, b.Kind, b.ID, locale)
	}
	return slug, nil
}
