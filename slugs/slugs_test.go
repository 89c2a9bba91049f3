package slugs_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lingo/cache"
	"github.com/pitabwire/lingo/locales"
	"github.com/pitabwire/lingo/localization"
	"github.com/pitabwire/lingo/routing"
	"github.com/pitabwire/lingo/slugs"
)

type CatalogSuite struct {
	suite.Suite
	raw     *cache.InMemoryCache
	catalog *slugs.Catalog
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	s.raw = cache.NewInMemoryCache(cache.WithMaxAge(0))
	s.catalog = slugs.NewCatalog(s.raw, slugs.WithPrefix("test"))
	s.Require().NoError(s.catalog.Put(context.Background(), "product", "42",
		map[string]string{"en": "chair", "nl": "stoel"}))
}

func (s *CatalogSuite) TearDownTest() {
	_ = s.raw.Close()
}

func (s *CatalogSuite) TestSlugAndLookup() {
	ctx := context.Background()

	slug, found, err := s.catalog.Slug(ctx, "product", "42", "nl")
	s.Require().NoError(err)
	s.True(found)
	s.Equal("stoel", slug)

	id, found, err := s.catalog.Lookup(ctx, "product", "en", "chair")
	s.Require().NoError(err)
	s.True(found)
	s.Equal("42", id)

	_, found, err = s.catalog.Lookup(ctx, "product", "nl", "chair")
	s.Require().NoError(err)
	s.False(found)
}

func (s *CatalogSuite) TestRenameDropsOldSlug() {
	ctx := context.Background()
	s.Require().NoError(s.catalog.Put(ctx, "product", "42", map[string]string{"nl": "zetel"}))

	_, found, err := s.catalog.Lookup(ctx, "product", "nl", "stoel")
	s.Require().NoError(err)
	s.False(found)

	id, found, err := s.catalog.Lookup(ctx, "product", "nl", "zetel")
	s.Require().NoError(err)
	s.True(found)
	s.Equal("42", id)

	slug, _, err := s.catalog.Slug(ctx, "product", "42", "en")
	s.Require().NoError(err)
	s.Equal("chair", slug)
}

func (s *CatalogSuite) TestBindAndGenerate() {
	settings := locales.Settings{Supported: locales.List("en", "nl")}
	registry := routing.NewRegistry()
	generator, err := routing.NewURLGenerator(registry, settings, "http://localhost", nil)
	s.Require().NoError(err)

	var switched string
	var bindErr error
	registry.Localized(settings, func(g *routing.Group) {
		g.Get("products/{product}", "products.show", func(_ http.ResponseWriter, r *http.Request) {
			var product slugs.Binding
			product, bindErr = s.catalog.Bind(r, "product", "product")
			if bindErr != nil {
				return
			}
			switched, bindErr = generator.Route(r.Context(), "products.show",
				routing.Params{"product": product}, routing.InLocale("en"), routing.Relative())
		})
	})

	registry.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nl/products/stoel", nil))
	s.Require().NoError(bindErr)
	s.Equal("/en/products/chair", switched)

	registry.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/en/products/stoel", nil))
	s.Require().ErrorIs(bindErr, slugs.ErrNotFound)

	ctx := localization.ToContext(context.Background(), "nl")
	url, err := generator.Route(ctx, "products.show", routing.Params{"product": s.catalog.Model("product", "42")},
		routing.Relative())
	s.Require().NoError(err)
	s.Equal("/nl/products/stoel", url)

	_, err = generator.Route(ctx, "products.show", routing.Params{"product": s.catalog.Model("product", "7")})
	s.Require().ErrorIs(err, slugs.ErrNotFound)

	_, err = slugs.Binding{Kind: "product", ID: "42"}.RouteKey(ctx, "nl")
	s.Require().ErrorIs(err, slugs.ErrNotFound)
}

func (s *CatalogSuite) TestModelStoredAsOneEntry() {
	ctx := context.Background()

	exists, err := s.raw.Exists(ctx, "test:f:product:42")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.raw.Exists(ctx, "test:f:product:42:nl")
	s.Require().NoError(err)
	s.False(exists)

	exists, err = s.raw.Exists(ctx, "test:r:product:nl:stoel")
	s.Require().NoError(err)
	s.True(exists)

	all, found, err := s.catalog.Slugs(ctx, "product", "42")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(map[string]string{"en": "chair", "nl": "stoel"}, all)

	_, found, err = s.catalog.Slugs(ctx, "product", "7")
	s.Require().NoError(err)
	s.False(found)
}

func (s *CatalogSuite) TestLocalizedURLUsesBinder() {
	settings := locales.Settings{Supported: locales.List("en", "nl")}
	registry := routing.NewRegistry()
	generator, err := routing.NewURLGenerator(registry, settings, "http://localhost", nil)
	s.Require().NoError(err)

	var switched string
	var switchErr error
	registry.Localized(settings, func(g *routing.Group) {
		g.Get("products/{product}", "products.show", func(_ http.ResponseWriter, r *http.Request) {
			switched, switchErr = generator.LocalizedURL(r, "en", routing.Relative())
		}).Bind("product", s.catalog.Binder("product"))
	})

	testCases := []struct {
		name     string
		target   string
		expected string
		err      error
	}{
		{name: "dutch slug to english", target: "/nl/products/stoel", expected: "/en/products/chair"},
		{name: "english stays english", target: "/en/products/chair", expected: "/en/products/chair"},
		{name: "slug of another locale", target: "/en/products/stoel", err: slugs.ErrNotFound},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			switched, switchErr = "", nil
			registry.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.target, nil))
			if tc.err != nil {
				s.Require().ErrorIs(switchErr, tc.err)
				return
			}
			s.Require().NoError(switchErr)
			s.Equal(tc.expected, switched)
		})
	}
}
