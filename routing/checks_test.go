package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lingo/locales"
)

type ChecksSuite struct {
	suite.Suite
}

func TestChecksSuite(t *testing.T) {
	suite.Run(t, new(ChecksSuite))
}

func (s *ChecksSuite) TestRouteChecks() {
	localized := &Route{Name: "nl.products.show", Locale: "nl", Path: "/nl/products/{product}"}
	plain := &Route{Name: "dashboard", Path: "/dashboard"}
	unnamed := &Route{Path: "/plain"}
	fallback := &Route{Path: "/", Fallback: true}

	testCases := []struct {
		name      string
		route     *Route
		locale    string
		patterns  []string
		is        bool
		localized bool
		fallback  bool
	}{
		{name: "no route", patterns: []string{"*"}},
		{
			name:      "glob on name without locale",
			route:     localized,
			patterns:  []string{"products.*"},
			is:        true,
			localized: true,
		},
		{
			name:      "prefixed pattern does not match",
			route:     localized,
			patterns:  []string{"nl.products.*"},
			localized: true,
		},
		{
			name:      "matching locale",
			route:     localized,
			locale:    "nl",
			patterns:  []string{"products.show"},
			is:        true,
			localized: true,
		},
		{
			name:      "other locale",
			route:     localized,
			locale:    "en",
			patterns:  []string{"products.show"},
			localized: true,
		},
		{
			name:      "any of several patterns",
			route:     localized,
			patterns:  []string{"orders.*", "products.sh?w"},
			is:        true,
			localized: true,
		},
		{
			name:      "malformed pattern never matches",
			route:     localized,
			patterns:  []string{"products.[", "orders.*"},
			localized: true,
		},
		{name: "non localized route", route: plain, patterns: []string{"dash*"}, is: true},
		{name: "non localized route with locale", route: plain, locale: "en", patterns: []string{"dash*"}},
		{name: "unnamed route", route: unnamed, patterns: []string{"*"}},
		{name: "fallback route", route: fallback, patterns: []string{"*"}, fallback: true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			ctx := context.Background()
			if tc.route != nil {
				ctx = RouteToContext(ctx, tc.route)
			}

			s.Equal(tc.is, Is(ctx, tc.locale, tc.patterns...))
			s.Equal(tc.localized, IsLocalized(ctx))
			s.Equal(tc.fallback, IsFallback(ctx))
		})
	}
}

func (s *ChecksSuite) TestChecksInsideHandlers() {
	settings := locales.Settings{Supported: locales.List("en", "nl")}
	registry := NewRegistry()

	var is, localized, fallback bool
	record := func(_ http.ResponseWriter, r *http.Request) {
		is = Is(r.Context(), "", "about")
		localized = IsLocalized(r.Context())
		fallback = IsFallback(r.Context())
	}
	registry.Localized(settings, func(g *Group) {
		g.Get("about", "about", record)
	})
	registry.Fallback(http.HandlerFunc(record))

	registry.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/en/about", nil))
	s.True(is)
	s.True(localized)
	s.False(fallback)

	registry.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	s.False(is)
	s.False(localized)
	s.True(fallback)
}
