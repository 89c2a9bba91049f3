package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lingo/locales"
)

type RegistrySuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func writeName(w http.ResponseWriter, r *http.Request) {
	route := RouteFromContext(r.Context())
	if route == nil {
		_, _ = w.Write([]byte("none"))
		return
	}
	_, _ = w.Write([]byte(route.Name + "|" + route.Meta(DefaultRouteAction)))
}

type upperTranslator struct{}

func (upperTranslator) Translate(_ context.Context, uri, locale string) string {
	if locale == "nl" && uri == "about" {
		return "over"
	}
	return uri
}

func (s *RegistrySuite) serve(r *Registry, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func (s *RegistrySuite) TestHandleRecordsRoutes() {
	r := NewRegistry()
	r.HandleFunc(http.MethodGet, "/health", "health", writeName)
	r.Group(GroupAttributes{Prefix: "admin", Name: "admin."}, func(g *Group) {
		g.Get("users/{id}", "users.show", writeName)
	})

	routes := r.Routes()
	s.Require().Len(routes, 2)
	s.Equal("GET /health", routes[0].Pattern)
	s.Equal("/admin/users/{id}", routes[1].Path)
	s.Equal("admin.users.show", routes[1].Name)
	s.Equal([]string{"id"}, routes[1].Parameters())
	s.True(r.HasRoute("admin.users.show"))
	s.False(r.HasRoute("users.show"))

	rec := s.serve(r, http.MethodGet, "/admin/users/7")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("admin.users.show|", rec.Body.String())
}

func (s *RegistrySuite) TestLocalizedGroups() {
	settings := locales.Settings{Supported: locales.List("en", "nl")}
	r := NewRegistry(WithTranslator(upperTranslator{}))

	r.Localized(settings, func(g *Group) {
		g.Get("/", GroupRootName, writeName)
		g.Get(g.URI("about"), "about", writeName)
	})

	testCases := []struct {
		name   string
		target string
		body   string
	}{
		{name: "en root", target: "/en", body: "en|en"},
		{name: "nl root", target: "/nl", body: "nl|nl"},
		{name: "en about", target: "/en/about", body: "en.about|en"},
		{name: "nl translated about", target: "/nl/over", body: "nl.about|nl"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			rec := s.serve(r, http.MethodGet, tc.target)
			s.Equal(http.StatusOK, rec.Code)
			s.Equal(tc.body, rec.Body.String())
		})
	}

	s.Equal(http.StatusNotFound, s.serve(r, http.MethodGet, "/nl/about").Code)
}

func (s *RegistrySuite) TestOmittedLocaleRegisteredLast() {
	settings := locales.Settings{Supported: locales.List("en", "nl", "fr"), Omitted: "en"}
	r := NewRegistry()

	r.Localized(settings, func(g *Group) {
		g.Get("/", GroupRootName, writeName)
		g.Get("{page}", "page", writeName)
	})

	var order []string
	for _, route := range r.Routes() {
		order = append(order, route.Name)
	}
	s.Equal([]string{"nl", "nl.page", "fr", "fr.page", "en", "en.page"}, order)

	s.Equal("en.page|en", s.serve(r, http.MethodGet, "/contact").Body.String())
	s.Equal("nl|nl", s.serve(r, http.MethodGet, "/nl").Body.String())
	s.Equal("fr.page|fr", s.serve(r, http.MethodGet, "/fr/contact").Body.String())
	s.Equal("en|en", s.serve(r, http.MethodGet, "/").Body.String())
}

func (s *RegistrySuite) TestLocalizedOverrides() {
	settings := locales.Settings{Supported: locales.List("en", "nl"), Omitted: "en"}
	r := NewRegistry(WithRouteAction("lang"))

	r.Localized(settings, func(g *Group) {
		g.Get("about", "about", writeName)
	}, WithOmitted(""), WithLocales(locales.List("en", "de")))

	route, ok := r.Route("en.about")
	s.Require().True(ok)
	s.Equal("/en/about", route.Path)
	s.Equal("en", route.Meta("lang"))
	s.True(r.HasRoute("de.about"))
	s.False(r.HasRoute("nl.about"))
}

func (s *RegistrySuite) TestDomainGroups() {
	settings := locales.Settings{Supported: locales.MustParse("en=example.com,nl=example.nl")}
	r := NewRegistry()

	r.Localized(settings, func(g *Group) {
		g.Get("about", "about", writeName)
	})

	route, ok := r.Route("nl.about")
	s.Require().True(ok)
	s.Equal("example.nl", route.Domain)
	s.Equal("GET example.nl/about", route.Pattern)

	req := httptest.NewRequest(http.MethodGet, "http://example.nl/about", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	s.Equal("nl.about|nl", rec.Body.String())
}

func (s *RegistrySuite) TestMiddlewareSeesRoute() {
	r := NewRegistry()
	var seen string
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			seen = RouteFromContext(req.Context()).Name
			next.ServeHTTP(w, req)
		})
	}

	r.Group(GroupAttributes{Middleware: []Middleware{mw}}, func(g *Group) {
		g.Get("dashboard", "dashboard", writeName)
	})

	s.Equal(http.StatusOK, s.serve(r, http.MethodGet, "/dashboard").Code)
	s.Equal("dashboard", seen)
}

func (s *RegistrySuite) TestFallbackAndMatch() {
	r := NewRegistry()
	r.HandleFunc(http.MethodGet, "/about", "about", writeName)
	r.Fallback(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		s.True(IsFallback(req.Context()))
	}))

	s.Equal(http.StatusTeapot, s.serve(r, http.MethodGet, "/missing").Code)

	route, ok := r.Match(httptest.NewRequest(http.MethodGet, "/about", nil))
	s.Require().True(ok)
	s.Equal("about", route.Name)

	route, ok = r.Match(httptest.NewRequest(http.MethodGet, "/missing", nil))
	s.Require().True(ok)
	s.True(route.Fallback)
}
