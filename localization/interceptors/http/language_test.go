package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lingo/detection"
	"github.com/pitabwire/lingo/locales"
	"github.com/pitabwire/lingo/localization"
	interceptors "github.com/pitabwire/lingo/localization/interceptors/http"
	"github.com/pitabwire/lingo/stores"
)

type LanguageSuite struct {
	suite.Suite
}

func TestLanguageSuite(t *testing.T) {
	suite.Run(t, new(LanguageSuite))
}

func echoLocale(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(localization.FromContext(r.Context())))
}

func (s *LanguageSuite) chain(trusted ...string) *detection.Chain {
	detectors, err := detection.Build([]string{"url", "cookie", "browser", "app"}, detection.Dependencies{
		Settings:      locales.Settings{Supported: locales.List("en", "nl")},
		CookieName:    "locale",
		DefaultLocale: "en",
	})
	s.Require().NoError(err)
	return detection.NewChain(locales.List("en", "nl"), detectors, trusted...)
}

func (s *LanguageSuite) TestResolvesAndStores() {
	storeList, err := stores.Build([]string{"cookie", "app"}, stores.Dependencies{CookieName: "locale", CookieMinutes: 1})
	s.Require().NoError(err)

	mw := interceptors.LocaleHTTPMiddleware(s.chain(), stores.NewChain(stores.ContinueOnFailure, storeList...),
		interceptors.WithDefaultLocale("en"))
	handler := mw(http.HandlerFunc(echoLocale))

	testCases := []struct {
		name     string
		target   string
		header   string
		expected string
	}{
		{name: "url segment", target: "/nl/about", expected: "nl"},
		{name: "browser header", target: "/about", header: "nl-BE,nl;q=0.9", expected: "nl"},
		{name: "app default", target: "/about", header: "de", expected: "en"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Accept-Language", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			s.Equal(http.StatusOK, rec.Code)
			s.Equal(tc.expected, rec.Body.String())
			s.Equal(tc.expected, rec.Header().Get("Content-Language"))

			cookies := rec.Result().Cookies()
			s.Require().Len(cookies, 1)
			s.Equal(tc.expected, cookies[0].Value)
		})
	}
}

func (s *LanguageSuite) TestWithoutAppStoreKeepsDefault() {
	mw := interceptors.LocaleHTTPMiddleware(s.chain(), nil, interceptors.WithDefaultLocale("en"),
		interceptors.WithoutContentLanguage())

	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(echoLocale)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nl/about", nil))

	s.Equal("en", rec.Body.String())
	s.Empty(rec.Header().Get("Content-Language"))
}

type failingStore struct{}

func (failingStore) Store(http.ResponseWriter, *http.Request, string) error {
	return errors.New("session backend down")
}

func (s *LanguageSuite) TestStoreFailureUsesErrorHandler() {
	var handled error
	mw := interceptors.LocaleHTTPMiddleware(s.chain(), failingStore{},
		interceptors.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
			handled = err
			w.WriteHeader(http.StatusServiceUnavailable)
		}))

	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(echoLocale)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nl", nil))

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Require().Error(handled)

	rec = httptest.NewRecorder()
	interceptors.LocaleHTTPMiddleware(s.chain(), failingStore{})(http.HandlerFunc(echoLocale)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nl", nil))
	s.Equal(http.StatusInternalServerError, rec.Code)
}
