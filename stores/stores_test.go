package stores

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lingo/localization"
	"github.com/pitabwire/lingo/session"
)

type mapSession map[string]string

func (m mapSession) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapSession) Put(key, value string) error {
	m[key] = value
	return nil
}

type recording struct {
	name  string
	err   error
	calls *[]string
}

func (r recording) Name() string { return r.name }

func (r recording) Store(_ http.ResponseWriter, _ *http.Request, locale string) error {
	*r.calls = append(*r.calls, r.name+":"+locale)
	return r.err
}

type StoresSuite struct {
	suite.Suite
}

func TestStoresSuite(t *testing.T) {
	suite.Run(t, new(StoresSuite))
}

func (s *StoresSuite) TestFailurePolicies() {
	errFirst := errors.New("first")
	errThird := errors.New("third")

	testCases := []struct {
		name     string
		policy   FailurePolicy
		calls    []string
		errors   []error
		notError []error
	}{
		{
			name:   "continue runs every store",
			policy: ContinueOnFailure,
			calls:  []string{"a:nl", "b:nl", "c:nl"},
			errors: []error{errFirst, errThird},
		},
		{
			name:     "abort stops at first failure",
			policy:   AbortOnFailure,
			calls:    []string{"a:nl"},
			errors:   []error{errFirst},
			notError: []error{errThird},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			var calls []string
			chain := NewChain(tc.policy,
				recording{name: "a", err: errFirst, calls: &calls},
				recording{name: "b", calls: &calls},
				recording{name: "c", err: errThird, calls: &calls},
			)

			err := chain.Store(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "nl")
			s.Equal(tc.calls, calls)
			for _, want := range tc.errors {
				s.Require().ErrorIs(err, want)
			}
			for _, unwanted := range tc.notError {
				s.NotErrorIs(err, unwanted)
			}
		})
	}
}

func (s *StoresSuite) TestParseFailurePolicy() {
	policy, err := ParseFailurePolicy("")
	s.Require().NoError(err)
	s.Equal(ContinueOnFailure, policy)

	policy, err = ParseFailurePolicy("Abort")
	s.Require().NoError(err)
	s.Equal(AbortOnFailure, policy)

	_, err = ParseFailurePolicy("retry")
	s.Require().Error(err)
}

func (s *StoresSuite) TestBuiltins() {
	stores, err := Build([]string{"session", "cookie", "app"}, Dependencies{
		SessionKey:    "locale",
		CookieName:    "lang",
		CookieMinutes: 60,
	})
	s.Require().NoError(err)

	chain := NewChain("", stores...)
	s.Equal([]string{"session", "cookie", "app"}, chain.Stores())

	sess := mapSession{}
	ctx := session.ToContext(localization.ToContext(context.Background(), "en"), sess)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	s.Require().NoError(chain.Store(rec, req, "nl"))

	s.Equal("nl", sess["locale"])
	s.Equal("nl", localization.FromContext(ctx))

	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal("lang", cookies[0].Name)
	s.Equal("nl", cookies[0].Value)
	s.Equal(3600, cookies[0].MaxAge)
	s.Equal("/", cookies[0].Path)
	s.True(cookies[0].HttpOnly)
	s.Equal(http.SameSiteLaxMode, cookies[0].SameSite)
}

func (s *StoresSuite) TestAppStoreNeedsScope() {
	err := (&AppStore{}).Store(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "nl")
	s.Require().ErrorIs(err, ErrNoLocaleScope)

	s.Require().NoError((&SessionStore{Key: "locale"}).Store(
		httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "nl"))

	_, err = Build([]string{"database"}, Dependencies{})
	s.Require().ErrorIs(err, ErrUnknownStore)
}
