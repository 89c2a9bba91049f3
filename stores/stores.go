package stores

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pitabwire/util"

	"github.com/pitabwire/lingo/localization"
	"github.com/pitabwire/lingo/session"
)

// Identities of the built in stores as used in configuration.
const (
	NameSession = "session"
	NameCookie  = "cookie"
	NameApp     = "app"
)

var (
	// ErrUnknownStore is returned by Build for an identity without a store.
	ErrUnknownStore = errors.New("unknown locale store")
	// ErrNoLocaleScope is returned by the app store when the request context was not
	// prepared with localization.ToContext.
	ErrNoLocaleScope = errors.New("request has no locale scope")
)

// Store records a resolved locale in one medium.
type Store interface {
	Name() string
	Store(w http.ResponseWriter, r *http.Request, locale string) error
}

// FailurePolicy decides what a failing store does to the stores after it.
type FailurePolicy string

const (
	// ContinueOnFailure runs every store and joins the errors.
	ContinueOnFailure FailurePolicy = "continue"
	// AbortOnFailure stops at the first failing store.
	AbortOnFailure FailurePolicy = "abort"
)

// ParseFailurePolicy reads a policy name, defaulting to ContinueOnFailure.
func ParseFailurePolicy(name string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", ContinueOnFailure:
		return ContinueOnFailure, nil
	case AbortOnFailure:
		return AbortOnFailure, nil
	default:
		return "", fmt.Errorf("unknown store failure policy %q", name)
	}
}

// Chain writes a locale to its stores in order.
type Chain struct {
	stores []Store
	policy FailurePolicy
}

func NewChain(policy FailurePolicy, stores ...Store) *Chain {
	if policy == "" {
		policy = ContinueOnFailure
	}
	return &Chain{stores: append([]Store{}, stores...), policy: policy}
}

// Stores returns the names of the configured stores in order.
func (c *Chain) Stores() []string {
	names := make([]string, 0, len(c.stores))
	for _, s := range c.stores {
		names = append(names, s.Name())
	}
	return names
}

// Store writes locale to every store, honouring the failure policy.
func (c *Chain) Store(w http.ResponseWriter, r *http.Request, locale string) error {
	var errs []error
	for _, s := range c.stores {
		err := s.Store(w, r, locale)
		if err == nil {
			continue
		}

		err = fmt.Errorf("locale store %s: %w", s.Name(), err)
		if c.policy == AbortOnFailure {
			return err
		}
		util.Log(r.Context()).WithError(err).WithField("store", s.Name()).Warn("locale store failed")
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Dependencies carries what the built in stores write to.
type Dependencies struct {
	SessionKey    string
	CookieName    string
	CookieMinutes int
	SecureCookie  bool
}

// Build constructs the stores named in order.
func Build(names []string, deps Dependencies) ([]Store, error) {
	stores := make([]Store, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var s Store
		switch name {
		case NameSession:
			s = &SessionStore{Key: deps.SessionKey}
		case NameCookie:
			s = &CookieStore{
				Cookie: deps.CookieName,
				MaxAge: time.Duration(deps.CookieMinutes) * time.Minute,
				Secure: deps.SecureCookie,
			}
		case NameApp:
			s = &AppStore{}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownStore, name)
		}
		stores = append(stores, s)
	}
	return stores, nil
}

// SessionStore puts the locale under a session key. Requests without a session are
// left alone.
type SessionStore struct {
	Key string
}

func (s *SessionStore) Name() string { return NameSession }

func (s *SessionStore) Store(_ http.ResponseWriter, r *http.Request, locale string) error {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return nil
	}
	return sess.Put(s.Key, locale)
}

// CookieStore sets the locale cookie on the response.
type CookieStore struct {
	Cookie string
	MaxAge time.Duration
	Secure bool
}

func (s *CookieStore) Name() string { return NameCookie }

func (s *CookieStore) Store(w http.ResponseWriter, _ *http.Request, locale string) error {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Cookie,
		Value:    locale,
		Path:     "/",
		MaxAge:   int(s.MaxAge / time.Second),
		Secure:   s.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// AppStore makes the locale current for the rest of the request.
type AppStore struct{}

func (s *AppStore) Name() string { return NameApp }

func (s *AppStore) Store(_ http.ResponseWriter, r *http.Request, locale string) error {
	if !localization.SetCurrent(r.Context(), locale) {
		return ErrNoLocaleScope
	}
	return nil
}
