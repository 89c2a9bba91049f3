package detection

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/pitabwire/lingo/locales"
	"github.com/pitabwire/lingo/localization"
	"github.com/pitabwire/lingo/routing"
	"github.com/pitabwire/lingo/security"
	"github.com/pitabwire/lingo/session"
)

// Identities of the built in detectors as used in configuration.
const (
	NameRoute   = "route"
	NameURL     = "url"
	NameOmitted = "omitted"
	NameUser    = "user"
	NameSession = "session"
	NameCookie  = "cookie"
	NameBrowser = "browser"
	NameApp     = "app"
)

// ErrUnknownDetector is returned by Build for an identity without a detector.
var ErrUnknownDetector = errors.New("unknown locale detector")

// Dependencies carries what the built in detectors read from.
type Dependencies struct {
	Settings      locales.Settings
	RouteAction   string
	UserAttribute string
	SessionKey    string
	CookieName    string
	DefaultLocale string
}

// Build constructs the detectors named in order.
func Build(names []string, deps Dependencies) ([]Detector, error) {
	detectors := make([]Detector, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var d Detector
		switch name {
		case NameRoute:
			d = &RouteDetector{Action: deps.RouteAction}
		case NameURL:
			d = &URLDetector{Supported: deps.Settings.Supported}
		case NameOmitted:
			d = &OmittedDetector{Locale: deps.Settings.Omitted}
		case NameUser:
			d = &UserDetector{Attribute: deps.UserAttribute}
		case NameSession:
			d = &SessionDetector{Key: deps.SessionKey}
		case NameCookie:
			d = &CookieDetector{Cookie: deps.CookieName}
		case NameBrowser:
			d = &BrowserDetector{}
		case NameApp:
			d = &AppDetector{Default: deps.DefaultLocale}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownDetector, name)
		}
		detectors = append(detectors, d)
	}
	return detectors, nil
}

// RouteDetector reads the locale attached to the matched route at registration.
type RouteDetector struct {
	Action string
}

func (d *RouteDetector) Name() string { return NameRoute }

func (d *RouteDetector) Detect(r *http.Request) ([]string, error) {
	action := d.Action
	if action == "" {
		action = routing.DefaultRouteAction
	}
	return single(routing.RouteFromContext(r.Context()).Meta(action)), nil
}

// URLDetector reads the first path segment, or the host when locales map to domains.
type URLDetector struct {
	Supported *locales.Supported
}

func (d *URLDetector) Name() string { return NameURL }

func (d *URLDetector) Detect(r *http.Request) ([]string, error) {
	if d.Supported.HasCustomDomains() {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		locale, _ := d.Supported.LocaleForDomain(host)
		return single(locale), nil
	}

	segment := strings.TrimPrefix(r.URL.Path, "/")
	if i := strings.IndexByte(segment, '/'); i >= 0 {
		segment = segment[:i]
	}

	if d.Supported.HasCustomSlugs() {
		locale, _ := d.Supported.LocaleForSlug(segment)
		return single(locale), nil
	}
	return single(segment), nil
}

// OmittedDetector offers the omitted locale, implied by a URL without a locale slug.
type OmittedDetector struct {
	Locale string
}

func (d *OmittedDetector) Name() string { return NameOmitted }

func (d *OmittedDetector) Detect(_ *http.Request) ([]string, error) {
	return single(d.Locale), nil
}

// UserDetector reads an attribute of the authenticated principal.
type UserDetector struct {
	Attribute string
}

func (d *UserDetector) Name() string { return NameUser }

func (d *UserDetector) Detect(r *http.Request) ([]string, error) {
	principal := security.FromContext(r.Context())
	if principal == nil {
		return nil, nil
	}
	value, _ := principal.Attribute(d.Attribute)
	return single(value), nil
}

// SessionDetector reads a session key.
type SessionDetector struct {
	Key string
}

func (d *SessionDetector) Name() string { return NameSession }

func (d *SessionDetector) Detect(r *http.Request) ([]string, error) {
	s := session.FromContext(r.Context())
	if s == nil {
		return nil, nil
	}
	value, _ := s.Get(d.Key)
	return single(value), nil
}

// CookieDetector reads a cookie.
type CookieDetector struct {
	Cookie string
}

func (d *CookieDetector) Name() string { return NameCookie }

func (d *CookieDetector) Detect(r *http.Request) ([]string, error) {
	c, err := r.Cookie(d.Cookie)
	if err != nil {
		return nil, nil //nolint:nilerr // a missing cookie is no candidate
	}
	return single(c.Value), nil
}

// BrowserDetector offers the Accept-Language preferences by quality.
type BrowserDetector struct{}

func (d *BrowserDetector) Name() string { return NameBrowser }

func (d *BrowserDetector) Detect(r *http.Request) ([]string, error) {
	return localization.ExtractLanguageFromHTTPHeader(r.Header), nil
}

// AppDetector offers the current locale of the request, else the default locale.
type AppDetector struct {
	Default string
}

func (d *AppDetector) Name() string { return NameApp }

func (d *AppDetector) Detect(r *http.Request) ([]string, error) {
	if locale := localization.FromContext(r.Context()); locale != "" {
		return single(locale), nil
	}
	return single(d.Default), nil
}
