package localization

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"golang.org/x/text/language"
)

type contextKey string

func (c contextKey) String() string {
	return "lingo/localization/" + string(c)
}

const ctxKeyLocale = contextKey("localeKey")

type current struct {
	locale atomic.Value
}

// ToContext installs a request scoped current locale. Code that must act as another
// locale derives a new context instead of mutating a shared value, so the override
// ends with the scope of that context.
func ToContext(ctx context.Context, locale string) context.Context {
	c := &current{}
	c.locale.Store(locale)
	return context.WithValue(ctx, ctxKeyLocale, c)
}

// WithLocale is ToContext under the name used at call sites that temporarily act as
// a different locale.
func WithLocale(ctx context.Context, locale string) context.Context {
	return ToContext(ctx, locale)
}

// FromContext extracts the current locale from the supplied context if any exist.
func FromContext(ctx context.Context) string {
	c, ok := ctx.Value(ctxKeyLocale).(*current)
	if !ok {
		return ""
	}
	locale, _ := c.locale.Load().(string)
	return locale
}

// SetCurrent replaces the current locale of the scope installed by ToContext.
// It reports false when ctx carries no such scope.
func SetCurrent(ctx context.Context, locale string) bool {
	c, ok := ctx.Value(ctxKeyLocale).(*current)
	if !ok {
		return false
	}
	c.locale.Store(locale)
	return true
}

// ExtractLanguageFromHTTPHeader returns the Accept-Language preferences ordered by
// quality. Each tag is followed by its base language so "nl-BE" also offers "nl".
func ExtractLanguageFromHTTPHeader(header http.Header) []string {
	acceptLanguageHeader := header.Get("Accept-Language")
	if strings.TrimSpace(acceptLanguageHeader) == "" {
		return nil
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguageHeader)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{}, len(tags)*2)
	var languages []string
	add := func(code string) {
		if code == "" || code == "und" {
			return
		}
		if _, dup := seen[code]; dup {
			return
		}
		seen[code] = struct{}{}
		languages = append(languages, code)
	}

	for _, tag := range tags {
		add(tag.String())
		if base, confidence := tag.Base(); confidence != language.No {
			add(base.String())
		}
	}

	return languages
}
