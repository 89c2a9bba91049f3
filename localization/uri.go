package localization

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pitabwire/util"
	"golang.org/x/text/language"
)

// URITranslator translates route URIs per locale from TOML route files
// named routes.<locale>.toml.
type URITranslator struct {
	bundle *i18n.Bundle
}

// NewURITranslator loads routes.<locale>.toml for each locale found in folder.
// Locales without a file are skipped; their URIs stay untranslated.
func NewURITranslator(folder, defaultLocale string, locales ...string) (*URITranslator, error) {
	if folder == "" {
		folder = "localization"
	}

	defaultTag := language.English
	if defaultLocale != "" {
		tag, err := language.Parse(defaultLocale)
		if err != nil {
			return nil, fmt.Errorf("route translations: default locale %q: %w", defaultLocale, err)
		}
		defaultTag = tag
	}

	bundle := i18n.NewBundle(defaultTag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, locale := range locales {
		path := filepath.Join(folder, fmt.Sprintf("routes.%s.toml", locale))
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if _, err := bundle.LoadMessageFile(path); err != nil {
			return nil, fmt.Errorf("route translations: %w", err)
		}
	}

	return &URITranslator{bundle: bundle}, nil
}

// Bundle Access the translation bundle instantiated in the translator.
func (t *URITranslator) Bundle() *i18n.Bundle {
	return t.bundle
}

// Translate returns uri in locale. The whole uri is tried as a message id first,
// then every segment that is not a {parameter}. Untranslated parts are kept.
func (t *URITranslator) Translate(ctx context.Context, uri, locale string) string {
	if t == nil || t.bundle == nil {
		return uri
	}

	leading := strings.HasPrefix(uri, "/")
	trimmed := strings.Trim(uri, "/")
	if trimmed == "" {
		return uri
	}

	localizer := i18n.NewLocalizer(t.bundle, locale)

	if translated, ok := t.lookup(ctx, localizer, trimmed); ok {
		return withLeadingSlash(translated, leading)
	}

	segments := strings.Split(trimmed, "/")
	for i, segment := range segments {
		if segment == "" || strings.HasPrefix(segment, "{") {
			continue
		}
		if translated, ok := t.lookup(ctx, localizer, segment); ok {
			segments[i] = translated
		}
	}

	return withLeadingSlash(strings.Join(segments, "/"), leading)
}

func (t *URITranslator) lookup(ctx context.Context, localizer *i18n.Localizer, messageID string) (string, bool) {
	translated, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		var notFound *i18n.MessageNotFoundErr
		if !errors.As(err, &notFound) {
			util.Log(ctx).WithError(err).WithField("messageID", messageID).
				Warn("route translation failed")
		}
		return "", false
	}
	translated = strings.Trim(translated, "/")
	return translated, translated != ""
}

func withLeadingSlash(uri string, leading bool) string {
	if leading {
		return "/" + uri
	}
	return uri
}
