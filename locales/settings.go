package locales

// Settings groups the supported locales with the optional omitted and fallback locales.
type Settings struct {
	Supported *Supported
	Omitted   string
	Fallback  string
}

// Order returns the supported locales with the omitted locale moved last, so its
// unprefixed routes are registered after every prefixed locale.
func (s Settings) Order() []string {
	codes := s.Supported.Locales()
	if s.Omitted == "" || !s.Supported.IsSupported(s.Omitted) {
		return codes
	}

	ordered := make([]string, 0, len(codes))
	for _, code := range codes {
		if code != s.Omitted {
			ordered = append(ordered, code)
		}
	}
	return append(ordered, s.Omitted)
}

// Normalize substitutes the fallback locale for an unsupported locale.
// Without a fallback the locale is returned unchanged.
func (s Settings) Normalize(locale string) string {
	if s.Supported.IsSupported(locale) || s.Fallback == "" {
		return locale
	}
	return s.Fallback
}

// IsOmitted reports whether locale is the omitted locale.
func (s Settings) IsOmitted(locale string) bool {
	return s.Omitted != "" && s.Omitted == locale
}

// Prefix returns the URL prefix of locale: its slug, or nothing when locale is omitted
// or domains are configured.
func (s Settings) Prefix(locale string) string {
	if s.IsOmitted(locale) || s.Supported.HasCustomDomains() {
		return ""
	}
	slug, _ := s.Supported.SlugFor(locale)
	return slug
}
