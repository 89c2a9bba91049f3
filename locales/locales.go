package locales

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies the shape of a supported locales configuration.
type Kind int

const (
	// KindList is a plain list of locale codes; codes double as URL slugs.
	KindList Kind = iota
	// KindSlugs maps each locale code to a custom URL slug.
	KindSlugs
	// KindDomains maps each locale code to a custom domain.
	KindDomains
)

func (k Kind) String() string {
	switch k {
	case KindSlugs:
		return "slugs"
	case KindDomains:
		return "domains"
	default:
		return "list"
	}
}

const (
	domainSeparator = "."
	pairSeparator   = "="
	listSeparator   = ","
)

// Entry is one configured locale with its slug or domain.
// Value equals Locale for plain lists.
type Entry struct {
	Locale string
	Value  string
}

// Supported is the parsed supported locales configuration.
// The shape is decided once at construction and never inferred again.
type Supported struct {
	kind    Kind
	entries []Entry

	byLocale map[string]string
	byValue  map[string]string
}

// List builds a plain locale list.
func List(codes ...string) *Supported {
	entries := make([]Entry, 0, len(codes))
	for _, code := range codes {
		entries = append(entries, Entry{Locale: code, Value: code})
	}
	return build(KindList, entries)
}

// Slugs builds a locale to custom slug mapping.
func Slugs(entries ...Entry) *Supported {
	return build(KindSlugs, entries)
}

// Domains builds a locale to custom domain mapping.
func Domains(entries ...Entry) *Supported {
	return build(KindDomains, entries)
}

// FromPairs sniffs the shape of an ordered key/value configuration.
// A mapping is a domain map when its first value contains a dot, a slug map when
// its keys are not numeric, and a plain list of its values otherwise.
func FromPairs(entries ...Entry) *Supported {
	if len(entries) == 0 {
		return List()
	}

	if strings.Contains(entries[0].Value, domainSeparator) {
		return Domains(entries...)
	}

	if !numericKeys(entries) {
		return Slugs(entries...)
	}

	codes := make([]string, 0, len(entries))
	for _, e := range entries {
		codes = append(codes, e.Value)
	}
	return List(codes...)
}

// Parse reads the text form used in environment variables:
// "en,nl", "en=english,nl=dutch" or "en=example.com,nl=example.nl".
func Parse(text string) (*Supported, error) {
	s := &Supported{}
	if err := s.UnmarshalText([]byte(text)); err != nil {
		return nil, err
	}
	return s, nil
}

// MustParse is Parse that panics, for static configuration.
func MustParse(text string) *Supported {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

func numericKeys(entries []Entry) bool {
	for _, e := range entries {
		if _, err := strconv.Atoi(e.Locale); err != nil {
			return false
		}
	}
	return true
}

func build(kind Kind, entries []Entry) *Supported {
	s := &Supported{
		kind:     kind,
		entries:  make([]Entry, 0, len(entries)),
		byLocale: make(map[string]string, len(entries)),
		byValue:  make(map[string]string, len(entries)),
	}

	for _, e := range entries {
		e.Locale = strings.TrimSpace(e.Locale)
		e.Value = strings.TrimSpace(e.Value)
		if e.Locale == "" {
			continue
		}
		if e.Value == "" {
			e.Value = e.Locale
		}
		if _, dup := s.byLocale[e.Locale]; dup {
			continue
		}
		s.entries = append(s.entries, e)
		s.byLocale[e.Locale] = e.Value
		s.byValue[e.Value] = e.Locale
	}

	return s
}

// UnmarshalText implements encoding.TextUnmarshaler so the configuration can be read
// straight from an environment variable.
func (s *Supported) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*s = *List()
		return nil
	}

	parts := strings.Split(raw, listSeparator)
	if !strings.Contains(raw, pairSeparator) {
		*s = *List(parts...)
		return nil
	}

	entries := make([]Entry, 0, len(parts))
	for _, part := range parts {
		key, value, ok := strings.Cut(part, pairSeparator)
		if !ok {
			return fmt.Errorf("supported locales: entry %q is not a locale=value pair", part)
		}
		entries = append(entries, Entry{Locale: key, Value: value})
	}

	*s = *FromPairs(entries...)
	return nil
}

// MarshalText renders the configuration back to its text form.
func (s *Supported) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalYAML accepts a sequence (plain list) or a mapping whose order is kept.
func (s *Supported) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return s.UnmarshalText([]byte(node.Value))

	case yaml.SequenceNode:
		var codes []string
		if err := node.Decode(&codes); err != nil {
			return err
		}
		*s = *List(codes...)
		return nil

	case yaml.MappingNode:
		entries := make([]Entry, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			entries = append(entries, Entry{
				Locale: node.Content[i].Value,
				Value:  node.Content[i+1].Value,
			})
		}
		*s = *FromPairs(entries...)
		return nil

	default:
		return fmt.Errorf("supported locales: unsupported yaml node kind %d", node.Kind)
	}
}

func (s *Supported) String() string {
	if s == nil {
		return ""
	}
	parts := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if s.kind == KindList {
			parts = append(parts, e.Locale)
			continue
		}
		parts = append(parts, e.Locale+pairSeparator+e.Value)
	}
	return strings.Join(parts, listSeparator)
}

// Kind reports the configuration shape.
func (s *Supported) Kind() Kind {
	if s == nil {
		return KindList
	}
	return s.kind
}

// Entries returns a copy of the configured entries in order.
func (s *Supported) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Locales returns the configured locale codes in order.
func (s *Supported) Locales() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Locale)
	}
	return out
}

// Empty reports whether no locale is configured.
func (s *Supported) Empty() bool {
	return s == nil || len(s.entries) == 0
}

// IsSupported reports whether locale is one of the configured locales.
func (s *Supported) IsSupported(locale string) bool {
	if s == nil || locale == "" {
		return false
	}
	_, ok := s.byLocale[locale]
	return ok
}

// HasCustomSlugs reports whether locales map to custom slugs.
func (s *Supported) HasCustomSlugs() bool {
	return s.Kind() == KindSlugs
}

// HasCustomDomains reports whether locales map to custom domains.
func (s *Supported) HasCustomDomains() bool {
	return s.Kind() == KindDomains
}

// SlugFor returns the URL slug of locale. Plain lists use the code itself.
// Domain maps have no slugs.
func (s *Supported) SlugFor(locale string) (string, bool) {
	if s.Kind() == KindDomains {
		return "", false
	}
	slug, ok := s.lookup(locale)
	return slug, ok
}

// DomainFor returns the custom domain of locale, only for domain maps.
func (s *Supported) DomainFor(locale string) (string, bool) {
	if s.Kind() != KindDomains {
		return "", false
	}
	return s.lookup(locale)
}

// LocaleForSlug is the reverse of SlugFor.
func (s *Supported) LocaleForSlug(slug string) (string, bool) {
	if s == nil || s.kind == KindDomains || slug == "" {
		return "", false
	}
	locale, ok := s.byValue[slug]
	return locale, ok
}

// LocaleForDomain is the reverse of DomainFor.
func (s *Supported) LocaleForDomain(domain string) (string, bool) {
	if s == nil || s.kind != KindDomains || domain == "" {
		return "", false
	}
	locale, ok := s.byValue[strings.ToLower(domain)]
	if !ok {
		locale, ok = s.byValue[domain]
	}
	return locale, ok
}

func (s *Supported) lookup(locale string) (string, bool) {
	if s == nil || locale == "" {
		return "", false
	}
	value, ok := s.byLocale[locale]
	return value, ok
}
