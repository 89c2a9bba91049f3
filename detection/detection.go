package detection

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pitabwire/util"

	"github.com/pitabwire/lingo/locales"
)

// Detector produces candidate locales from one source of a request.
// Returning no candidates, or only empty strings, means the source has no opinion.
type Detector interface {
	Name() string
	Detect(r *http.Request) ([]string, error)
}

// Result is a resolved locale with the detector that produced it.
type Result struct {
	Locale   string
	Detector string
}

// Chain runs detectors in priority order and returns the first candidate that is
// supported or comes from a trusted detector.
type Chain struct {
	detectors []Detector
	trusted   map[string]struct{}
	supported *locales.Supported
}

// NewChain creates a chain over detectors. trusted names detectors whose candidates
// are accepted without checking supported. The route detector is always trusted,
// its locale comes from route registration.
func NewChain(supported *locales.Supported, detectors []Detector, trusted ...string) *Chain {
	c := &Chain{
		detectors: append([]Detector{}, detectors...),
		trusted:   map[string]struct{}{NameRoute: {}},
		supported: supported,
	}
	for _, name := range trusted {
		c.trusted[name] = struct{}{}
	}
	return c
}

// Detectors returns the names of the configured detectors in order.
func (c *Chain) Detectors() []string {
	names := make([]string, 0, len(c.detectors))
	for _, d := range c.detectors {
		names = append(names, d.Name())
	}
	return names
}

// IsTrusted reports whether the named detector bypasses the supported check.
func (c *Chain) IsTrusted(name string) bool {
	_, ok := c.trusted[name]
	return ok
}

// Detect resolves the locale of r. ok is false when no detector produced an
// accepted candidate. Detector errors stop the chain and are returned as is.
func (c *Chain) Detect(r *http.Request) (Result, bool, error) {
	log := util.Log(r.Context())

	for _, detector := range c.detectors {
		candidates, err := detector.Detect(r)
		if err != nil {
			return Result{}, false, fmt.Errorf("locale detector %s: %w", detector.Name(), err)
		}

		trusted := c.IsTrusted(detector.Name())
		for _, candidate := range candidates {
			candidate = strings.TrimSpace(candidate)
			if candidate == "" {
				continue
			}
			if trusted || c.supported.IsSupported(candidate) {
				log.WithField("detector", detector.Name()).WithField("locale", candidate).
					Debug("locale detected")
				return Result{Locale: candidate, Detector: detector.Name()}, true, nil
			}
		}
	}

	return Result{}, false, nil
}

// Func adapts a function to a Detector.
type Func struct {
	ID string
	Fn func(r *http.Request) ([]string, error)
}

func (f Func) Name() string {
	return f.ID
}

func (f Func) Detect(r *http.Request) ([]string, error) {
	return f.Fn(r)
}

func single(locale string) []string {
	if locale == "" {
		return nil
	}
	return []string{locale}
}
