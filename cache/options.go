package cache

import (
	"net/url"
	"strings"
	"time"
)

// Option configures a cache backend.
type Option func(*Options)

// Options holds cache connection configuration.
type Options struct {
	DSN    string
	Name   string
	MaxAge time.Duration
}

// NewOptions applies opts over the defaults shared by the backends.
func NewOptions(opts ...Option) *Options {
	o := &Options{MaxAge: time.Hour}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithDSN(dsn string) Option {
	return func(o *Options) {
		o.DSN = dsn
	}
}

func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithMaxAge returns an Option to configure the max age of the cache.
func WithMaxAge(maxAge time.Duration) Option {
	return func(o *Options) {
		o.MaxAge = maxAge
	}
}

// Scheme returns the lower cased scheme of the DSN, "mem" when it is empty.
func (o *Options) Scheme() string {
	if strings.TrimSpace(o.DSN) == "" {
		return "mem"
	}
	u, err := url.Parse(o.DSN)
	if err != nil || u.Scheme == "" {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
