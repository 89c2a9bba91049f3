package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/pitabwire/lingo/locales"
)

type contextKey string

func (c contextKey) String() string {
	return "lingo/config/" + string(c)
}

const ctxKeyConfiguration = contextKey("configurationKey")

// ToContext adds service configuration to the current supplied context.
func ToContext(ctx context.Context, config any) context.Context {
	return context.WithValue(ctx, ctxKeyConfiguration, config)
}

// FromContext extracts service configuration from the supplied context if any exist.
func FromContext[T any](ctx context.Context) T {
	if cfg, ok := ctx.Value(ctxKeyConfiguration).(T); ok {
		return cfg
	}
	var zero T
	return zero
}

// FromEnv convenience method to process configs.
func FromEnv[T any]() (T, error) {
	return env.ParseAs[T]()
}

// FillEnv convenience method to fill a config object with environment data.
func FillEnv(v any) error {
	return env.Parse(v)
}

// FromFile loads a YAML configuration file. Values resolve as env defaults, then the
// file, then variables set in the environment.
func FromFile[T any](path string) (T, error) {
	var cfg T

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		return cfg, fmt.Errorf("config defaults: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config file: %w", err)
	}
	if err = yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}

	// A tag no field carries keeps defaults from overwriting file values.
	if err = env.ParseWithOptions(&cfg, env.Options{DefaultValueTagName: "envFileOverlay"}); err != nil {
		return cfg, fmt.Errorf("config env: %w", err)
	}
	return cfg, nil
}

// Policies for a configuration without supported locales.
const (
	EmptyLocalesIgnore = "ignore"
	EmptyLocalesError  = "error"
)

// Slug cache drivers.
const (
	SlugCacheMemory = "memory"
	SlugCacheRedis  = "redis"
	SlugCacheValkey = "valkey"
)

type Configuration struct {
	LogLevel      string `envDefault:"info"                      env:"LOG_LEVEL"       yaml:"log_level"`
	LogTimeFormat string `envDefault:"2006-01-02T15:04:05Z07:00" env:"LOG_TIME_FORMAT" yaml:"log_time_format"`
	LogColored    bool   `envDefault:"true"                      env:"LOG_COLORED"     yaml:"log_colored"`

	LogShowStackTrace bool `envDefault:"false" env:"LOG_SHOW_STACK_TRACE" yaml:"log_show_stack_trace"`

	OpenTelemetryDisable    bool    `envDefault:"true" env:"OPENTELEMETRY_DISABLE"        yaml:"opentelemetry_disable"`
	OpenTelemetryTraceRatio float64 `envDefault:"0.1"  env:"OPENTELEMETRY_TRACE_ID_RATIO" yaml:"opentelemetry_trace_id_ratio"`

	ServiceName    string `envDefault:"lingo" env:"SERVICE_NAME"    yaml:"service_name"`
	ServiceVersion string `envDefault:""      env:"SERVICE_VERSION" yaml:"service_version"`

	HTTPServerPort string `envDefault:":8080" env:"HTTP_PORT" yaml:"http_server_port"`

	SupportedLocales locales.Supported `envDefault:"en"    env:"SUPPORTED_LOCALES" yaml:"supported_locales"`
	DefaultLocale    string            `envDefault:"en"    env:"DEFAULT_LOCALE"    yaml:"default_locale"`
	FallbackLocale   string            `envDefault:""      env:"FALLBACK_LOCALE"   yaml:"fallback_locale"`
	OmittedLocale    string            `envDefault:""      env:"OMITTED_LOCALE"    yaml:"omitted_locale"`

	RedirectToLocalizedURLs bool   `envDefault:"false"     env:"REDIRECT_TO_LOCALIZED_URLS" yaml:"redirect_to_localized_urls"`
	RedirectStatusCode      int    `envDefault:"301"       env:"REDIRECT_STATUS_CODE"       yaml:"redirect_status_code"`
	NotFoundView            string `envDefault:"errors.404" env:"NOT_FOUND_VIEW"            yaml:"404_view"`

	RouteAction           string `envDefault:"locale" env:"ROUTE_ACTION"            yaml:"route_action"`
	RouteTranslationsPath string `envDefault:""       env:"ROUTE_TRANSLATIONS_PATH" yaml:"route_translations_path"`

	UserAttribute string `envDefault:"locale" env:"USER_ATTRIBUTE" yaml:"user_attribute"`
	SessionKey    string `envDefault:"locale" env:"SESSION_KEY"    yaml:"session_key"`
	CookieName    string `envDefault:"locale" env:"COOKIE_NAME"    yaml:"cookie_name"`
	CookieMinutes int    `envDefault:"525600" env:"COOKIE_MINUTES" yaml:"cookie_minutes"`
	CookieSecure  bool   `envDefault:"false"  env:"COOKIE_SECURE"  yaml:"cookie_secure"`

	Detectors        []string `envDefault:"route,url,omitted,user,session,cookie,browser,app" env:"DETECTORS"         yaml:"detectors"`
	TrustedDetectors []string `envDefault:"route"                                             env:"TRUSTED_DETECTORS" yaml:"trusted_detectors"`
	Stores           []string `envDefault:"session,cookie,app"                                env:"STORES"            yaml:"stores"`

	StoreFailurePolicy string `envDefault:"continue" env:"STORE_FAILURE_POLICY" yaml:"store_failure_policy"`
	EmptyLocalesPolicy string `envDefault:"ignore"   env:"EMPTY_LOCALES_POLICY" yaml:"empty_locales_policy"`

	AppURL        string `envDefault:"http://localhost:8080" env:"APP_URL"         yaml:"app_url"`
	URLSigningKey string `envDefault:""                      env:"URL_SIGNING_KEY" yaml:"url_signing_key"`

	SlugCacheDriver string        `envDefault:"memory" env:"SLUG_CACHE_DRIVER"  yaml:"slug_cache_driver"`
	SlugCacheDSN    string        `envDefault:""       env:"SLUG_CACHE_DSN"     yaml:"slug_cache_dsn"`
	SlugCacheMaxAge time.Duration `envDefault:"0s"     env:"SLUG_CACHE_MAX_AGE" yaml:"slug_cache_max_age"`
}

type ConfigurationService interface {
	Name() string
	Version() string
}

var _ ConfigurationService = new(Configuration)

func (c *Configuration) Name() string {
	return c.ServiceName
}

func (c *Configuration) Version() string {
	return c.ServiceVersion
}

type ConfigurationLogLevel interface {
	LoggingLevel() string
	LoggingTimeFormat() string
	LoggingShowStackTrace() bool
	LoggingColored() bool
	LoggingLevelIsDebug() bool
}

var _ ConfigurationLogLevel = new(Configuration)

func (c *Configuration) LoggingLevel() string {
	return c.LogLevel
}

func (c *Configuration) LoggingTimeFormat() string {
	return c.LogTimeFormat
}

func (c *Configuration) LoggingColored() bool {
	return c.LogColored
}

func (c *Configuration) LoggingShowStackTrace() bool {
	return c.LogShowStackTrace
}

func (c *Configuration) LoggingLevelIsDebug() bool {
	return c.LoggingLevel() == "debug" || c.LoggingLevel() == "trace"
}

type ConfigurationTelemetry interface {
	DisableOpenTelemetry() bool
	SamplingRatio() float64
	TelemetryServiceName() string
}

var _ ConfigurationTelemetry = new(Configuration)

func (c *Configuration) DisableOpenTelemetry() bool {
	return c.OpenTelemetryDisable
}

func (c *Configuration) SamplingRatio() float64 {
	return c.OpenTelemetryTraceRatio
}

func (c *Configuration) TelemetryServiceName() string {
	return c.ServiceName
}

type ConfigurationPorts interface {
	HTTPPort() string
}

var _ ConfigurationPorts = new(Configuration)

func (c *Configuration) HTTPPort() string {
	if i, err := strconv.Atoi(c.HTTPServerPort); err == nil && i > 0 {
		return fmt.Sprintf(":%s", strings.TrimSpace(c.HTTPServerPort))
	}

	if strings.Contains(c.HTTPServerPort, ":") {
		return c.HTTPServerPort
	}

	return ":8080"
}

type ConfigurationLocales interface {
	LocaleSettings() locales.Settings
	GetDefaultLocale() string
	GetEmptyLocalesPolicy() string
}

var _ ConfigurationLocales = new(Configuration)

func (c *Configuration) LocaleSettings() locales.Settings {
	return locales.Settings{
		Supported: &c.SupportedLocales,
		Omitted:   c.OmittedLocale,
		Fallback:  c.FallbackLocale,
	}
}

// GetDefaultLocale is the locale requests start in, the fallback locale when no
// default is set.
func (c *Configuration) GetDefaultLocale() string {
	if c.DefaultLocale != "" {
		return c.DefaultLocale
	}
	return c.FallbackLocale
}

func (c *Configuration) GetEmptyLocalesPolicy() string {
	if c.EmptyLocalesPolicy == "" {
		return EmptyLocalesIgnore
	}
	return strings.ToLower(c.EmptyLocalesPolicy)
}

type ConfigurationRedirect interface {
	RedirectsToLocalizedURLs() bool
	GetRedirectStatusCode() int
	GetNotFoundView() string
}

var _ ConfigurationRedirect = new(Configuration)

func (c *Configuration) RedirectsToLocalizedURLs() bool {
	return c.RedirectToLocalizedURLs
}

func (c *Configuration) GetRedirectStatusCode() int {
	if c.RedirectStatusCode == 0 {
		return 301
	}
	return c.RedirectStatusCode
}

func (c *Configuration) GetNotFoundView() string {
	return c.NotFoundView
}

// Validate reports every inconsistent setting at once.
func (c *Configuration) Validate() error {
	var errs []error

	if code := c.GetRedirectStatusCode(); code < 300 || code > 399 {
		errs = append(errs, fmt.Errorf("REDIRECT_STATUS_CODE %d is not a redirect status", code))
	}

	if p := c.GetEmptyLocalesPolicy(); p != EmptyLocalesIgnore && p != EmptyLocalesError {
		errs = append(errs, fmt.Errorf("EMPTY_LOCALES_POLICY %q is neither %s nor %s",
			c.EmptyLocalesPolicy, EmptyLocalesIgnore, EmptyLocalesError))
	}

	switch strings.ToLower(c.StoreFailurePolicy) {
	case "", "continue", "abort":
	default:
		errs = append(errs, fmt.Errorf("STORE_FAILURE_POLICY %q is neither continue nor abort", c.StoreFailurePolicy))
	}

	if !slices.Contains([]string{"", SlugCacheMemory, SlugCacheRedis, SlugCacheValkey}, c.SlugCacheDriver) {
		errs = append(errs, fmt.Errorf("SLUG_CACHE_DRIVER %q is not one of memory, redis, valkey", c.SlugCacheDriver))
	}
	if (c.SlugCacheDriver == SlugCacheRedis || c.SlugCacheDriver == SlugCacheValkey) && c.SlugCacheDSN == "" {
		errs = append(errs, fmt.Errorf("SLUG_CACHE_DSN is required for the %s slug cache", c.SlugCacheDriver))
	}

	if c.CookieMinutes < 0 {
		errs = append(errs, errors.New("COOKIE_MINUTES must not be negative"))
	}

	if !c.SupportedLocales.Empty() {
		for name, locale := range map[string]string{
			"FALLBACK_LOCALE": c.FallbackLocale,
			"OMITTED_LOCALE":  c.OmittedLocale,
		} {
			if locale != "" && !c.SupportedLocales.IsSupported(locale) {
				errs = append(errs, fmt.Errorf("%s %q is not a supported locale", name, locale))
			}
		}
	}

	return errors.Join(errs...)
}
