package lingo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pitabwire/util"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pitabwire/lingo/cache"
	"github.com/pitabwire/lingo/config"
	"github.com/pitabwire/lingo/detection"
	"github.com/pitabwire/lingo/locales"
	"github.com/pitabwire/lingo/localization"
	interceptors "github.com/pitabwire/lingo/localization/interceptors/http"
	"github.com/pitabwire/lingo/routing"
	"github.com/pitabwire/lingo/slugs"
	"github.com/pitabwire/lingo/stores"
	"github.com/pitabwire/lingo/telemetry"
)

type contextKey string

func (c contextKey) String() string {
	return "lingo/" + string(c)
}

const (
	ctxKeyService = contextKey("serviceKey")

	defaultHTTPReadTimeoutSeconds  = 15
	defaultHTTPWriteTimeoutSeconds = 15
	defaultHTTPIdleTimeoutSeconds  = 60
	defaultShutdownTimeoutSeconds  = 10
)

// ErrNoSupportedLocales is returned by NewService when no locale is configured and
// the empty locales policy is "error".
var ErrNoSupportedLocales = errors.New("no supported locales configured")

// Service holds together the localized routing components of an application.
// An instance of this type is scoped to stay for the lifetime of the application.
// It is pushed and pulled from contexts to make it easy to pass around.
type Service struct {
	cfg    *config.Configuration
	logger *util.LogEntry

	logOptions       []util.Option
	telemetryOptions []telemetry.Option
	telemetry        *telemetry.Manager

	settings   locales.Settings
	registry   *routing.Registry
	urls       *routing.URLGenerator
	translator routing.URITranslator

	detectors []detection.Detector
	stores    []stores.Store
	detector  *detection.Chain
	storer    *stores.Chain

	localeMiddleware routing.Middleware
	errorHandler     interceptors.ErrorHandler

	slugCache cache.RawCache
	catalog   *slugs.Catalog
	renderer  ViewRenderer

	healthCheckPath string
	healthCheckers  []Checker

	handlerOnce sync.Once
	handler     http.Handler
	server      *http.Server
	stopMutex   sync.Mutex
	stopped     bool
}

type Option func(ctx context.Context, service *Service)

// NewService assembles a Service from the configuration, which is read from the
// environment unless WithConfig supplies one. The returned context carries the
// default locale as its current locale.
func NewService(ctx context.Context, opts ...Option) (context.Context, *Service, error) {
	s := &Service{logger: util.Log(ctx)}
	for _, opt := range opts {
		opt(ctx, s)
	}

	if s.cfg == nil {
		cfg, err := config.FromEnv[config.Configuration]()
		if err != nil {
			return ctx, nil, fmt.Errorf("lingo: load configuration: %w", err)
		}
		s.cfg = &cfg
	}
	if err := s.cfg.Validate(); err != nil {
		return ctx, nil, fmt.Errorf("lingo: invalid configuration: %w", err)
	}

	if err := s.initTelemetry(ctx); err != nil {
		return ctx, nil, err
	}
	s.initLogger(ctx)
	ctx = util.ContextWithLogger(ctx, s.logger)

	if err := s.initRouting(ctx); err != nil {
		return ctx, nil, err
	}
	if err := s.initPipeline(ctx); err != nil {
		return ctx, nil, err
	}
	if err := s.initSlugs(ctx); err != nil {
		return ctx, nil, err
	}

	ctx = config.ToContext(ctx, s.cfg)
	ctx = SvcToContext(ctx, s)
	ctx = localization.ToContext(ctx, s.cfg.GetDefaultLocale())

	s.Log(ctx).
		WithField("locales", s.settings.Supported.String()).
		WithField("detectors", s.detector.Detectors()).
		WithField("stores", s.storer.Stores()).
		Info("localized routing ready")
	return ctx, s, nil
}

func (s *Service) initTelemetry(ctx context.Context) error {
	opts := append([]telemetry.Option{
		telemetry.WithServiceName(s.cfg.Name()),
		telemetry.WithServiceVersion(s.cfg.Version()),
		telemetry.WithMetricViews(telemetry.Views("lingo/localization")...),
	}, s.telemetryOptions...)

	s.telemetry = telemetry.NewManager(ctx, s.cfg, opts...)
	if err := s.telemetry.Init(ctx); err != nil {
		return fmt.Errorf("lingo: telemetry: %w", err)
	}
	return nil
}

func (s *Service) initRouting(ctx context.Context) error {
	s.settings = s.cfg.LocaleSettings()

	if s.settings.Supported.Empty() {
		if s.cfg.GetEmptyLocalesPolicy() == config.EmptyLocalesError {
			return ErrNoSupportedLocales
		}
		s.Log(ctx).Warn("no supported locales configured, localized routes will not be registered")
	}

	if s.translator == nil && s.cfg.RouteTranslationsPath != "" {
		translator, err := localization.NewURITranslator(s.cfg.RouteTranslationsPath,
			s.cfg.GetDefaultLocale(), s.settings.Supported.Locales()...)
		if err != nil {
			return err
		}
		s.translator = translator
	}

	registryOpts := []routing.RegistryOption{routing.WithRouteAction(s.cfg.RouteAction)}
	if s.translator != nil {
		registryOpts = append(registryOpts, routing.WithTranslator(s.translator))
	}
	s.registry = routing.NewRegistry(registryOpts...)

	var signer *routing.Signer
	if s.cfg.URLSigningKey != "" {
		var err error
		if signer, err = routing.NewSigner([]byte(s.cfg.URLSigningKey)); err != nil {
			return err
		}
	}

	urls, err := routing.NewURLGenerator(s.registry, s.settings, s.cfg.AppURL, signer,
		routing.WithDefaultLocale(s.cfg.GetDefaultLocale()))
	if err != nil {
		return err
	}
	s.urls = urls
	return nil
}

func (s *Service) initPipeline(_ context.Context) error {
	if s.detectors == nil {
		detectors, err := detection.Build(s.cfg.Detectors, detection.Dependencies{
			Settings:      s.settings,
			RouteAction:   s.registry.RouteAction(),
			UserAttribute: s.cfg.UserAttribute,
			SessionKey:    s.cfg.SessionKey,
			CookieName:    s.cfg.CookieName,
			DefaultLocale: s.cfg.GetDefaultLocale(),
		})
		if err != nil {
			return err
		}
		s.detectors = detectors
	}

	if s.stores == nil {
		storeList, err := stores.Build(s.cfg.Stores, stores.Dependencies{
			SessionKey:    s.cfg.SessionKey,
			CookieName:    s.cfg.CookieName,
			CookieMinutes: s.cfg.CookieMinutes,
			SecureCookie:  s.cfg.CookieSecure,
		})
		if err != nil {
			return err
		}
		s.stores = storeList
	}

	policy, err := stores.ParseFailurePolicy(s.cfg.StoreFailurePolicy)
	if err != nil {
		return err
	}

	s.detector = detection.NewChain(s.settings.Supported, s.detectors, s.cfg.TrustedDetectors...)
	s.storer = stores.NewChain(policy, s.stores...)

	middlewareOpts := []interceptors.Option{interceptors.WithDefaultLocale(s.cfg.GetDefaultLocale())}
	if s.errorHandler != nil {
		middlewareOpts = append(middlewareOpts, interceptors.WithErrorHandler(s.errorHandler))
	}
	s.localeMiddleware = interceptors.LocaleHTTPMiddleware(s.detector, s.storer, middlewareOpts...)
	return nil
}

func (s *Service) initSlugs(ctx context.Context) error {
	if s.slugCache == nil {
		raw, err := openSlugCache(ctx, s.cfg)
		if err != nil {
			return err
		}
		s.slugCache = raw
	}
	s.catalog = slugs.NewCatalog(s.slugCache)
	s.AddHealthCheck(CheckerFunc(s.slugCacheCheck))
	return nil
}

// SvcToContext pushes a service instance into the supplied context for easier propagation.
func SvcToContext(ctx context.Context, service *Service) context.Context {
	return context.WithValue(ctx, ctxKeyService, service)
}

// Svc obtains a service instance being propagated through the context.
func Svc(ctx context.Context) *Service {
	service, ok := ctx.Value(ctxKeyService).(*Service)
	if !ok {
		return nil
	}
	return service
}

func (s *Service) Config() *config.Configuration {
	return s.cfg
}

func (s *Service) Telemetry() *telemetry.Manager {
	return s.telemetry
}

func (s *Service) Settings() locales.Settings {
	return s.settings
}

func (s *Service) Registry() *routing.Registry {
	return s.registry
}

func (s *Service) URLs() *routing.URLGenerator {
	return s.urls
}

func (s *Service) Catalog() *slugs.Catalog {
	return s.catalog
}

func (s *Service) Detector() *detection.Chain {
	return s.detector
}

func (s *Service) Storer() *stores.Chain {
	return s.storer
}

// SetLocale is the middleware resolving and storing the locale of a request.
func (s *Service) SetLocale(next http.Handler) http.Handler {
	return s.localeMiddleware(next)
}

// Localized registers the routes added by fn once per supported locale, each
// behind the locale middleware.
func (s *Service) Localized(fn func(g *routing.Group), opts ...routing.LocalizedOption) {
	opts = append([]routing.LocalizedOption{routing.WithLocalizedMiddleware(s.SetLocale)}, opts...)
	s.registry.Localized(s.settings, fn, opts...)
}

// URL generates the URL of the named route in the current locale of ctx, or the
// one requested with routing.InLocale.
func (s *Service) URL(ctx context.Context, name string, params routing.Params, opts ...routing.URLOption) (string, error) {
	return s.urls.Route(ctx, name, params, opts...)
}

// SignedURL generates a signed URL of the named route, valid for ttl. A zero ttl
// never expires.
func (s *Service) SignedURL(
	ctx context.Context,
	name string,
	params routing.Params,
	ttl time.Duration,
	opts ...routing.URLOption,
) (string, error) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	return s.urls.SignedRoute(ctx, name, params, expiresAt, opts...)
}

// LocalizedURL returns the URL of the current request in locale.
func (s *Service) LocalizedURL(r *http.Request, locale string, opts ...routing.URLOption) (string, error) {
	return s.urls.LocalizedURL(r, locale, opts...)
}

// Handler is the instrumented handler serving the health endpoint and every
// registered route.
func (s *Service) Handler() http.Handler {
	s.handlerOnce.Do(func() {
		path := s.healthCheckPath
		if path == "" || path == "/" {
			path = defaultHealthCheckPath
		}

		mux := http.NewServeMux()
		mux.HandleFunc(path, s.HandleHealth)
		mux.Handle("/", s.registry)
		s.handler = otelhttp.NewHandler(mux, s.cfg.Name())
	})
	return s.handler
}

// Run serves the registered routes on address, the configured HTTP port when
// empty, until ctx is done or the server fails.
func (s *Service) Run(ctx context.Context, address string) error {
	if address == "" {
		address = s.cfg.HTTPPort()
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	s.stopMutex.Lock()
	s.server = &http.Server{
		Addr:    address,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadTimeout:  defaultHTTPReadTimeoutSeconds * time.Second,
		WriteTimeout: defaultHTTPWriteTimeoutSeconds * time.Second,
		IdleTimeout:  defaultHTTPIdleTimeoutSeconds * time.Second,
	}
	server := s.server
	s.stopMutex.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.Log(ctx).WithField("address", address).Info("http server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.Stop(context.WithoutCancel(ctx))
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			s.Log(ctx).Debug("system exit")
			return nil
		}
		s.Log(ctx).WithError(err).Error("system exit in error")
		s.Stop(context.WithoutCancel(ctx))
		return err
	}
}

// Stop gracefully shuts the server down, closes the slug cache and flushes telemetry.
func (s *Service) Stop(ctx context.Context) {
	s.stopMutex.Lock()
	defer s.stopMutex.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true

	s.Log(ctx).Info("service stopping")

	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, defaultShutdownTimeoutSeconds*time.Second)
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.Log(ctx).WithError(err).Warn("http server did not shut down cleanly")
		}
		cancel()
	}

	if s.slugCache != nil {
		if err := s.slugCache.Close(); err != nil {
			s.Log(ctx).WithError(err).Warn("could not close slug cache")
		}
	}

	if s.telemetry != nil {
		if err := s.telemetry.Shutdown(ctx); err != nil {
			s.Log(ctx).WithError(err).Warn("could not flush telemetry")
		}
	}
}
