package lingo

import (
	"context"

	"github.com/pitabwire/util"
)

// WithLogger adds util logging options to the ones derived from the configuration.
func WithLogger(opts ...util.Option) Option {
	return func(_ context.Context, s *Service) {
		s.logOptions = append(s.logOptions, opts...)
	}
}

func (s *Service) initLogger(ctx context.Context) {
	var opts []util.Option

	logLevel, err := util.ParseLevel(s.cfg.LoggingLevel())
	if err == nil {
		opts = append(opts, util.WithLogLevel(logLevel))
	}
	opts = append(opts,
		util.WithLogTimeFormat(s.cfg.LoggingTimeFormat()),
		util.WithLogNoColor(!s.cfg.LoggingColored()))
	if s.cfg.LoggingShowStackTrace() {
		opts = append(opts, util.WithLogStackTrace())
	}

	// Add the telemetry log handler to the logger
	if s.telemetry != nil && s.telemetry.LogHandler() != nil {
		opts = append(opts, util.WithLogHandler(s.telemetry.LogHandler()))
	}
	opts = append(opts, s.logOptions...)

	log := util.NewLogger(ctx, opts...)
	s.logger = log.WithField("service", s.cfg.Name())
}

func (s *Service) Log(ctx context.Context) *util.LogEntry {
	return s.logger.WithContext(ctx)
}
