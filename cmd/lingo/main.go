package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pitabwire/lingo/config"
	"github.com/pitabwire/lingo/detection"
	"github.com/pitabwire/lingo/routing"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "lingo",
		Short: "Inspect localized routing configuration",
		Long: `lingo checks and explains the localized routing configuration of a service.

Configuration is read from the environment, overlaid on --config FILE when given.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML configuration file")

	load := func() (*config.Configuration, error) {
		return loadConfig(cfgFile)
	}

	root.AddCommand(
		newValidateCmd(load),
		newExplainCmd(load),
		newSignCmd(load),
		newVerifyCmd(load),
	)
	return root
}

type loader func() (*config.Configuration, error)

func loadConfig(path string) (*config.Configuration, error) {
	var (
		cfg config.Configuration
		err error
	)
	if path != "" {
		cfg, err = config.FromFile[config.Configuration](path)
	} else {
		cfg, err = config.FromEnv[config.Configuration]()
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newValidateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Report inconsistent settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err = cfg.Validate(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}
}

func newExplainCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "explain",
		Short: "Describe how requests are localized",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err = cfg.Validate(); err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), explain(cfg))
			return nil
		},
	}
}

// explain describes how requests are localized under cfg.
func explain(cfg *config.Configuration) string {
	var b strings.Builder
	settings := cfg.LocaleSettings()

	fmt.Fprintf(&b, "service: %s\n", cfg.Name())
	fmt.Fprintf(&b, "locales (%s):\n", settings.Supported.Kind())
	if settings.Supported.Empty() {
		fmt.Fprintf(&b, "  none, empty locales policy %s\n", cfg.GetEmptyLocalesPolicy())
	}
	for _, locale := range settings.Order() {
		var notes []string
		if domain, ok := settings.Supported.DomainFor(locale); ok {
			notes = append(notes, "domain "+domain)
		} else if prefix := settings.Prefix(locale); prefix != "" {
			notes = append(notes, "prefix /"+prefix)
		} else {
			notes = append(notes, "no prefix")
		}
		if settings.IsOmitted(locale) {
			notes = append(notes, "omitted")
		}
		if locale == settings.Fallback {
			notes = append(notes, "fallback")
		}
		if locale == cfg.GetDefaultLocale() {
			notes = append(notes, "default")
		}
		fmt.Fprintf(&b, "  %s: %s\n", locale, strings.Join(notes, ", "))
	}

	trust := detection.NewChain(settings.Supported, nil, cfg.TrustedDetectors...)
	detectors := make([]string, 0, len(cfg.Detectors))
	for _, name := range cfg.Detectors {
		if trust.IsTrusted(name) {
			name += " (trusted)"
		}
		detectors = append(detectors, name)
	}
	fmt.Fprintf(&b, "detectors: %s\n", strings.Join(detectors, " > "))
	fmt.Fprintf(&b, "stores: %s (on failure %s)\n", strings.Join(cfg.Stores, ", "), cfg.StoreFailurePolicy)

	if cfg.RedirectsToLocalizedURLs() {
		fmt.Fprintf(&b, "not found: redirect to localized url (%d), else view %s\n",
			cfg.GetRedirectStatusCode(), cfg.GetNotFoundView())
	} else {
		fmt.Fprintf(&b, "not found: view %s\n", cfg.GetNotFoundView())
	}
	return b.String()
}

func signer(load loader) (*routing.Signer, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.URLSigningKey == "" {
		return nil, errors.New("URL_SIGNING_KEY is not set")
	}
	return routing.NewSigner([]byte(cfg.URLSigningKey))
}

func newSignCmd(load loader) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "sign <url>",
		Short: "Sign a URL with URL_SIGNING_KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := signer(load)
			if err != nil {
				return err
			}
			var expiresAt time.Time
			if ttl > 0 {
				expiresAt = time.Now().Add(ttl)
			}
			signed, err := s.Sign(args[0], expiresAt)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "validity of the signature, zero never expires")
	return cmd
}

func newVerifyCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <url>",
		Short: "Check the signature and expiry of a signed URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := signer(load)
			if err != nil {
				return err
			}
			if err = s.Verify(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
}
