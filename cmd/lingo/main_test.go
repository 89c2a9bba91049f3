package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lingo/routing"
)

const testConfig = "../../config/testdata/lingo.yaml"

type CommandSuite struct {
	suite.Suite
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandSuite))
}

func (s *CommandSuite) execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func (s *CommandSuite) TestExplain() {
	out, err := s.execute("explain", "--config", testConfig)
	s.Require().NoError(err)

	for _, line := range []string{
		"service: shop",
		"locales (domains):",
		"  en: domain example.com, fallback, default",
		"  nl: domain example.nl",
		"detectors: url > browser",
		"not found: redirect to localized url (302), else view errors.404",
	} {
		s.Contains(out, line+"\n")
	}
}

func (s *CommandSuite) TestExplainMarksRouteDetectorTrusted() {
	s.T().Setenv("DETECTORS", "route,url")
	s.T().Setenv("TRUSTED_DETECTORS", "browser")

	out, err := s.execute("explain", "--config", testConfig)
	s.Require().NoError(err)
	s.Contains(out, "detectors: route (trusted) > url\n")
}

func (s *CommandSuite) TestValidate() {
	out, err := s.execute("validate", "--config", testConfig)
	s.Require().NoError(err)
	s.Equal("configuration is valid\n", out)

	s.T().Setenv("REDIRECT_STATUS_CODE", "200")
	_, err = s.execute("validate", "--config", testConfig)
	s.Require().Error(err)
}

func (s *CommandSuite) TestSignAndVerify() {
	_, err := s.execute("sign", "http://shop.test/nl/about")
	s.Require().Error(err)

	s.T().Setenv("URL_SIGNING_KEY", "secret")

	out, err := s.execute("sign", "--ttl", "1h", "http://shop.test/nl/about")
	s.Require().NoError(err)
	signed := strings.TrimSpace(out)
	s.Contains(signed, "signature=")

	out, err = s.execute("verify", signed)
	s.Require().NoError(err)
	s.Equal("valid\n", out)

	_, err = s.execute("verify", strings.Replace(signed, "/nl/", "/en/", 1))
	s.Require().ErrorIs(err, routing.ErrInvalidSignature)

	_, err = s.execute("verify")
	s.Require().Error(err)
}
