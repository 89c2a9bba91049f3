package valkey //nolint:testpackage // tests access package internals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lingo/cache"
	"github.com/pitabwire/lingo/internal/testvalkey"
)

type ValkeySuite struct {
	suite.Suite
	dsn string
}

func TestValkeySuite(t *testing.T) {
	suite.Run(t, new(ValkeySuite))
}

func (s *ValkeySuite) SetupSuite() {
	s.dsn = testvalkey.Run(s.T())
	s.Require().NotEmpty(s.dsn)
}

func (s *ValkeySuite) TestNewAndOperationsTable() {
	ctx := context.Background()

	_, err := New(ctx, cache.WithDSN("://bad-dsn"))
	s.Require().Error(err)

	raw, err := New(ctx, cache.WithDSN(s.dsn), cache.WithName("lingo-test"), cache.WithMaxAge(2*time.Second))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = raw.Close() })

	testCases := []struct {
		name string
		run  func()
	}{
		{
			name: "set get exists delete",
			run: func() {
				s.Require().NoError(raw.Set(ctx, "valkey:key:1", []byte("value"), 0))
				val, found, getErr := raw.Get(ctx, "valkey:key:1")
				s.Require().NoError(getErr)
				s.True(found)
				s.Equal([]byte("value"), val)

				exists, existsErr := raw.Exists(ctx, "valkey:key:1")
				s.Require().NoError(existsErr)
				s.True(exists)

				s.Require().NoError(raw.Delete(ctx, "valkey:key:1"))
				_, found, getErr = raw.Get(ctx, "valkey:key:1")
				s.Require().NoError(getErr)
				s.False(found)
			},
		},
		{
			name: "max age applies without ttl",
			run: func() {
				s.Require().NoError(raw.Set(ctx, "valkey:key:2", []byte("value"), 0))
				s.Eventually(func() bool {
					exists, existsErr := raw.Exists(ctx, "valkey:key:2")
					return existsErr == nil && !exists
				}, 5*time.Second, 100*time.Millisecond)
			},
		},
		{
			name: "flush",
			run: func() {
				s.Require().NoError(raw.Set(ctx, "valkey:key:3", []byte("value"), time.Minute))
				s.Require().NoError(raw.Flush(ctx))
				exists, existsErr := raw.Exists(ctx, "valkey:key:3")
				s.Require().NoError(existsErr)
				s.False(exists)
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, tc.run)
	}
}
