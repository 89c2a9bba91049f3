// Package testvalkey starts a throwaway Valkey container for cache tests.
package testvalkey

import (
	"context"
	"testing"

	"github.com/pitabwire/util"
	"github.com/testcontainers/testcontainers-go"
	tcValKey "github.com/testcontainers/testcontainers-go/modules/valkey"
)

const ValKeyImage = "docker.io/valkey/valkey:latest"

// Run starts Valkey and returns its redis:// connection string. The test is skipped
// when no container provider is available and the container is removed on cleanup.
func Run(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := t.Context()
	container, err := tcValKey.Run(ctx, ValKeyImage)
	if err != nil {
		t.Fatalf("failed to start valkey container: %v", err)
	}

	t.Cleanup(func() {
		if termErr := container.Terminate(context.Background()); termErr != nil {
			util.Log(context.Background()).WithError(termErr).Error("Failed to terminate valkey container")
		}
	})

	conn, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string for valkey container: %v", err)
	}
	return conn
}
