package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv(EnvEndpoint, "")
	t.Setenv(EnvEnabled, "")

	shutdown, err := Setup(context.Background(), "storefront-test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_NoopWhenDisabled(t *testing.T) {
	t.Setenv(EnvEndpoint, "http://localhost:4318")
	t.Setenv(EnvEnabled, "FALSE")

	shutdown, err := Setup(context.Background(), "storefront-test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, shutdown(ctx))
}

func TestSetup_ProviderWithUnreachableEndpoint(t *testing.T) {
	// Non-routable address; nothing is exported.
	t.Setenv(EnvEndpoint, "http://192.0.2.1:4318")
	t.Setenv(EnvEnabled, "")

	shutdown, err := Setup(context.Background(), "storefront-test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
