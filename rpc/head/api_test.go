package head

import (
	"context"
	"errors"
	"testing"

	"github.com/oasisprotocol/oasis-core/go/common/logging"
	"github.com/stretchr/testify/require"

	"github.com/oasisprotocol/latest-block/bridge"
	"github.com/oasisprotocol/latest-block/fetcher"
)

func TestLatestBlock(t *testing.T) {
	api := NewMetricsWrapper(NewPublicAPI(func(context.Context) (string, error) {
		return "16", nil
	}, logging.GetLogger("head_test")))

	block, err := api.LatestBlock(context.Background())
	require.NoError(t, err)
	require.Equal(t, "16", block)
}

func TestLatestBlockFlattensErrors(t *testing.T) {
	api := NewMetricsWrapper(NewPublicAPI(
		fetcher.New("://eth.merkle.io").LatestBlock,
		logging.GetLogger("head_test"),
	))

	block, err := api.LatestBlock(context.Background())
	require.Error(t, err)
	require.Empty(t, block)

	var herr *bridge.HostError
	require.True(t, errors.As(err, &herr), "error should be flattened at the API boundary")

	var endpointErr *fetcher.EndpointError
	require.False(t, errors.As(err, &endpointErr), "structured error should not leak past the boundary")
	require.Contains(t, herr.Message, "failed to parse endpoint")
}
