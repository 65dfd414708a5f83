// Package head implements the head_ prefixed JSON-RPC namespace.
package head

import (
	"context"

	"github.com/oasisprotocol/oasis-core/go/common/logging"

	"github.com/oasisprotocol/latest-block/bridge"
)

// API is the head_ prefixed set of APIs.
type API interface {
	// LatestBlock returns the chain head block number as a base 10 string.
	LatestBlock(ctx context.Context) (string, error)
}

type publicAPI struct {
	adapter *bridge.Adapter
	logger  *logging.Logger
}

// NewPublicAPI creates an instance of the head API.
func NewPublicAPI(query bridge.QueryFunc, logger *logging.Logger) API {
	return &publicAPI{
		adapter: bridge.NewAdapter(query, nil),
		logger:  logger,
	}
}

func (api *publicAPI) LatestBlock(ctx context.Context) (string, error) {
	block, herr := api.adapter.GetLatestBlock(ctx)
	if herr != nil {
		api.logger.Error("failed to fetch latest block", "err", herr)
		return "", herr
	}
	return block, nil
}
