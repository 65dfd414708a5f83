package rpc

import (
	ethRpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/oasisprotocol/oasis-core/go/common/logging"

	"github.com/oasisprotocol/latest-block/bridge"
	"github.com/oasisprotocol/latest-block/rpc/head"
)

// GetRPCAPIs returns the list of all APIs.
func GetRPCAPIs(query bridge.QueryFunc) []ethRpc.API {
	return []ethRpc.API{
		{
			Namespace: "head",
			Version:   "1.0",
			Service:   head.NewMetricsWrapper(head.NewPublicAPI(query, logging.GetLogger("head_rpc"))),
			Public:    true,
		},
	}
}
