package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/ybbus/jsonrpc/v3"
)

func dialEthclient(ctx context.Context, u *url.URL, httpClient *http.Client) (blockNumberClient, error) {
	c, err := rpc.DialOptions(ctx, u.String(), rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}
	return ethclient.NewClient(c), nil
}

// jsonrpcClient speaks eth_blockNumber over a plain JSON-RPC 2.0 client.
type jsonrpcClient struct {
	inner jsonrpc.RPCClient
}

func (c *jsonrpcClient) BlockNumber(ctx context.Context) (uint64, error) {
	rsp, err := c.inner.Call(ctx, methodBlockNumber)
	if err != nil {
		return 0, err
	}
	if rsp.Error != nil {
		return 0, rsp.Error
	}
	if rsp.Result == nil {
		return 0, fmt.Errorf("no result in JSON-RPC response")
	}

	// Round trip through JSON so hexutil applies the quantity encoding rules.
	raw, err := json.Marshal(rsp.Result)
	if err != nil {
		return 0, err
	}
	var number hexutil.Uint64
	if err = json.Unmarshal(raw, &number); err != nil {
		return 0, fmt.Errorf("malformed block number %s: %w", raw, err)
	}
	return uint64(number), nil
}

// Close is a no-op, the underlying client keeps no connection state of its own.
func (c *jsonrpcClient) Close() {}

func dialJSONRPC(u *url.URL, httpClient *http.Client) blockNumberClient {
	return &jsonrpcClient{
		inner: jsonrpc.NewClientWithOpts(u.String(), &jsonrpc.RPCClientOpts{
			HTTPClient:         httpClient,
			AllowUnknownFields: true,
		}),
	}
}
