// Package fetcher implements a client that queries the chain head block
// number of an Ethereum JSON-RPC endpoint.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oasisprotocol/oasis-core/go/common/logging"
)

const (
	// DefaultEndpoint is the JSON-RPC endpoint queried by every host surface.
	DefaultEndpoint = "https://eth.merkle.io"

	// DefaultTimeout bounds a single block number query.
	DefaultTimeout = 30 * time.Second

	methodBlockNumber = "eth_blockNumber"
)

// Transport selects the JSON-RPC client implementation.
type Transport string

const (
	// TransportEthclient uses the go-ethereum RPC client.
	TransportEthclient Transport = "ethclient"
	// TransportJSONRPC uses a plain JSON-RPC 2.0 client.
	TransportJSONRPC Transport = "jsonrpc"
)

// Validate checks that the transport is known.
func (t Transport) Validate() error {
	switch t {
	case TransportEthclient, TransportJSONRPC:
		return nil
	default:
		return fmt.Errorf("unknown transport '%s'", t)
	}
}

// blockNumberClient is a JSON-RPC client bound to a single endpoint.
type blockNumberClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	Close()
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-query timeout. Zero disables the timeout, leaving
// only the caller's context in control.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// WithHTTPClient sets the HTTP client used by the transport.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = client
	}
}

// WithTransport selects the JSON-RPC client implementation.
func WithTransport(transport Transport) Option {
	return func(f *Fetcher) {
		f.transport = transport
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// Fetcher queries the latest block number of a JSON-RPC endpoint.
//
// A Fetcher holds no per-call state: every LatestBlock call parses the
// endpoint, builds a fresh client, issues exactly one request and closes the
// client again, so concurrent calls are independent.
type Fetcher struct {
	endpoint   string
	transport  Transport
	timeout    time.Duration
	httpClient *http.Client
	logger     *logging.Logger
}

// Endpoint returns the endpoint literal the fetcher is bound to.
func (f *Fetcher) Endpoint() string {
	return f.endpoint
}

// LatestBlock returns the current chain head block number in base 10.
func (f *Fetcher) LatestBlock(ctx context.Context) (string, error) {
	u, err := parseEndpoint(f.endpoint)
	if err != nil {
		return "", &EndpointError{Endpoint: f.endpoint, Err: err}
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	c, err := f.dial(ctx, u)
	if err != nil {
		return "", &RPCError{Method: methodBlockNumber, Err: err}
	}
	defer c.Close()

	f.logger.Debug("querying latest block",
		"endpoint", u.Redacted(),
		"transport", f.transport,
	)

	number, err := c.BlockNumber(ctx)
	if err != nil {
		f.logger.Debug("latest block query failed", "err", err)
		return "", &RPCError{Method: methodBlockNumber, Err: err}
	}

	return strconv.FormatUint(number, 10), nil
}

func (f *Fetcher) dial(ctx context.Context, u *url.URL) (blockNumberClient, error) {
	switch f.transport {
	case TransportJSONRPC:
		return dialJSONRPC(u, f.httpClient), nil
	default:
		return dialEthclient(ctx, u, f.httpClient)
	}
}

func parseEndpoint(endpoint string) (*url.URL, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported scheme '%s'", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host")
	}
	return u, nil
}

// New creates a new fetcher bound to the given endpoint literal.
//
// The endpoint is only parsed when LatestBlock is called, so a malformed
// literal surfaces as an EndpointError from the query rather than here.
func New(endpoint string, opts ...Option) *Fetcher {
	f := &Fetcher{
		endpoint:   endpoint,
		transport:  TransportEthclient,
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
		logger:     logging.GetLogger("fetcher"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}
