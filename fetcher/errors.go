package fetcher

import "fmt"

// Kind identifies the class of a fetch failure.
type Kind int

const (
	// InvalidEndpoint is reported when the endpoint literal does not parse
	// into an absolute http(s) URL.
	InvalidEndpoint Kind = iota + 1
	// RPCCall is reported when the JSON-RPC round trip fails: connection
	// errors, timeouts, RPC-level errors and undecodable results.
	RPCCall
)

func (k Kind) String() string {
	switch k {
	case InvalidEndpoint:
		return "invalid endpoint"
	case RPCCall:
		return "rpc call"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// EndpointError is returned when the endpoint URL can not be parsed.
type EndpointError struct {
	Endpoint string
	Err      error
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("fetcher: failed to parse endpoint %q: %v", e.Endpoint, e.Err)
}

func (e *EndpointError) Unwrap() error {
	return e.Err
}

// Kind implements KindError.
func (e *EndpointError) Kind() Kind {
	return InvalidEndpoint
}

// RPCError is returned when querying the block number fails.
type RPCError struct {
	Method string
	Err    error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("fetcher: failed to query %s: %v", e.Method, e.Err)
}

func (e *RPCError) Unwrap() error {
	return e.Err
}

// Kind implements KindError.
func (e *RPCError) Kind() Kind {
	return RPCCall
}

// KindError is implemented by all errors returned from Fetcher.LatestBlock.
type KindError interface {
	error
	Kind() Kind
}
