// Package bridge adapts the block number query to hosts that can only carry
// a string result or a string-carrying error.
package bridge

import "context"

// HostError is the flat error shape handed across the host boundary.
type HostError struct {
	Message string
}

func (e *HostError) Error() string {
	return e.Message
}

// Flattener converts a structured error into a HostError.
type Flattener func(error) *HostError

// Flatten is the default Flattener, it keeps only the error text.
func Flatten(err error) *HostError {
	if err == nil {
		return nil
	}
	return &HostError{Message: err.Error()}
}

// QueryFunc returns the latest block number in base 10.
type QueryFunc func(ctx context.Context) (string, error)

// Adapter exposes a QueryFunc to a host.
type Adapter struct {
	query   QueryFunc
	flatten Flattener
}

// GetLatestBlock runs the query, flattening any failure.
func (a *Adapter) GetLatestBlock(ctx context.Context) (string, *HostError) {
	block, err := a.query(ctx)
	if err != nil {
		return "", a.flatten(err)
	}
	return block, nil
}

// NewAdapter creates a new adapter. A nil flatten uses Flatten.
func NewAdapter(query QueryFunc, flatten Flattener) *Adapter {
	if flatten == nil {
		flatten = Flatten
	}
	return &Adapter{
		query:   query,
		flatten: flatten,
	}
}
