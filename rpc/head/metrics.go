package head

import (
	"context"

	"github.com/oasisprotocol/latest-block/rpc/metrics"
)

type metricsWrapper struct {
	api API
}

// LatestBlock implements API.
func (m *metricsWrapper) LatestBlock(ctx context.Context) (block string, err error) {
	r, s, f, i, d := metrics.GetAPIMethodMetrics("head_latestBlock")
	defer metrics.InstrumentCaller(r, s, f, i, d, &err)()

	block, err = m.api.LatestBlock(ctx)
	return
}

// NewMetricsWrapper returns an instrumented API service.
func NewMetricsWrapper(api API) API {
	return &metricsWrapper{
		api,
	}
}
