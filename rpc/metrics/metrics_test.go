package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInstrumentCaller(t *testing.T) {
	const method = "test_instrumentCaller"
	r, s, f, i, d := GetAPIMethodMetrics(method)

	succeed := func() (err error) {
		defer InstrumentCaller(r, s, f, i, d, &err)()
		require.Equal(t, 1.0, testutil.ToFloat64(inflight.WithLabelValues(method)), "call should be inflight")
		return nil
	}
	fail := func() (err error) {
		defer InstrumentCaller(r, s, f, i, d, &err)()
		return errors.New("boom")
	}

	require.NoError(t, succeed())
	require.Error(t, fail())
	require.Error(t, fail())

	require.Equal(t, 3.0, testutil.ToFloat64(requests.WithLabelValues(method)))
	require.Equal(t, 1.0, testutil.ToFloat64(successes.WithLabelValues(method)))
	require.Equal(t, 2.0, testutil.ToFloat64(failures.WithLabelValues(method)))
	require.Equal(t, 0.0, testutil.ToFloat64(inflight.WithLabelValues(method)))
}

func TestInstrumentCallerNilError(t *testing.T) {
	const method = "test_instrumentCallerNil"
	r, s, f, i, d := GetAPIMethodMetrics(method)

	InstrumentCaller(r, s, f, i, d, nil)()

	require.Equal(t, 1.0, testutil.ToFloat64(successes.WithLabelValues(method)))
	require.Equal(t, 0.0, testutil.ToFloat64(failures.WithLabelValues(method)))
}
