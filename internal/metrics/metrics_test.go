package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/glidefade/internal/metrics"
)

func TestMustRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { metrics.MustRegister(reg) })

	before := testutil.ToFloat64(metrics.SwipesRecordedTotal.WithLabelValues("match"))
	metrics.SwipesRecordedTotal.WithLabelValues("match").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SwipesRecordedTotal.WithLabelValues("match")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "swipes_recorded_total")

	// a second registration on the same registry is a programming error
	assert.Panics(t, func() { metrics.MustRegister(reg) })
}
