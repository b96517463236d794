package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)

	DeliveryAttempts.WithLabelValues("success").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}

	assert.Contains(t, names, "newsletter_delivery_attempts_total")
	assert.GreaterOrEqual(t, testutil.ToFloat64(DeliveryAttempts.WithLabelValues("success")), 1.0)

	assert.Panics(t, func() { RegisterCollectors(reg) })
}
