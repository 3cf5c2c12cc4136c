package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/reglet-dev/tmplkit/infrastructure/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	c.Observe("gotext", 2*time.Millisecond, nil)
	c.Observe("gotext", time.Millisecond, nil)
	c.Observe("pongo", time.Millisecond, errors.New("boom"))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 2)

	count, err := testutil.GatherAndCount(reg, "tmplkit_evaluations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	_, err = metrics.NewCollector(reg)
	assert.Error(t, err)
}

func TestCollector_Nil(t *testing.T) {
	var c *metrics.Collector
	assert.NotPanics(t, func() { c.Observe("gotext", time.Millisecond, nil) })

	unregistered, err := metrics.NewCollector(nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() { unregistered.Observe("gotext", time.Millisecond, nil) })
}
