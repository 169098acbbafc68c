package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestObserveDiff(t *testing.T) {
	before := counterValue(t, DiffRequests)
	ObserveDiff(12)
	assert.Equal(t, before+1, counterValue(t, DiffRequests))
}

func TestScoreEventsLabels(t *testing.T) {
	c := ScoreEvents.WithLabelValues(ResultInvalid)
	before := counterValue(t, c)
	c.Inc()
	assert.Equal(t, before+1, counterValue(t, c))
}
