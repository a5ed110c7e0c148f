package metrics

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIdempotent(t *testing.T) {
	require.NoError(t, Register(prometheus.DefaultRegisterer))
	require.NoError(t, Register(prometheus.DefaultRegisterer))
}

func TestObserveOpAndStatus(t *testing.T) {
	require.NoError(t, Register(prometheus.DefaultRegisterer))

	before := testutil.ToFloat64(operations.WithLabelValues("standard", "start", ResultOK))
	ObserveOp("standard", "start", nil, 10*time.Millisecond)
	ObserveOp("standard", "start", errors.New("boom"), time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(operations.WithLabelValues("standard", "start", ResultOK)))
	assert.GreaterOrEqual(t, testutil.ToFloat64(operations.WithLabelValues("standard", "start", ResultError)), 1.0)

	SetStatus("standard", "svc", "running")
	assert.Equal(t, 1.0, testutil.ToFloat64(serviceStatus.WithLabelValues("standard", "svc", "running")))
	assert.Equal(t, 0.0, testutil.ToFloat64(serviceStatus.WithLabelValues("standard", "svc", "stopped")))
	SetStatus("standard", "svc", "stopped")
	assert.Equal(t, 0.0, testutil.ToFloat64(serviceStatus.WithLabelValues("standard", "svc", "running")))
	assert.Equal(t, 1.0, testutil.ToFloat64(serviceStatus.WithLabelValues("standard", "svc", "stopped")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	require.NoError(t, Register(prometheus.DefaultRegisterer))
	ObserveOp("debug", "status", nil, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "svcctl_control_operations_total"))
}

func TestSetStatusBoundsServiceSeries(t *testing.T) {
	require.NoError(t, Register(prometheus.DefaultRegisterer))
	SetStatus("standard", "bounded-known", "running")

	trackedMu.Lock()
	prev := maxStatusServices
	maxStatusServices = len(tracked)
	trackedMu.Unlock()
	t.Cleanup(func() {
		trackedMu.Lock()
		maxStatusServices = prev
		trackedMu.Unlock()
	})

	before := testutil.CollectAndCount(serviceStatus)
	for i := 0; i < 50; i++ {
		SetStatus("standard", fmt.Sprintf("bounded-new-%d", i), "running")
	}
	assert.Equal(t, before, testutil.CollectAndCount(serviceStatus))

	SetStatus("standard", "bounded-known", "stopped")
	assert.Equal(t, 1.0, testutil.ToFloat64(serviceStatus.WithLabelValues("standard", "bounded-known", "stopped")))
}
