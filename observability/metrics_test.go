package observability

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Connections(t *testing.T) {
	req := require.New(t)
	metrics := NewMetrics()

	metrics.ConnectionOpened()
	metrics.ConnectionOpened()
	metrics.ConnectionClosed()

	req.Equal(2.0, testutil.ToFloat64(metrics.connectionsTotal))
	req.Equal(1.0, testutil.ToFloat64(metrics.connectionsActive))
}

func TestMetrics_ObserveResponse(t *testing.T) {
	req := require.New(t)
	metrics := NewMetrics()

	metrics.BlockSent(8116)
	metrics.BlockSent(10)
	metrics.ObserveResponse(RecentResponse{ConnID: "c1", Status: "OK", Blocks: 2, Bytes: 8126}, 5*time.Millisecond)
	metrics.ObserveResponse(RecentResponse{ConnID: "c2", Status: "USER_MISSING", Blocks: 1}, time.Millisecond)

	req.Equal(2.0, testutil.ToFloat64(metrics.blocksSent))
	req.Equal(8126.0, testutil.ToFloat64(metrics.bytesSent))
	req.Equal(1.0, testutil.ToFloat64(metrics.responsesTotal.WithLabelValues("OK")))
	req.Equal(1.0, testutil.ToFloat64(metrics.responsesTotal.WithLabelValues("USER_MISSING")))

	recent := metrics.Recent()
	req.Len(recent, 2)
	req.Equal("c2", recent[0].ConnID)
	req.NotEmpty(recent[0].Timestamp)
}

func TestMetrics_RecentIsBounded(t *testing.T) {
	req := require.New(t)
	metrics := NewMetrics()

	for i := 0; i < maxRecentSize+5; i++ {
		metrics.ObserveResponse(RecentResponse{ConnID: fmt.Sprintf("c%d", i), Status: "OK"}, 0)
	}

	recent := metrics.Recent()
	req.Len(recent, maxRecentSize)
	req.Equal(fmt.Sprintf("c%d", maxRecentSize+4), recent[0].ConnID)
}

func TestMetrics_WorkerRestartsAndProcess(t *testing.T) {
	req := require.New(t)
	metrics := NewMetrics()

	metrics.WorkerRestarted("Server")
	metrics.SetProcessUsage(12.5, 3.25, 1<<20)

	req.Equal(1.0, testutil.ToFloat64(metrics.workerRestarts.WithLabelValues("Server")))
	req.Equal(12.5, testutil.ToFloat64(metrics.processCPU))
	req.Equal(3.25, testutil.ToFloat64(metrics.processMemory))
	req.Equal(float64(1<<20), testutil.ToFloat64(metrics.processRSS))
}

func TestMetrics_Handler(t *testing.T) {
	req := require.New(t)
	metrics := NewMetrics()
	metrics.ConnectionOpened()

	srv := httptest.NewServer(metrics.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	req.NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	req.NoError(err)

	req.Equal(http.StatusOK, resp.StatusCode)
	req.Contains(string(body), "fileserver_connections_total 1")
}
