package workers

import (
	"context"
	"fileserver-lab/observability"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHealthMonitoringWorker_StopsWithContext(t *testing.T) {
	req := require.New(t)
	worker := NewHealthMonitoringWorker(slog.Default(), observability.NewMetrics(), 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// Then the worker samples a few times and exits cleanly
	req.NoError(worker.Run(ctx))
}
