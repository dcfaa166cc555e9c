package obs

import (
	"context"
	"log"
	"time"

	"dispatch-service/internal/platform/metrics"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Time logs and records a Prometheus histogram sample for one named
// operation. Call it with defer: `defer obs.Time(ctx, "op")(&err)`.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)
		status := "ok"

		if errp != nil && *errp != nil {
			status = "error"
			log.Printf("req_id=%s op=%s dur=%dms err=%v", reqID, name, dur.Milliseconds(), *errp)
		} else {
			log.Printf("req_id=%s op=%s dur=%dms", reqID, name, dur.Milliseconds())
		}

		metrics.OperationDuration.WithLabelValues(name, status).Observe(dur.Seconds())
	}
}
