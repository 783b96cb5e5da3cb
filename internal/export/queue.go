package export

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/edu-sched/cpsolver/internal/result"
	"github.com/edu-sched/cpsolver/pkg/errors"
	"github.com/edu-sched/cpsolver/pkg/jobs"
)

const jobTypeExportBundle = "export_bundle"

// AsyncQueue dispatches DBExporter.Export calls onto a background worker
// pool instead of blocking the caller that just finished a solve. A
// write failure is an ExportError (spec.md §7) — not fatal to the
// pipeline that produced the bundle — so retries happen here, off the
// solve's critical path, via the teacher's worker-pool queue.
type AsyncQueue struct {
	queue *jobs.Queue
}

// NewAsyncQueue wraps exporter in a jobs.Queue with workers background
// workers. A failed bundle is retried up to maxRetries times
// (maxRetries+1 attempts in all) before the failure is logged and
// dropped; jobs.NewQueue turns a maxRetries <= 0 into 3.
func NewAsyncQueue(exporter DBExporter, workers, maxRetries int, log *zap.Logger) *AsyncQueue {
	if log == nil {
		log = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		bundle, ok := job.Payload.(result.Bundle)
		if !ok {
			return errors.New("EXPORT_BAD_PAYLOAD", errors.SeverityExportError, "export queue job payload was not a result.Bundle")
		}
		return exporter.Export(ctx, bundle)
	}
	q := jobs.NewQueue("bundle_export", handler, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: maxRetries,
		RetryDelay: 2 * time.Second,
		Logger:     log,
	})
	return &AsyncQueue{queue: q}
}

// Start begins background processing; Stop drains and waits.
func (a *AsyncQueue) Start(ctx context.Context) { a.queue.Start(ctx) }
func (a *AsyncQueue) Stop()                     { a.queue.Stop() }

// Submit enqueues one solved bundle for export, tagging it with an id
// derived from its section count plus result code (good enough for log
// correlation; a caller with a real run id should build its own Job and
// call the underlying queue directly if it needs more).
func (a *AsyncQueue) Submit(bundle result.Bundle) error {
	return a.queue.Enqueue(jobs.Job{
		ID:      jobID(bundle),
		Type:    jobTypeExportBundle,
		Payload: bundle,
	})
}

func jobID(b result.Bundle) string {
	return jobTypeExportBundle + ":" + strconv.Itoa(b.ResultCode) + ":" + strconv.Itoa(len(b.Sections))
}
