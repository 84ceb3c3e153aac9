package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
)

type BookParseWorker struct {
	id      int
	handler Handler
}

// Run handles jobs until c is closed. Once ctx is done the remaining jobs are
// failed without calling the handler.
func (w *BookParseWorker) Run(ctx context.Context, c <-chan model.Job, out chan<- model.JobResult) {
	log.Debug("BookParseWorker is running", zap.Int("worker_id", w.id))

	for job := range c {
		log.Debug("Job received by worker",
			zap.Int("worker_id", w.id),
			zap.Int("job_id", job.ID),
			zap.String("path", job.Path))

		result := model.JobResult{Job: job}
		if err := ctx.Err(); err != nil {
			result.Err = err
		} else {
			result.Book, result.Err = w.handler(ctx, job)
		}

		if result.Err != nil {
			result.Job.Status = model.JobStatusFailed
			log.Error("Job failed",
				zap.Int("worker_id", w.id),
				zap.String("path", job.Path),
				zap.Error(result.Err))
		} else {
			result.Job.Status = model.JobStatusDone
		}
		out <- result
	}

	log.Debug("BookParseWorker stopped", zap.Int("worker_id", w.id))
}
