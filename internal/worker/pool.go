package worker // import "github.com/Xunop/e-library/internal/worker"

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
)

// Handler turns one job into a book.
type Handler func(ctx context.Context, job model.Job) (*model.Book, error)

// Pool runs a fixed number of workers over a shared queue. Results come out
// in completion order, callers needing a stable order sort them by Job.ID.
type Pool struct {
	queue   chan model.Job
	results chan model.JobResult
	wg      sync.WaitGroup
	once    sync.Once
}

func NewPool(ctx context.Context, size int, handler Handler) *Pool {
	if size < 1 {
		size = 1
	}
	pool := &Pool{
		queue:   make(chan model.Job),
		results: make(chan model.JobResult, size),
	}

	for i := 0; i < size; i++ {
		worker := &BookParseWorker{id: i, handler: handler}
		pool.wg.Add(1)
		go func() {
			defer pool.wg.Done()
			worker.Run(ctx, pool.queue, pool.results)
		}()
	}

	go func() {
		pool.wg.Wait()
		close(pool.results)
	}()

	log.Debug("Worker pool started", zap.Int("size", size))
	return pool
}

// Push blocks until a worker takes the job. It must not be called after Close.
func (p *Pool) Push(job model.Job) {
	p.queue <- job
}

// Close stops accepting jobs. Results is closed once every pushed job is done.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.queue)
	})
}

func (p *Pool) Results() <-chan model.JobResult {
	return p.results
}
