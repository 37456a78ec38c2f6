package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/pkg/metrics"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/observability"
	"github.com/rs/zerolog"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

// Runner runs jobs on tickers until its context ends.
type Runner struct {
	ctx    context.Context
	logger zerolog.Logger
	wg     sync.WaitGroup
}

func New(ctx context.Context, logger zerolog.Logger) *Runner {
	return &Runner{ctx: ctx, logger: logger}
}

// Every runs fn every interval. A non-positive interval disables the job.
func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	if interval <= 0 {
		r.logger.Info().Str("job", name).Msg("Job disabled")
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				r.run(name, fn)
			}
		}
	}()
}

func (r *Runner) run(name string, fn Job) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic in %s job: %v", name, p)
			r.logger.Error().Err(err).Msg("Job panicked")
			observability.CaptureErr(err)
			metrics.ObserveJob(name, err)
		}
	}()

	start := time.Now()
	err := fn(r.ctx)
	metrics.ObserveJob(name, err)
	if err != nil {
		r.logger.Error().Err(err).Str("job", name).Msg("Job failed")
		observability.CaptureErr(err)
		return
	}
	r.logger.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("Job finished")
}

// Wait blocks until every started job loop has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}
