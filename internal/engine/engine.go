package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"clipforge/internal/ffgraph"
	"clipforge/internal/ffrunner"
	"clipforge/internal/logging"
	"clipforge/internal/services"
	"clipforge/internal/staging"
	"clipforge/internal/taskqueue"
)

// eventBuffer absorbs bursts so emission rarely blocks a job. The caller
// still has to drain the stream; an abandoned stream stalls the batch.
const eventBuffer = 256

// Options configures an Engine.
type Options struct {
	Runner      ffrunner.Runner
	Logger      *slog.Logger
	Concurrency int
}

// Engine runs planned batches: each job flows through argument construction,
// the external transcoder, and the atomic output commit, all under the
// queue's concurrency cap. The engine itself holds no job state once a
// batch's terminal events are out.
type Engine struct {
	runner ffrunner.Runner
	logger *slog.Logger
	queue  *taskqueue.Queue
}

// New constructs an engine. Runner is required; a nil logger discards.
func New(opts Options) (*Engine, error) {
	if opts.Runner == nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "new",
			"a transcoder runner is required", nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		runner: opts.Runner,
		logger: logger,
		queue:  taskqueue.New(opts.Concurrency),
	}, nil
}

// SetConcurrency adjusts the admission limit for future jobs. Running jobs
// are never interrupted.
func (e *Engine) SetConcurrency(n int) {
	e.queue.SetConcurrency(n)
}

// Concurrency returns the current admission limit.
func (e *Engine) Concurrency() int {
	return e.queue.Concurrency()
}

// Run starts a batch and returns its event stream. The stream carries, in
// order: one start event; per job a task-start, zero or more log lines, and
// exactly one of progress or failed; then one finish event, after which the
// channel closes. The caller must drain the channel.
func (e *Engine) Run(ctx context.Context, batch Batch) (<-chan Event, error) {
	stager, err := staging.New(batch.OutputDir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "engine", "run", "invalid output directory", err)
	}

	events := make(chan Event, eventBuffer)
	go e.runBatch(ctx, batch, stager, events)
	return events, nil
}

type counters struct {
	mu     sync.Mutex
	done   int
	failed int
}

func (c *counters) complete() (done, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done++
	return c.done, c.failed
}

func (c *counters) fail() (done, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed++
	return c.done, c.failed
}

func (c *counters) snapshot() (done, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done, c.failed
}

func (e *Engine) runBatch(ctx context.Context, batch Batch, stager *staging.Stager, events chan<- Event) {
	defer close(events)

	start := time.Now()
	total := len(batch.Jobs)
	emit := func(ev Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	e.logger.Info("batch starting",
		logging.String(logging.FieldMode, string(batch.Mode)),
		logging.Int("total", total),
		logging.Int("concurrency", e.queue.Concurrency()),
		logging.String("output_dir", batch.OutputDir),
	)
	emit(Event{Type: EventStart, Total: total, Concurrency: e.queue.Concurrency()})

	tally := &counters{}
	settled := make([]<-chan error, 0, total)
	for _, job := range batch.Jobs {
		job := job
		settled = append(settled, e.queue.Push(ctx, func(ctx context.Context) error {
			e.runJob(ctx, job, total, stager, tally, emit)
			return nil
		}))
	}
	for _, done := range settled {
		<-done
	}

	done, failed := tally.snapshot()
	elapsed := time.Since(start)
	e.logger.Info("batch finished",
		logging.String(logging.FieldMode, string(batch.Mode)),
		logging.Int("done", done),
		logging.Int("failed", failed),
		logging.Duration("elapsed", elapsed),
	)
	emit(Event{
		Type:           EventFinish,
		Total:          total,
		Done:           done,
		Failed:         failed,
		ElapsedSeconds: elapsed.Seconds(),
	})
}

// runJob drives one job to a terminal event. Failures are contained here;
// nothing propagates to sibling jobs or the queue.
func (e *Engine) runJob(ctx context.Context, job Job, total int, stager *staging.Stager, tally *counters, emit func(Event)) {
	emit(Event{Type: EventTaskStart, Index: job.Index, Total: total})

	key := fmt.Sprintf("job-%04d", job.Index)
	defer func() {
		if err := stager.Cleanup(key); err != nil {
			e.logger.Warn("staging cleanup failed",
				logging.Int(logging.FieldJobIndex, job.Index),
				logging.Error(err),
			)
		}
	}()

	fail := func(err error) {
		done, failed := tally.fail()
		e.logger.Warn("job failed",
			logging.Int(logging.FieldJobIndex, job.Index),
			logging.Error(err),
		)
		emit(Event{Type: EventFailed, Index: job.Index, Total: total, Done: done, Failed: failed, Err: err})
	}

	tempPath, err := stager.TempPath(job.OutputName, key)
	if err != nil {
		fail(err)
		return
	}

	request := job.Request
	request.OutputPath = tempPath
	args, err := ffgraph.Build(request)
	if err != nil {
		fail(err)
		return
	}

	e.logger.Debug("job starting",
		logging.Int(logging.FieldJobIndex, job.Index),
		logging.String(logging.FieldMode, string(request.Mode)),
		logging.String("output", job.OutputName),
	)

	runErr := e.runner.Run(ctx, args, func(line string) {
		emit(Event{Type: EventLog, Index: job.Index, Total: total, Message: line})
	})
	if runErr != nil {
		fail(runErr)
		return
	}

	finalPath, err := stager.Commit(tempPath)
	if err != nil {
		fail(err)
		return
	}

	done, failed := tally.complete()
	e.logger.Debug("job completed",
		logging.Int(logging.FieldJobIndex, job.Index),
		logging.String(logging.FieldOutput, finalPath),
	)
	emit(Event{Type: EventProgress, Index: job.Index, Total: total, Done: done, Failed: failed, OutputPath: finalPath})
}
