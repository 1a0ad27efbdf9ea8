package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"clipforge/internal/engine"
	"clipforge/internal/logging"
)

// Recorder translates one batch's event stream into history rows. Storage
// failures are logged and swallowed so bookkeeping can never fail a run.
type Recorder struct {
	store     *Store
	logger    *slog.Logger
	runID     string
	mode      string
	outputDir string
}

// NewRecorder prepares a recorder for one batch run. A nil logger discards.
func NewRecorder(store *Store, logger *slog.Logger, mode, outputDir string) *Recorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{
		store:     store,
		logger:    logger,
		runID:     uuid.NewString(),
		mode:      mode,
		outputDir: outputDir,
	}
}

// RunID returns the identifier assigned to this batch.
func (r *Recorder) RunID() string { return r.runID }

// Observe records one event. Log events are ignored; only run boundaries and
// job terminals are persisted.
func (r *Recorder) Observe(ctx context.Context, ev engine.Event) {
	var err error
	switch ev.Type {
	case engine.EventStart:
		err = r.store.BeginRun(ctx, Run{
			ID:          r.runID,
			Mode:        r.mode,
			OutputDir:   r.outputDir,
			Total:       ev.Total,
			Concurrency: ev.Concurrency,
			StartedAt:   time.Now(),
		})
	case engine.EventProgress:
		err = r.store.RecordJob(ctx, JobRecord{
			RunID:      r.runID,
			Index:      ev.Index,
			Status:     JobCompleted,
			OutputPath: ev.OutputPath,
		})
	case engine.EventFailed:
		message := ""
		if ev.Err != nil {
			message = ev.Err.Error()
		}
		err = r.store.RecordJob(ctx, JobRecord{
			RunID:  r.runID,
			Index:  ev.Index,
			Status: JobFailed,
			Error:  message,
		})
	case engine.EventFinish:
		err = r.store.FinishRun(ctx, r.runID, ev.Done, ev.Failed, ev.ElapsedSeconds)
	}
	if err != nil {
		r.logger.Warn("history write failed",
			logging.String(logging.FieldRunID, r.runID),
			logging.String(logging.FieldEventType, string(ev.Type)),
			logging.Error(err),
		)
	}
}
