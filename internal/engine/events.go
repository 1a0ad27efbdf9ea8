package engine

// EventType names one entry kind in a batch's lifecycle stream.
type EventType string

const (
	// EventStart opens the stream with the batch size and concurrency limit.
	EventStart EventType = "start"
	// EventTaskStart marks one job entering processing.
	EventTaskStart EventType = "task-start"
	// EventLog carries one diagnostic line from a job's transcoder.
	EventLog EventType = "log"
	// EventProgress marks one job completing with its committed output path.
	EventProgress EventType = "progress"
	// EventFailed marks one job failing; siblings keep running.
	EventFailed EventType = "failed"
	// EventFinish closes the stream with the batch totals.
	EventFinish EventType = "finish"
)

// Event is one entry in a batch's lifecycle stream. Events for a single job
// arrive in a fixed order (task-start, logs, then exactly one of progress or
// failed) but interleave arbitrarily with events from concurrent jobs, so
// consumers key on Index. Done and Failed are snapshots taken when the event
// was emitted; they are monotonically non-decreasing across the stream and
// their sum reaches Total exactly once.
type Event struct {
	Type  EventType
	Index int

	Total  int
	Done   int
	Failed int

	// Concurrency is set on start events.
	Concurrency int
	// Message is set on log events.
	Message string
	// OutputPath is set on progress events: the committed final path.
	OutputPath string
	// Err is set on failed events.
	Err error
	// ElapsedSeconds is set on finish events.
	ElapsedSeconds float64
}
