package logging

// Standardized attribute keys used across components.
const (
	FieldComponent = "component"
	FieldEventType = "event_type"
	FieldRunID     = "run_id"
	FieldJobIndex  = "job_index"
	FieldMode      = "mode"
	FieldOutput    = "output"
)
