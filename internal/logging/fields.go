package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldJobID is the standardized structured logging key for job identifiers.
	FieldJobID = "job_id"
	// FieldSubmitter is the standardized structured logging key for the submitting user.
	FieldSubmitter = "submitter"
	// FieldStage is the standardized structured logging key for pipeline steps.
	FieldStage = "stage"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType labels the kind of event a log line describes.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step for the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldOutcome records the terminal pipeline outcome of a job.
	FieldOutcome = "outcome"
	// FieldProgressPercent records a sampled download percentage.
	FieldProgressPercent = "progress_percent"
)
