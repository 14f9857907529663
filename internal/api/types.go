package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Job describes a queued submission in a transport-friendly format.
type Job struct {
	ID          string `json:"id"`
	SubmitterID string `json:"submitterId"`
	URL         string `json:"url"`
	EnqueuedAt  string `json:"enqueuedAt,omitempty"`
}

// QueueStatus is the answer to a status command.
type QueueStatus struct {
	Total     int    `json:"total"`
	Positions []int  `json:"positions"`
	Message   string `json:"message"`
}

// JobResult describes the most recently finished job.
type JobResult struct {
	Job        Job    `json:"job"`
	Outcome    string `json:"outcome"`
	Link       string `json:"link,omitempty"`
	FileName   string `json:"fileName,omitempty"`
	Detail     string `json:"detail,omitempty"`
	DurationMS int64  `json:"durationMs"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

// WorkflowStatus summarizes orchestrator execution state.
type WorkflowStatus struct {
	State       string     `json:"state"`
	Active      *Job       `json:"active,omitempty"`
	ActiveSince string     `json:"activeSince,omitempty"`
	Pending     int        `json:"pending"`
	Queue       []Job      `json:"queue,omitempty"`
	Processed   int64      `json:"processed"`
	Failed      int64      `json:"failed"`
	LastError   string     `json:"lastError,omitempty"`
	LastJob     *JobResult `json:"lastJob,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Path        string `json:"path,omitempty"`
	Version     string `json:"version,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	LockFilePath string             `json:"lockFilePath"`
	EventDBPath  string             `json:"eventDbPath,omitempty"`
	Storage      string             `json:"storage"`
	Transport    string             `json:"transport"`
	Workflow     WorkflowStatus     `json:"workflow"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// SubmitRequest enqueues a URL on behalf of a submitter.
type SubmitRequest struct {
	Submitter string `json:"submitter"`
	URL       string `json:"url"`
}

// SubmitResponse acknowledges a submission.
type SubmitResponse struct {
	Job     Job    `json:"job"`
	Message string `json:"message"`
}

// CancelRequest removes every pending job of a submitter.
type CancelRequest struct {
	Submitter string `json:"submitter"`
}

// CancelResponse reports how many jobs were removed.
type CancelResponse struct {
	Removed int    `json:"removed"`
	Message string `json:"message"`
}

// Event is one event log entry.
type Event struct {
	ID        int64  `json:"id"`
	UserID    string `json:"userId"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// EventsResponse wraps recent event log entries, newest first.
type EventsResponse struct {
	Events []Event `json:"events"`
}

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
