package workflow

import (
	"time"

	"tubelift/internal/queue"
)

// State is the orchestrator run state.
type State int

const (
	StateIdle State = iota
	StateDraining
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDraining:
		return "draining"
	default:
		return "unknown"
	}
}

// OutcomeKind enumerates terminal job results.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeSuccessNoLink
	OutcomeUploadFailed
	OutcomePipelineError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeSuccessNoLink:
		return "success_no_link"
	case OutcomeUploadFailed:
		return "upload_failed"
	case OutcomePipelineError:
		return "pipeline_error"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one job. Link is set for OutcomeSuccess,
// Detail for OutcomePipelineError, and FileName whenever an artifact existed.
type Outcome struct {
	Kind     OutcomeKind
	Link     string
	FileName string
	Detail   string
}

func success(file, link string) Outcome {
	return Outcome{Kind: OutcomeSuccess, FileName: file, Link: link}
}

func successNoLink(file string) Outcome {
	return Outcome{Kind: OutcomeSuccessNoLink, FileName: file}
}

func uploadFailed(file string) Outcome {
	return Outcome{Kind: OutcomeUploadFailed, FileName: file}
}

func pipelineError(detail string) Outcome {
	return Outcome{Kind: OutcomePipelineError, Detail: detail}
}

// Snapshot is a point-in-time view for status reporting.
type Snapshot struct {
	State      State
	Active     *queue.Job
	ActiveFrom time.Time
	Pending    int
	Queued     []queue.Job
	Processed  int64
	Failed     int64
	LastError  string
	LastJob    *JobResult
}

// JobResult records the most recent finished job.
type JobResult struct {
	Job      queue.Job
	Outcome  Outcome
	Duration time.Duration
	Finished time.Time
}
