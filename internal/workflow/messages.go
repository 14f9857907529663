package workflow

import (
	"fmt"
	"strconv"
	"strings"

	"tubelift/internal/queue"
	"tubelift/internal/textutil"
)

// maxDetailRunes bounds error detail in chat messages; yt-dlp can emit
// several kilobytes of stderr on failure.
const maxDetailRunes = 500

// User-facing texts.
const (
	WelcomeMessage       = "Hi! Send a link to a video and I will upload it to storage."
	QueuedMessage        = "Link added to the queue. You will be notified when it is done."
	UploadingMessage     = "Download finished. Uploading to storage…"
	NoLinkMessage        = "Uploaded, but the public link could not be retrieved."
	UploadFailedMessage  = "Upload to storage failed."
	EmptyQueueMessage    = "The queue is empty."
	InvalidSubmitMessage = "Send a link starting with http:// or https://."
)

// StartedMessage is the first message of every job.
func StartedMessage(url string) string {
	return "Download started: " + url
}

// ProgressMessage renders a download percentage.
func ProgressMessage(percent int) string {
	return "Downloading… " + strconv.Itoa(percent) + "%"
}

// StatusMessage renders a queue status for one submitter.
func StatusMessage(status queue.Status) string {
	if status.Empty() {
		return EmptyQueueMessage
	}
	total := fmt.Sprintf("Total in queue: %d", status.Total)
	if len(status.Positions) == 0 {
		return total + "\nYou have no pending jobs."
	}
	positions := make([]string, 0, len(status.Positions))
	for _, p := range status.Positions {
		positions = append(positions, strconv.Itoa(p))
	}
	return total + "\nYour positions: " + strings.Join(positions, ", ")
}

// CancelMessage reports how many jobs were removed.
func CancelMessage(removed int) string {
	return fmt.Sprintf("Cancelled jobs: %d", removed)
}

// Message maps an outcome to the terminal user message.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeSuccess:
		return fmt.Sprintf("Uploaded to storage:\n%s\nLink: %s", o.FileName, o.Link)
	case OutcomeSuccessNoLink:
		return NoLinkMessage
	case OutcomeUploadFailed:
		return UploadFailedMessage
	default:
		return "Failed to process link:\n" + textutil.Truncate(o.Detail, maxDetailRunes)
	}
}

// Summary is the event log line for an outcome.
func (o Outcome) Summary() string {
	switch o.Kind {
	case OutcomeSuccess:
		return "Uploaded: " + o.Link
	case OutcomeSuccessNoLink:
		return "Uploaded without link: " + o.FileName
	case OutcomeUploadFailed:
		return "Upload failed: " + o.FileName
	default:
		return "Error: " + o.Detail
	}
}

func queuedSummary(url string) string {
	return "Queued link: " + url
}

func cleanupFailedSummary(file string) string {
	return "Cleanup failed: " + file
}
