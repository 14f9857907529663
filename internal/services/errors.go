package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetch marks network, source, or parsing failures during download.
	ErrFetch = errors.New("fetch error")
	// ErrUploadTransport marks a storage backend that rejected or could not
	// accept the artifact.
	ErrUploadTransport = errors.New("upload transport error")
	// ErrLinkUnavailable marks a successful upload whose public link could not
	// be retrieved.
	ErrLinkUnavailable = errors.New("link unavailable")
	// ErrPipeline marks any other failure caught at the job boundary.
	ErrPipeline = errors.New("pipeline error")

	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
)

// Wrap builds an error message that includes step context while tagging it
// with the provided marker for later outcome classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrPipeline
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Detail renders an error as a single human-readable line for user messages.
// Nil yields "unknown error".
func Detail(err error) string {
	if err == nil {
		return "unknown error"
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "unknown error"
	}
	return msg
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
