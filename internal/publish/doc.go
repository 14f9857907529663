// Package publish uploads artifacts to remote storage and returns public links.
//
// Publishing is two steps. Upload stores the file at a destination path and
// reports transport failures as services.ErrUploadTransport. Link publishes
// the stored file and returns its shareable URL, reporting failures as
// services.ErrLinkUnavailable so callers can tell a degraded success apart
// from a failed upload.
//
// The Yandex.Disk backend speaks the Disk REST API. The Directory backend
// copies files into a local directory served by some other web server, and
// doubles as the backend for tests.
package publish
