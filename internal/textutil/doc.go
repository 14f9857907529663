// Package textutil provides text helpers for file names and remote storage
// paths.
//
// Names produced by the fetcher can carry arbitrary Unicode and filesystem
// unsafe characters. SanitizeFileName strips the unsafe characters and
// normalises to NFC so remote backends see one canonical spelling of each
// name, and RemotePath joins a sanitized base name onto an upload directory.
package textutil
