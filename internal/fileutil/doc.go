// Package fileutil holds file copy helpers used when publishing downloads to
// a local directory.
package fileutil
