// Package fetch downloads remote media into local artifacts.
//
// A Fetcher takes a URL and a progress Sink and produces an Artifact: a local
// file the caller owns until it calls Cleanup. The yt-dlp implementation
// downloads every job into its own temporary directory so partial files of a
// failed download can be removed without guessing their names, and forwards
// download percentages to the sink followed by exactly one Finished call
// before a successful return.
package fetch
