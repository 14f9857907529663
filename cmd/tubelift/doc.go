// Command tubelift runs the download-and-publish daemon and provides a thin
// command line client for it.
//
// `tubelift daemon` runs the single-worker pipeline in the foreground. The
// remaining commands (submit, status, cancel, events, show) talk to a running
// daemon through its HTTP API, so the same queue is shared with the chat front
// end. `tubelift check`, `tubelift logs`, and the config subcommands work
// without a daemon.
package main
