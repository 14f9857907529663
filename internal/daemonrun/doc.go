// Package daemonrun assembles the daemon process: logger, event sinks,
// fetcher, publisher, notifier, orchestrator, HTTP API, and the optional
// Matrix bot.
package daemonrun
