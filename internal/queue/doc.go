// Package queue holds pending download jobs in memory.
//
// The Queue is a strict FIFO with no deduplication and no reordering: a job
// present in the queue has never started, and once popped it is never put
// back. Submitters can inspect their positions and cancel every job they have
// pending. Every operation takes a single mutex and performs no I/O while
// holding it, so front ends may call it concurrently with the worker draining
// the queue.
//
// The queue is not persisted; pending jobs are lost when the process exits.
package queue
