// Package poll waits for an asynchronous state transition by calling a
// probe at a fixed interval.
//
// [AwaitState] issues one probe at a time and stops at the first probe
// error, the first success, or the first state that is neither success nor
// in progress. It imposes no deadline of its own; callers bound it with
// the context.
package poll
