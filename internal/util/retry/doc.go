// Package retry retries operations with exponential backoff.
//
// [Do] runs an operation until it succeeds, the attempt budget is spent,
// the context ends, or the operation returns an error marked with [Fatal].
// It backs best-effort deliveries such as deploy notifications.
package retry
