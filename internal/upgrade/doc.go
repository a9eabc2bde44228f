// Package upgrade drives a zero-downtime upgrade of a single Rancher service.
//
// The [Orchestrator] runs one upgrade per call:
//
//	Idle -> Fetching -> Validating -> Upgrading -> AwaitingConfirmation -> Finishing -> Succeeded
//
// A failure while awaiting confirmation triggers a rollback. Failures before
// the upgrade is accepted abort without touching the service, and a failure
// to finish is never compensated. Every run ends in exactly one [Outcome],
// which is handed to the [Notifier] once.
package upgrade
