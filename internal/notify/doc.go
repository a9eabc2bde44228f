// Package notify tells people and CI systems how a deploy went.
//
// [Teams] posts a card to a Microsoft Teams incoming webhook, listing the
// JIRA issues mentioned in recent commits. [Multi] fans an outcome out to
// several notifiers. Delivery is best effort: errors are returned to the
// caller but never change the outcome of a run.
package notify
