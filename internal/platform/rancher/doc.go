// Package rancher provides a thin client for the Rancher v1 services API.
//
// It covers only what a single service upgrade needs: resolving a service
// by name, posting the upgrade, finishupgrade and rollback actions, and
// reading the service back through its self link. Calls are authenticated
// with HTTP basic auth using an API key pair and are never retried here.
package rancher
