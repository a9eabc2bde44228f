// Package testing provides test utilities, builders, and fakes shared by
// the unit tests.
//
//   - ServiceBuilder: fluent builder for Rancher service records
//   - FakeRancher: an httptest server speaking enough of the v1 API for a
//     full upgrade run
//   - MockClusterClient, MockNotifier: testify mocks of the upgrade ports
//
// Usage:
//
//	fake := testing.NewFakeRancher(t, testing.NewServiceBuilder().Build())
//	fake.SetStates("upgrading", "upgraded")
//	client := fake.Client()
package testing
