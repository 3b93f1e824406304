// Package domain contains the core business entities and domain logic of
// the application: the Computation record that tracks a root-finding
// request from submission through its terminal outcome. It is independent
// of any specific infrastructure or delivery mechanism.
package domain
