// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features: submitting a
// computation for asynchronous execution and reading back its snapshot.
//
// Services receive dependencies through constructor injection, apply
// transactional boundaries where operations must be atomic, and translate
// store-level errors into service-level ones for the delivery layer.
package service
