// Package api contains the JSON HTTP handlers for submitting computations
// and polling their status.
package api
