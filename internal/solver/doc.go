// Package solver provides the root-finding capability consumed by the
// background computation task. The RootFinder interface keeps the task
// decoupled from any particular numerical method; NewtonRaphson is the
// default implementation.
package solver
