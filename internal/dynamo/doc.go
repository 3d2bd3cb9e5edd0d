// Package dynamo holds the numerical primitives shared by the built-in
// models: state vectors, the ODE system interface and integrator contracts.
//
//   - [State]: vector representing system state
//   - [System]: right-hand side of dX/dt = f(t, X)
//   - [Integrator]: fixed-step scheme advancing a State in place
//   - [Adaptive]: integrator that also proposes the next step size
//
// Systems write derivatives into a caller-owned slice, so a model can
// evaluate its right-hand side for the model-exchange derivative call
// without allocating.
package dynamo
