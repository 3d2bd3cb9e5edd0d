// Package physics provides the dynamical systems behind the bundled
// example models.
//
// Each system implements [dynamo.System]:
//
//   - [Pendulum]: damped pendulum driven by an input torque
//   - [CartPendulum]: pendulum hanging from a free cart, with an optional
//     small-angle approximation
//
// Both also implement [dynamo.Hamiltonian], which is useful to monitor
// energy drift:
//
//	sys := physics.NewCartPendulum()
//	energy := sys.Energy(state)
package physics
