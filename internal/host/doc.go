// Package host drives model instances through the abi call surface the way
// an importing simulation tool would. Co-simulation instances are stepped
// at a fixed communication interval; model-exchange instances are
// integrated on the host side with one of the integrators package solvers.
//
// Sweep runs several variants of one experiment concurrently, each in its
// own instance of the same table.
package host
