// Package registry holds the variables a component exposes and answers typed
// get/set requests addressed by value reference.
//
// Storage is heterogeneous: a variable is either bound directly to a Go
// value ([Ref]) or to a getter/setter pair ([Func]). Both variants sit behind
// the [Binding] interface so the get/set paths and the serializer never
// branch on the storage kind.
//
//	reg := registry.New(units.New(), fmi.FMI2)
//	v, err := reg.Register(registry.Ref(&length), "len", fmi.Real, "m",
//		"pendulum length", fmi.Parameter, fmi.Fixed, fmi.InitialNone)
//
// Variables iterate in name order. Value references are dense and start at
// 1 within each scalar type; a registry built for FMI 3.0 numbers all types
// from a single counter instead.
package registry
