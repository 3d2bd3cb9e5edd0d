// Package fmi defines the vocabulary shared by every fmukit package.
//
// The types mirror the attribute spellings of the FMI model description
// schema so that the serializer and the config layer can round-trip them
// through String and the Parse functions:
//
//   - [ScalarType]: Real, Integer, Boolean, String
//   - [Causality], [Variability], [Initial]: variable roles
//   - [Status]: result of every runtime entry point
//   - [State]: position of a component in the mandated call sequence
//   - [Mode], [Standard]: operating mode and standard revision
//
// Configuration mistakes are reported as [*OpError] values that match the
// sentinel errors of this package with errors.Is.
package fmi
