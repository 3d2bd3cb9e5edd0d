// Package models holds the example models shipped with fmukit and the
// registry the command line uses to find them by identifier.
package models
