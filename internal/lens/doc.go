// Package lens defines the command table of the lens gateway.
//
// The table maps register addresses to descriptors naming a backend command
// and the capability (read, write, both or neither) exposed at that address.
// It is built once at startup and never mutated, so request handlers read it
// concurrently without locking.
package lens
