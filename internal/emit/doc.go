// Package emit is the instruction backend of the mapper.
//
// A Builder assembles a routine from stack instructions, typed locals,
// labels and structured try regions. Compile links the labels and runs a
// verifier over every reachable path:
//   - the stack depth at an instruction is the same on all paths
//   - try regions are entered and left with an empty stack
//   - branches never cross a region boundary
//   - a routine returns exactly one value and never falls off its end
//
// The resulting Program is interpreted over reflect values. Finally handlers
// run on normal exit, on errors and on panics. Catch handlers match by
// errors.As against the declared error type.
package emit
