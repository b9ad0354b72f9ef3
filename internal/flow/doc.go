// Package flow provides structured control flow over an emit.Builder:
// counting and iterator loops, conditionals, switches and protected regions.
//
// Every primitive takes emitter callbacks and leaves the operand stack as
// it found it. Loop bodies and handlers must do the same.
package flow
