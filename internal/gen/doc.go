// Package gen synthesizes emit programs from plans.
//
// Every pair gets one routine taking the source value and returning the
// target value. Object routines allocate the target, then populate each
// planned property. Sequences and dictionaries are composed element by
// element and never alias the source container. Failures raised while
// mapping a property, an element or an entry are annotated with the field
// name, the [index] or the [key] on their way out.
package gen
