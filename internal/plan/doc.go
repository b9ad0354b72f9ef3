// Package plan decides how a type pair is mapped.
//
// Pair-level planning classifies the pair by shape (simple, pointer,
// object, sequence, dictionary). Object plans then pick one strategy per
// exported target field, first match wins:
//  1. a registered converter
//  2. identical simple types are copied
//  3. maps are mapped entry by entry
//  4. slices and arrays are mapped element by element
//  5. anything else is mapped by the routine of its own pair
//
// Target fields without a source member are skipped and reported with
// suggestions.
package plan
