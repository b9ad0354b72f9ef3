// Package match provides identifier normalization, Levenshtein distance and
// name suggestions for target fields that found no source member, plus a
// go/types compatibility verdict used when checking override files.
package match
