// Package diagnostic collects notes produced while planning type pairs and
// while checking override files: skipped target fields, unknown names with
// suggestions, and type mismatches.
package diagnostic
