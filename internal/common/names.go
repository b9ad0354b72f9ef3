// Package common holds small helpers shared by the internal packages.
package common

import "strings"

// UnknownStr is the String() result of an out-of-range enum value.
const UnknownStr = "unknown"

// PkgAlias returns the default import name of a package path, its last
// element: "mtb-mapper/store" gives "store".
func PkgAlias(pkgPath string) string {
	return pkgPath[strings.LastIndexByte(pkgPath, '/')+1:]
}
