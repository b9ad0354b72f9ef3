// Package analyze loads Go packages with golang.org/x/tools/go/packages
// and builds the type graph that `mtbmap check` validates override files
// against.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: kind, struct fields and getter methods of a type
//   - FieldInfo: field name, type and embedding
package analyze
