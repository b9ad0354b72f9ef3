package analyze

import (
	"go/types"
	"slices"
	"strings"

	"mtb-mapper/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "mtb-mapper/store"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Short returns the name as reflect prints it, e.g. "store.Order".
func (t TypeID) Short() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return common.PkgAlias(t.PkgPath) + "." + t.Name
}

// TypeKind represents the kind of a type.
type TypeKind int

const (
	TypeKindUnknown  TypeKind = iota
	TypeKindBasic             // int, string, bool, etc.
	TypeKindStruct            // struct type
	TypeKindPointer           // pointer to another type
	TypeKindSlice             // slice of another type
	TypeKindArray             // array of another type
	TypeKindMap               // map type
	TypeKindAlias             // named type wrapping a basic type, e.g. an enum
	TypeKindExternal          // external/opaque type (e.g., time.Time)
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindBasic:
		return "basic"
	case TypeKindStruct:
		return "struct"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindArray:
		return "array"
	case TypeKindMap:
		return "map"
	case TypeKindAlias:
		return "alias"
	case TypeKindExternal:
		return "external"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes a Go type in the type graph.
type TypeInfo struct {
	ID         TypeID      // Unique identifier (empty for unnamed types like *T or []T)
	Kind       TypeKind    // Kind of type
	Underlying *TypeInfo   // For named types, the underlying type
	ElemType   *TypeInfo   // For pointers, slices, arrays and maps, the element type
	KeyType    *TypeInfo   // For maps, the key type
	Fields     []FieldInfo // For structs, exported fields including promoted ones
	Getters    []FieldInfo // For named structs, getter methods of the pointer type
	GoType     types.Type  // The original go/types.Type (for compatibility checks)
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// Field returns the exported field with the given name.
func (t *TypeInfo) Field(name string) (*FieldInfo, bool) {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i], true
		}
	}

	return nil, false
}

// Member returns the field or getter with the given name, fields first.
func (t *TypeInfo) Member(name string) (*FieldInfo, bool) {
	if f, ok := t.Field(name); ok {
		return f, true
	}

	for i := range t.Getters {
		if t.Getters[i].Name == name {
			return &t.Getters[i], true
		}
	}

	return nil, false
}

// FieldNames returns the names of the exported fields.
func (t *TypeInfo) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}

	return names
}

// MemberNames returns the names of the fields and getters.
func (t *TypeInfo) MemberNames() []string {
	names := t.FieldNames()
	for _, g := range t.Getters {
		names = append(names, g.Name)
	}

	return names
}

// FieldInfo describes a struct field or a getter method.
type FieldInfo struct {
	Name     string    // Go field or method name
	Type     *TypeInfo // Field type, or the getter result type
	Embedded bool      // Whether the field is embedded (anonymous)
	Promoted bool      // Whether the field is reached through an embedded struct
	Getter   bool      // Whether this is a getter method
	Fallible bool      // Whether the getter also returns an error
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all named types.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// Lookup resolves a type name as override files spell it:
//   - "store.Order" (short)
//   - "mtb-mapper/store.Order" (full)
//   - "Order" (name only, first match in package order).
func (g *TypeGraph) Lookup(name string) *TypeInfo {
	if name == "" {
		return nil
	}

	lastDot := strings.LastIndex(name, ".")
	if lastDot < 0 {
		for _, id := range g.IDs() {
			if id.Name == name {
				return g.Types[id]
			}
		}

		return nil
	}

	pkg, typeName := name[:lastDot], name[lastDot+1:]
	if pkg == "" || typeName == "" {
		return nil
	}

	if t := g.GetType(TypeID{PkgPath: pkg, Name: typeName}); t != nil {
		return t
	}

	for _, id := range g.IDs() {
		if id.Name == typeName && strings.HasSuffix(id.PkgPath, "/"+pkg) {
			return g.Types[id]
		}
	}

	return nil
}

// IDs returns the type IDs sorted by package path and name.
func (g *TypeGraph) IDs() []TypeID {
	ids := make([]TypeID, 0, len(g.Types))
	for id := range g.Types {
		ids = append(ids, id)
	}

	slices.SortFunc(ids, func(a, b TypeID) int {
		return strings.Compare(a.String(), b.String())
	})

	return ids
}

// ShortNames returns the short names of all struct types, for suggestions.
func (g *TypeGraph) ShortNames() []string {
	var names []string

	for _, id := range g.IDs() {
		if g.Types[id].Kind == TypeKindStruct {
			names = append(names, id.Short())
		}
	}

	return names
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // Import path
	Name  string   // Package name
	Types []TypeID // Named types defined in this package
}
