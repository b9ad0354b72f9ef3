package analyze

import (
	"errors"
	"fmt"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedTypes |
	packages.NeedImports

var errorType = types.Universe.Lookup("error").Type()

// Analyzer loads Go packages and builds a type graph.
type Analyzer struct {
	dir       string
	graph     *TypeGraph
	typeCache map[types.Type]*TypeInfo // Cache to handle recursive types
}

// NewAnalyzer creates a new Analyzer that resolves patterns relative to
// dir. An empty dir means the working directory.
func NewAnalyzer(dir string) *Analyzer {
	return &Analyzer{
		dir:       dir,
		graph:     NewTypeGraph(),
		typeCache: make(map[types.Type]*TypeInfo),
	}
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./store", "mtb-mapper/warehouse").
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	// register every package first so isExternalPackage sees all of them
	for _, pkg := range pkgs {
		a.graph.Packages[pkg.PkgPath] = &PackageInfo{Path: pkg.PkgPath, Name: pkg.Name}
	}

	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// processPackage extracts the exported named types of a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) {
	pkgInfo := a.graph.Packages[pkg.PkgPath]

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}

		typeID := TypeID{PkgPath: pkg.PkgPath, Name: name}

		typeInfo := a.analyzeType(typeName.Type())
		typeInfo.ID = typeID

		a.graph.Types[typeID] = typeInfo
		pkgInfo.Types = append(pkgInfo.Types, typeID)
	}
}

// analyzeType recursively analyzes a go/types.Type and returns a TypeInfo.
func (a *Analyzer) analyzeType(t types.Type) *TypeInfo {
	if cached, ok := a.typeCache[t]; ok {
		return cached
	}

	info := &TypeInfo{GoType: t}

	// Pre-cache to handle recursive types (we'll fill in details)
	a.typeCache[t] = info

	switch tt := t.(type) {
	case *types.Named:
		a.analyzeNamedType(tt, info)

	case *types.Basic:
		info.Kind = TypeKindBasic

	case *types.Pointer:
		info.Kind = TypeKindPointer
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Slice:
		info.Kind = TypeKindSlice
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Array:
		info.Kind = TypeKindArray
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Map:
		info.Kind = TypeKindMap
		info.KeyType = a.analyzeType(tt.Key())
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Struct:
		info.Kind = TypeKindStruct
		a.analyzeStructFields(tt, info, false)

	default:
		// interfaces, channels, funcs: nothing a mapping can construct
		info.Kind = TypeKindUnknown
	}

	return info
}

// analyzeNamedType analyzes a named type.
func (a *Analyzer) analyzeNamedType(named *types.Named, info *TypeInfo) {
	obj := named.Obj()

	info.ID = TypeID{Name: obj.Name()}
	if obj.Pkg() != nil {
		info.ID.PkgPath = obj.Pkg().Path()
	}

	switch ut := named.Underlying().(type) {
	case *types.Struct:
		if a.isExternalPackage(info.ID.PkgPath) {
			// time.Time and friends are copied whole
			info.Kind = TypeKindExternal
			return
		}

		info.Kind = TypeKindStruct
		a.analyzeStructFields(ut, info, false)
		a.analyzeGetters(named, info)

	case *types.Basic:
		// e.g., type OrderStatus string
		info.Kind = TypeKindAlias
		info.Underlying = a.analyzeType(ut)

	default:
		if a.isExternalPackage(info.ID.PkgPath) {
			info.Kind = TypeKindExternal
			return
		}

		sub := a.analyzeType(ut)
		info.Kind = sub.Kind
		info.Underlying = sub
		info.ElemType = sub.ElemType
		info.KeyType = sub.KeyType
	}
}

// isExternalPackage returns true if the package is not in our analyzed set.
func (a *Analyzer) isExternalPackage(pkgPath string) bool {
	_, ok := a.graph.Packages[pkgPath]
	return !ok
}

// analyzeStructFields collects the exported fields of st. Fields of an
// embedded struct value are promoted unless an outer field has the same
// name; embedded pointers are not followed.
func (a *Analyzer) analyzeStructFields(st *types.Struct, info *TypeInfo, promoted bool) {
	var embedded []*types.Struct

	for i := range st.NumFields() {
		field := st.Field(i)

		if field.Embedded() {
			if inner, ok := field.Type().Underlying().(*types.Struct); ok {
				if _, isPtr := field.Type().(*types.Pointer); !isPtr {
					embedded = append(embedded, inner)
					continue
				}
			}
		}

		if !field.Exported() {
			continue
		}

		if _, exists := info.Field(field.Name()); exists {
			continue
		}

		info.Fields = append(info.Fields, FieldInfo{
			Name:     field.Name(),
			Type:     a.analyzeType(field.Type()),
			Embedded: field.Embedded(),
			Promoted: promoted,
		})
	}

	for _, inner := range embedded {
		a.analyzeStructFields(inner, info, true)
	}
}

// analyzeGetters collects the methods of *T that take no arguments and
// return a value, optionally followed by an error.
func (a *Analyzer) analyzeGetters(named *types.Named, info *TypeInfo) {
	ms := types.NewMethodSet(types.NewPointer(named))

	for i := range ms.Len() {
		fn, ok := ms.At(i).Obj().(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}

		if _, exists := info.Field(fn.Name()); exists {
			continue
		}

		sig, ok := fn.Type().(*types.Signature)
		if !ok || sig.Params().Len() != 0 || sig.Variadic() {
			continue
		}

		res := sig.Results()

		switch {
		case res.Len() == 1 && !types.Identical(res.At(0).Type(), errorType):
			info.Getters = append(info.Getters, FieldInfo{
				Name:   fn.Name(),
				Type:   a.analyzeType(res.At(0).Type()),
				Getter: true,
			})
		case res.Len() == 2 && types.Identical(res.At(1).Type(), errorType):
			info.Getters = append(info.Getters, FieldInfo{
				Name:     fn.Name(),
				Type:     a.analyzeType(res.At(0).Type()),
				Getter:   true,
				Fallible: true,
			})
		}
	}
}

// GetStruct returns the TypeInfo of a named struct.
func (a *Analyzer) GetStruct(pkgPath, typeName string) (*TypeInfo, error) {
	id := TypeID{PkgPath: pkgPath, Name: typeName}

	info := a.graph.GetType(id)
	if info == nil {
		return nil, fmt.Errorf("type %s not found", id)
	}

	if info.Kind != TypeKindStruct {
		return nil, fmt.Errorf("type %s is not a struct (kind: %s)", id, info.Kind)
	}

	return info, nil
}
