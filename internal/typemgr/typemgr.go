// Package typemgr is the type manager (component C3): typedef
// resolution to a fixed point, union-typedef admitted-value sets,
// type-name-to-tag mapping, and type compatibility/promotion queries
// consulted by the evaluator and the array subsystem.
package typemgr

import (
	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/cbtype"
	"github.com/cb-lang/cb/internal/diagnostic"
)

var primitiveTags = map[string]cbtype.Tag{
	"void": cbtype.Void, "tiny": cbtype.Tiny, "short": cbtype.Short,
	"int": cbtype.Int, "long": cbtype.Long, "bool": cbtype.Bool,
	"char": cbtype.Char, "string": cbtype.String, "float": cbtype.Float,
	"double": cbtype.Double, "quad": cbtype.Quad,
}

// typedefEntry is one registered `typedef <type> Alias;`.
type typedefEntry struct {
	Underlying ast.TypeRef
}

// Manager owns every type-name table the evaluator needs: typedefs,
// struct/enum/interface/union registries and their admitted values.
type Manager struct {
	typedefs map[string]typedefEntry
	structs  map[string]bool
	enums    map[string]bool
	ifaces   map[string]bool
	unions   map[string][]cbtype.Value
}

// New creates an empty Manager.
func New() *Manager {
	return &Manager{
		typedefs: make(map[string]typedefEntry),
		structs:  make(map[string]bool),
		enums:    make(map[string]bool),
		ifaces:   make(map[string]bool),
		unions:   make(map[string][]cbtype.Value),
	}
}

// RegisterStruct records name as a known struct type.
func (m *Manager) RegisterStruct(name string) { m.structs[name] = true }

// RegisterEnum records name as a known enum type.
func (m *Manager) RegisterEnum(name string) { m.enums[name] = true }

// RegisterInterface records name as a known interface type.
func (m *Manager) RegisterInterface(name string) { m.ifaces[name] = true }

// IsStructType reports whether name is a registered struct.
func (m *Manager) IsStructType(name string) bool { return m.structs[name] }

// IsEnumType reports whether name is a registered enum.
func (m *Manager) IsEnumType(name string) bool { return m.enums[name] }

// IsInterfaceType reports whether name is a registered interface.
func (m *Manager) IsInterfaceType(name string) bool { return m.ifaces[name] }

// RegisterTypedef installs alias -> underlying, rejecting a typedef
// that would create an unresolvable cycle (alias appearing, directly
// or transitively, inside its own underlying type name).
func (m *Manager) RegisterTypedef(pos ast.Pos, alias string, underlying ast.TypeRef) error {
	m.typedefs[alias] = typedefEntry{Underlying: underlying}
	if _, err := m.ResolveTypedef(pos, alias); err != nil {
		delete(m.typedefs, alias)
		return err
	}
	return nil
}

// IsTypedefDefined reports whether alias names a registered typedef.
func (m *Manager) IsTypedefDefined(alias string) bool {
	_, ok := m.typedefs[alias]
	return ok
}

// ResolveTypedef follows alias through the typedef table to a fixed
// point — a TypeRef whose Name is either a primitive, a struct, an
// enum, an interface, or a union, i.e. not itself a typedef alias.
// Array dimensions accumulate outward (a typedef to an array type,
// aliased again, keeps the original dimensions).
func (m *Manager) ResolveTypedef(pos ast.Pos, name string) (ast.TypeRef, error) {
	seen := map[string]bool{}
	cur := ast.TypeRef{Name: name}
	for {
		if seen[cur.Name] {
			return ast.TypeRef{}, cberr.New(diagnostic.CodeTypeMismatch, pos,
				"typedef cycle detected resolving %q", name)
		}
		seen[cur.Name] = true
		entry, ok := m.typedefs[cur.Name]
		if !ok {
			return cur, nil
		}
		next := entry.Underlying
		// Outer array dimensions (from an intermediate alias) combine
		// with the underlying type's own dimensions, outermost first.
		next.ArrayDims = append(append([]ast.Expr(nil), cur.ArrayDims...), next.ArrayDims...)
		if cur.IsUnsigned {
			next.IsUnsigned = true
		}
		cur = next
	}
}

// StringToTag maps a resolved type name to its Tag. name should
// already be the result of ResolveTypedef when typedefs might be in
// play; StringToTag itself does not chase aliases.
func (m *Manager) StringToTag(name string) cbtype.Tag {
	if t, ok := primitiveTags[name]; ok {
		return t
	}
	if m.structs[name] {
		return cbtype.Struct
	}
	if m.enums[name] {
		return cbtype.Enum
	}
	if m.ifaces[name] {
		return cbtype.Interface
	}
	if _, ok := m.unions[name]; ok {
		return cbtype.Union
	}
	return cbtype.Unknown
}

// TagToString renders tag as its canonical Cb spelling, for
// diagnostics and printf-style %s-of-a-type debugging.
func TagToString(tag cbtype.Tag) string { return tag.String() }

// ----------------------------------------------------------------------------
// Union typedefs
// ----------------------------------------------------------------------------

// RegisterUnion installs alias's admitted-value set, recorded from the
// literal expressions written in `union Alias = V1 | V2 | ...;`.
func (m *Manager) RegisterUnion(alias string, admitted []cbtype.Value) {
	m.unions[alias] = admitted
}

// IsUnionType reports whether name is a registered union typedef.
func (m *Manager) IsUnionType(name string) bool {
	_, ok := m.unions[name]
	return ok
}

// IsValueAllowedForUnion checks v against alias's admitted-value set.
// Numeric values compare by IntVal/FloatVal, strings by Str.
func (m *Manager) IsValueAllowedForUnion(alias string, v cbtype.Value) bool {
	for _, admitted := range m.unions[alias] {
		if valuesEqual(admitted, v) {
			return true
		}
	}
	return false
}

func valuesEqual(a, b cbtype.Value) bool {
	if a.Tag == cbtype.String || b.Tag == cbtype.String {
		return a.Str == b.Str
	}
	if a.Tag.IsFloat() || b.Tag.IsFloat() {
		return a.FloatVal == b.FloatVal
	}
	return a.IntVal == b.IntVal
}

// ----------------------------------------------------------------------------
// Compatibility and promotion
// ----------------------------------------------------------------------------

// IsCompatibleType reports whether a value of tag `from` may be stored
// into a slot of tag `to` without an explicit cast: identical tags,
// any integer/float pair (subject to RangeCheck at the store site), or
// identical struct/enum/interface names (checked by the caller, which
// has the names typemgr's Tag-only view lacks).
func (m *Manager) IsCompatibleType(from, to cbtype.Tag) bool {
	if from == to {
		return true
	}
	if (from.IsInteger() || from.IsFloat()) && (to.IsInteger() || to.IsFloat()) {
		return true
	}
	return false
}

// GetPromotedType is PromoteNumeric exposed through the type manager
// for symmetry with the rest of its API.
func (m *Manager) GetPromotedType(a, b cbtype.Tag) cbtype.Tag {
	return cbtype.PromoteNumeric(a, b)
}
