// Package structure is the struct/interface/impl registry (component
// C5): struct shape definitions, non-pointer struct-member cycle
// detection, interface method-set registration, and impl method
// dispatch tables keyed by (struct name, method name). Binding self
// for a method call is left to the interpreter.
package structure

import (
	"fmt"

	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/diagnostic"
)

// StructInfo is a registered struct's shape.
type StructInfo struct {
	Name    string
	Members []ast.StructMember
}

// MemberByName finds a member by name, or nil.
func (s *StructInfo) MemberByName(name string) *ast.StructMember {
	for i := range s.Members {
		if s.Members[i].Name == name {
			return &s.Members[i]
		}
	}
	return nil
}

// InterfaceInfo is a registered interface's method set.
type InterfaceInfo struct {
	Name    string
	Methods []ast.InterfaceMethodSig
}

// MethodByName finds a method signature by name, or nil.
func (i *InterfaceInfo) MethodByName(name string) *ast.InterfaceMethodSig {
	for k := range i.Methods {
		if i.Methods[k].Name == name {
			return &i.Methods[k]
		}
	}
	return nil
}

// Registry owns every struct/interface/impl definition in a program.
type Registry struct {
	structs    map[string]*StructInfo
	interfaces map[string]*InterfaceInfo
	// methods maps "StructName.MethodName" to the FuncDecl implementing
	// it, installed by RegisterImpl.
	methods map[string]*ast.FuncDecl
	// implementedBy maps an interface name to the struct names that
	// implement it, in registration order.
	implementedBy map[string][]string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		structs:       make(map[string]*StructInfo),
		interfaces:    make(map[string]*InterfaceInfo),
		methods:       make(map[string]*ast.FuncDecl),
		implementedBy: make(map[string][]string),
	}
}

// RegisterStruct installs decl's shape.
func (r *Registry) RegisterStruct(decl *ast.StructDecl) {
	r.structs[decl.Name] = &StructInfo{Name: decl.Name, Members: decl.Members}
}

// RegisterInterface installs decl's method set.
func (r *Registry) RegisterInterface(decl *ast.InterfaceDecl) {
	r.interfaces[decl.Name] = &InterfaceInfo{Name: decl.Name, Methods: decl.Methods}
}

// Struct looks up a registered struct by name.
func (r *Registry) Struct(name string) (*StructInfo, bool) {
	s, ok := r.structs[name]
	return s, ok
}

// Interface looks up a registered interface by name.
func (r *Registry) Interface(name string) (*InterfaceInfo, bool) {
	i, ok := r.interfaces[name]
	return i, ok
}

func methodKey(structName, methodName string) string {
	return structName + "." + methodName
}

// RegisterImpl installs decl's methods into the dispatch table,
// verifying every interface method has a matching implementation and
// rejecting an impl for an unknown interface or struct.
func (r *Registry) RegisterImpl(decl *ast.ImplDecl) error {
	iface, ok := r.interfaces[decl.InterfaceName]
	if !ok {
		return cberr.New(diagnostic.CodeUndefinedFunction, decl.Position.Off,
			"impl of undefined interface %q", decl.InterfaceName)
	}
	if _, ok := r.structs[decl.StructName]; !ok {
		return cberr.New(diagnostic.CodeUndefinedFunction, decl.Position.Off,
			"impl for undefined struct %q", decl.StructName)
	}
	have := make(map[string]bool, len(decl.Methods))
	for _, m := range decl.Methods {
		m.TypeName = decl.StructName
		m.QualifiedName = fmt.Sprintf("%s_%s_%s", decl.InterfaceName, decl.StructName, m.Name)
		r.methods[methodKey(decl.StructName, m.Name)] = m
		have[m.Name] = true
	}
	for _, sig := range iface.Methods {
		if !have[sig.Name] {
			return cberr.New(diagnostic.CodeUndefinedFunction, decl.Position.Off,
				"impl %s for %s is missing method %q", decl.InterfaceName, decl.StructName, sig.Name)
		}
	}
	r.implementedBy[decl.InterfaceName] = append(r.implementedBy[decl.InterfaceName], decl.StructName)
	return nil
}

// Method looks up the method installed for (structName, methodName).
func (r *Registry) Method(structName, methodName string) (*ast.FuncDecl, bool) {
	m, ok := r.methods[methodKey(structName, methodName)]
	return m, ok
}

// Implementors returns the struct names registered as implementing
// ifaceName, in the order their impl blocks appeared.
func (r *Registry) Implementors(ifaceName string) []string {
	return r.implementedBy[ifaceName]
}

// ----------------------------------------------------------------------------
// Cycle detection
// ----------------------------------------------------------------------------

// CheckNoCycles walks the non-pointer, non-reference struct-member
// graph looking for a cycle (a struct that directly or transitively
// contains itself by value), per §3.5/§4.5. Pointer/reference members
// break the cycle since they don't need the member to be laid out
// inline.
func (r *Registry) CheckNoCycles() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(r.structs))
	var visit func(name string, pos ast.Pos) error
	visit = func(name string, pos ast.Pos) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return cberr.New(diagnostic.CodeStructCycleError, pos,
				"struct %q contains itself by value, directly or transitively", name)
		}
		color[name] = gray
		s, ok := r.structs[name]
		if !ok {
			color[name] = black
			return nil
		}
		for _, m := range s.Members {
			if m.Type.IsPointer || m.Type.IsReference {
				continue
			}
			if m.StructAlias == "" {
				continue
			}
			if err := visit(m.StructAlias, m.Position.Off); err != nil {
				return err
			}
		}
		color[name] = black
		return nil
	}
	for name, s := range r.structs {
		if color[name] == white {
			pos := ast.NoPos
			if len(s.Members) > 0 {
				pos = s.Members[0].Position.Off
			}
			if err := visit(name, pos); err != nil {
				return err
			}
		}
	}
	return nil
}
