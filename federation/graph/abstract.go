package graph

import "github.com/n9te9/graphql-parser/ast"

// IsAbstractType reports whether name names an interface or union in the
// composed schema.
func (sg *SuperGraphV2) IsAbstractType(name string) bool {
	for _, def := range sg.Schema.Definitions {
		switch d := def.(type) {
		case *ast.InterfaceTypeDefinition:
			if d.Name.String() == name {
				return true
			}
		case *ast.UnionTypeDefinition:
			if d.Name.String() == name {
				return true
			}
		}
	}
	return false
}

// IsSubtypeOf reports whether runtimeType satisfies abstractName: either
// runtimeType implements the interface abstractName, or runtimeType is a
// member of the union abstractName.
func (sg *SuperGraphV2) IsSubtypeOf(runtimeType, abstractName string) bool {
	for _, def := range sg.Schema.Definitions {
		switch d := def.(type) {
		case *ast.ObjectTypeDefinition:
			if d.Name.String() != runtimeType {
				continue
			}
			for _, iface := range d.Interfaces {
				if iface.Name.String() == abstractName {
					return true
				}
			}
		case *ast.UnionTypeDefinition:
			if d.Name.String() != abstractName {
				continue
			}
			for _, member := range d.Types {
				if member.Name.String() == runtimeType {
					return true
				}
			}
		}
	}
	return false
}
