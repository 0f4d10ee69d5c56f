package planner

import (
	"fmt"

	"github.com/n9te9/federation-gateway/federation/plan"
	"github.com/n9te9/graphql-parser/ast"
	"github.com/n9te9/graphql-parser/token"
)

func newTypenameField() *ast.Field {
	return &ast.Field{Name: nameNode("__typename")}
}

func nameNode(value string) *ast.Name {
	return &ast.Name{Token: token.Token{Type: token.IDENT, Literal: value}, Value: value}
}

func cloneField(f *ast.Field, selections []ast.Selection) *ast.Field {
	return &ast.Field{
		Alias:        f.Alias,
		Name:         f.Name,
		Arguments:    f.Arguments,
		Directives:   f.Directives,
		SelectionSet: selections,
	}
}

func getOperation(doc *ast.Document) *ast.OperationDefinition {
	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok {
			return op
		}
	}
	return nil
}

func collectFragmentDefinitions(doc *ast.Document) map[string]*ast.FragmentDefinition {
	fragments := make(map[string]*ast.FragmentDefinition)
	for _, def := range doc.Definitions {
		if fd, ok := def.(*ast.FragmentDefinition); ok {
			fragments[fd.Name.String()] = fd
		}
	}
	return fragments
}

// expandFragmentsInSelections replaces each fragment spread with an inline
// fragment carrying the fragment definition's type condition and keeps
// inline fragments (with their type conditions) in place, expanding both
// recursively, so the walker can apply type conditions at runtime. A spread
// naming an unknown fragment is dropped.
func expandFragmentsInSelections(selections []ast.Selection, fragmentDefs map[string]*ast.FragmentDefinition) []ast.Selection {
	result := make([]ast.Selection, 0, len(selections))
	for _, sel := range selections {
		switch s := sel.(type) {
		case *ast.Field:
			if len(s.SelectionSet) > 0 {
				result = append(result, cloneField(s, expandFragmentsInSelections(s.SelectionSet, fragmentDefs)))
			} else {
				result = append(result, s)
			}
		case *ast.InlineFragment:
			result = append(result, &ast.InlineFragment{
				TypeCondition: s.TypeCondition,
				Directives:    s.Directives,
				SelectionSet:  expandFragmentsInSelections(s.SelectionSet, fragmentDefs),
			})
		case *ast.FragmentSpread:
			fd, ok := fragmentDefs[s.Name.String()]
			if !ok {
				continue
			}
			result = append(result, &ast.InlineFragment{
				TypeCondition: fd.TypeCondition,
				SelectionSet:  expandFragmentsInSelections(fd.SelectionSet, fragmentDefs),
			})
		default:
			result = append(result, sel)
		}
	}
	return result
}

func getRootTypeName(schemaDoc *ast.Document, op *ast.OperationDefinition) (string, error) {
	switch op.Operation {
	case ast.Query:
		return rootTypeOverride(schemaDoc, token.QUERY, "Query"), nil
	case ast.Mutation:
		return rootTypeOverride(schemaDoc, token.MUTATION, "Mutation"), nil
	case ast.Subscription:
		return rootTypeOverride(schemaDoc, token.SUBSCRIPTION, "Subscription"), nil
	default:
		return "", fmt.Errorf("unknown operation type: %v", op.Operation)
	}
}

func rootTypeOverride(schemaDoc *ast.Document, op token.TokenType, fallback string) string {
	for _, def := range schemaDoc.Definitions {
		sd, ok := def.(*ast.SchemaDefinition)
		if !ok {
			continue
		}
		for _, ot := range sd.OperationTypes {
			if ot.Operation == op {
				return ot.Type.Name.String()
			}
		}
	}
	return fallback
}

func namedType(t ast.Type) string {
	switch typ := t.(type) {
	case *ast.NamedType:
		return typ.Name.String()
	case *ast.ListType:
		return namedType(typ.Type)
	case *ast.NonNullType:
		return namedType(typ.Type)
	default:
		return ""
	}
}

func isListType(t ast.Type) bool {
	switch typ := t.(type) {
	case *ast.ListType:
		return true
	case *ast.NonNullType:
		return isListType(typ.Type)
	default:
		return false
	}
}

func fieldDefinition(doc *ast.Document, parentType, fieldName string) *ast.FieldDefinition {
	for _, def := range doc.Definitions {
		td, ok := def.(*ast.ObjectTypeDefinition)
		if !ok || td.Name.String() != parentType {
			continue
		}
		for _, f := range td.Fields {
			if f.Name.String() == fieldName {
				return f
			}
		}
	}
	return nil
}

func astValueToPlanValue(v ast.Value) plan.Value {
	switch val := v.(type) {
	case *ast.Variable:
		return plan.Value{Var: val.Name}
	case *ast.StringValue:
		return plan.Value{Literal: val.Value}
	case *ast.IntValue:
		return plan.Value{Literal: val.Value}
	case *ast.FloatValue:
		return plan.Value{Literal: val.Value}
	case *ast.BooleanValue:
		return plan.Value{Literal: val.Value}
	case *ast.EnumValue:
		return plan.Value{Literal: plan.EnumValue(val.Value)}
	case *ast.ListValue:
		items := make([]plan.Value, len(val.Values))
		for i, item := range val.Values {
			items[i] = astValueToPlanValue(item)
		}
		return plan.Value{Literal: items}
	case *ast.ObjectValue:
		fields := make([]plan.ObjectField, len(val.Fields))
		for i, f := range val.Fields {
			fields[i] = plan.ObjectField{Name: f.Name.String(), Value: astValueToPlanValue(f.Value)}
		}
		return plan.Value{Literal: fields}
	default:
		return plan.Value{Literal: nil}
	}
}

func astArgumentsToPlan(args []*ast.Argument) []plan.Argument {
	if len(args) == 0 {
		return nil
	}
	out := make([]plan.Argument, len(args))
	for i, a := range args {
		out[i] = plan.Argument{Name: a.Name.String(), Value: astValueToPlanValue(a.Value)}
	}
	return out
}

// astSelectionsToPlan converts ast selections (already fragment-expanded)
// into plan selections, used both for a fetch's own SelectionSet and for
// the client's top-level selection set the Post-Processor shapes against.
func astSelectionsToPlan(selections []ast.Selection) plan.SelectionSet {
	out := make(plan.SelectionSet, 0, len(selections))
	for _, sel := range selections {
		switch s := sel.(type) {
		case *ast.Field:
			name := s.Name.String()
			responseName := name
			if s.Alias != nil && s.Alias.String() != "" {
				responseName = s.Alias.String()
			}
			out = append(out, plan.Selection{
				ResponseName: responseName,
				FieldName:    name,
				Arguments:    astArgumentsToPlan(s.Arguments),
				SubSelection: astSelectionsToPlan(s.SelectionSet),
			})
		case *ast.InlineFragment:
			out = append(out, plan.Selection{
				TypeCondition: s.TypeCondition.Name.String(),
				SubSelection:  astSelectionsToPlan(s.SelectionSet),
			})
		}
	}
	return out
}

func ensureTypename(sels plan.SelectionSet) plan.SelectionSet {
	for _, s := range sels {
		if s.FieldName == "__typename" {
			return sels
		}
	}
	out := make(plan.SelectionSet, 0, len(sels)+1)
	out = append(out, plan.Field("__typename", nil))
	out = append(out, sels...)
	return out
}
