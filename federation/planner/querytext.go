package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/n9te9/federation-gateway/federation/graph"
	"github.com/n9te9/federation-gateway/federation/plan"
	"github.com/n9te9/graphql-parser/ast"
)

// collectVariableNames walks selections (their arguments, recursively)
// collecting every distinct variable referenced, in deterministic order.
func collectVariableNames(selections []ast.Selection) []string {
	seen := map[string]bool{}
	var order []string
	var walk func([]ast.Selection)
	walk = func(sels []ast.Selection) {
		for _, sel := range sels {
			switch s := sel.(type) {
			case *ast.Field:
				for _, arg := range s.Arguments {
					collectVariablesFromValue(arg.Value, seen, &order)
				}
				walk(s.SelectionSet)
			case *ast.InlineFragment:
				walk(s.SelectionSet)
			}
		}
	}
	walk(selections)
	return order
}

func collectVariablesFromValue(v ast.Value, seen map[string]bool, order *[]string) {
	switch val := v.(type) {
	case *ast.Variable:
		if !seen[val.Name] {
			seen[val.Name] = true
			*order = append(*order, val.Name)
		}
	case *ast.ListValue:
		for _, item := range val.Values {
			collectVariablesFromValue(item, seen, order)
		}
	case *ast.ObjectValue:
		for _, f := range val.Fields {
			collectVariablesFromValue(f.Value, seen, order)
		}
	}
}

// argumentTypeFromSchema finds the GraphQL type declared for argName on
// parentType.fieldName within subGraph's own schema.
func argumentTypeFromSchema(subGraph *graph.SubGraphV2, parentType, fieldName, argName string) string {
	if subGraph.Schema == nil {
		return ""
	}
	fd := fieldDefinition(subGraph.Schema, parentType, fieldName)
	if fd == nil {
		return ""
	}
	for _, arg := range fd.Arguments {
		if arg.Name.String() == argName {
			return arg.Type.String()
		}
	}
	return ""
}

// variableTypeFromSchema finds varName's declared type by locating the
// argument that references it anywhere in selections.
func variableTypeFromSchema(subGraph *graph.SubGraphV2, parentType, varName string, selections []ast.Selection) string {
	for _, sel := range selections {
		field, ok := sel.(*ast.Field)
		if !ok {
			continue
		}
		for _, arg := range field.Arguments {
			if v, ok := arg.Value.(*ast.Variable); ok && v.Name == varName {
				if t := argumentTypeFromSchema(subGraph, parentType, field.Name.String(), arg.Name.String()); t != "" {
					return t
				}
			}
		}
		childType := parentType
		if subGraph.Schema != nil {
			if fd := fieldDefinition(subGraph.Schema, parentType, field.Name.String()); fd != nil {
				childType = namedType(fd.Type)
			}
		}
		if t := variableTypeFromSchema(subGraph, childType, varName, field.SelectionSet); t != "" {
			return t
		}
	}
	return ""
}

// buildRootOperationText renders a root query/mutation operation against
// subGraph, declaring every variable the selection set references with the
// type found in the subgraph's own schema.
func buildRootOperationText(subGraph *graph.SubGraphV2, operationKind, rootType string, astSelections []ast.Selection) (text string, varUsages []string, err error) {
	varNames := collectVariableNames(astSelections)
	sort.Strings(varNames)

	var sb strings.Builder
	sb.WriteString(operationKind)
	if len(varNames) > 0 {
		sb.WriteString("(")
		for i, name := range varNames {
			if i > 0 {
				sb.WriteString(", ")
			}
			t := variableTypeFromSchema(subGraph, rootType, name, astSelections)
			if t == "" {
				t = "String"
			}
			sb.WriteString("$")
			sb.WriteString(name)
			sb.WriteString(": ")
			sb.WriteString(t)
		}
		sb.WriteString(")")
	}
	sb.WriteString(" {\n")
	for _, sel := range astSelections {
		if err := writeSelection(&sb, sel, "  "); err != nil {
			return "", nil, err
		}
	}
	sb.WriteString("}")
	return sb.String(), varNames, nil
}

// buildEntityOperationText renders the static "_entities(representations:
// $representations) { ... on T { ... } }" text for an entity fetch. The
// selection set is already filtered to this subgraph's own fields.
func buildEntityOperationText(entityType string, selections plan.SelectionSet) (text string, varUsages []string) {
	var sb strings.Builder
	sb.WriteString("query($representations: [_Any!]!) {\n")
	sb.WriteString("  _entities(representations: $representations) {\n")
	sb.WriteString(fmt.Sprintf("    ... on %s {\n", entityType))
	writePlanSelections(&sb, selections, "      ")
	sb.WriteString("    }\n  }\n}")
	return sb.String(), []string{"representations"}
}

func writeSelection(sb *strings.Builder, sel ast.Selection, indent string) error {
	switch s := sel.(type) {
	case *ast.Field:
		sb.WriteString(indent)
		if s.Alias != nil && s.Alias.String() != "" {
			sb.WriteString(s.Alias.String())
			sb.WriteString(": ")
		}
		sb.WriteString(s.Name.String())
		if len(s.Arguments) > 0 {
			sb.WriteString("(")
			for i, arg := range s.Arguments {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(arg.Name.String())
				sb.WriteString(": ")
				writeASTValue(sb, arg.Value)
			}
			sb.WriteString(")")
		}
		if len(s.SelectionSet) > 0 {
			sb.WriteString(" {\n")
			for _, child := range s.SelectionSet {
				if err := writeSelection(sb, child, indent+"  "); err != nil {
					return err
				}
			}
			sb.WriteString(indent)
			sb.WriteString("}\n")
		} else {
			sb.WriteString("\n")
		}
	case *ast.InlineFragment:
		sb.WriteString(indent)
		sb.WriteString("... on ")
		sb.WriteString(s.TypeCondition.Name.String())
		sb.WriteString(" {\n")
		for _, child := range s.SelectionSet {
			if err := writeSelection(sb, child, indent+"  "); err != nil {
				return err
			}
		}
		sb.WriteString(indent)
		sb.WriteString("}\n")
	default:
		return fmt.Errorf("unsupported selection type %T", sel)
	}
	return nil
}

func writeASTValue(sb *strings.Builder, v ast.Value) {
	switch val := v.(type) {
	case *ast.Variable:
		sb.WriteString("$")
		sb.WriteString(val.Name)
	case *ast.StringValue:
		sb.WriteString(fmt.Sprintf("%q", val.Value))
	case *ast.IntValue:
		sb.WriteString(val.Value)
	case *ast.FloatValue:
		sb.WriteString(val.Value)
	case *ast.BooleanValue:
		fmt.Fprintf(sb, "%v", val.Value)
	case *ast.EnumValue:
		sb.WriteString(val.Value)
	case *ast.ListValue:
		sb.WriteString("[")
		for i, item := range val.Values {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeASTValue(sb, item)
		}
		sb.WriteString("]")
	case *ast.ObjectValue:
		sb.WriteString("{")
		for i, f := range val.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name.String())
			sb.WriteString(": ")
			writeASTValue(sb, f.Value)
		}
		sb.WriteString("}")
	default:
		sb.WriteString("null")
	}
}

func writePlanSelections(sb *strings.Builder, selections plan.SelectionSet, indent string) {
	for _, sel := range selections {
		if sel.IsFragment() {
			sb.WriteString(indent)
			sb.WriteString("... on ")
			sb.WriteString(sel.TypeCondition)
			sb.WriteString(" {\n")
			writePlanSelections(sb, sel.SubSelection, indent+"  ")
			sb.WriteString(indent)
			sb.WriteString("}\n")
			continue
		}
		sb.WriteString(indent)
		if sel.ResponseName != sel.FieldName {
			sb.WriteString(sel.ResponseName)
			sb.WriteString(": ")
		}
		sb.WriteString(sel.FieldName)
		if len(sel.SubSelection) == 0 {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(" {\n")
		writePlanSelections(sb, sel.SubSelection, indent+"  ")
		sb.WriteString(indent)
		sb.WriteString("}\n")
	}
}
