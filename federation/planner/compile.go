package planner

import (
	"fmt"
	"strings"

	"github.com/n9te9/federation-gateway/federation/graph"
	"github.com/n9te9/federation-gateway/federation/plan"
	"github.com/n9te9/graphql-parser/ast"
)

// Planner compiles a client operation against a composed SuperGraphV2 into
// a plan.Tree: one Fetch per owning subgraph at the root, and nested
// Fetch/Flatten subtrees for every boundary field discovered underneath,
// grounded in the same root-field-grouping plus recursive boundary-field
// walk the v2 planner used, but emitting the plan vocabulary directly
// instead of a DependsOn step graph.
type Planner struct {
	SuperGraph *graph.SuperGraphV2
}

// NewPlanner builds a Planner bound to a composed super graph.
func NewPlanner(superGraph *graph.SuperGraphV2) *Planner {
	return &Planner{SuperGraph: superGraph}
}

// Plan compiles doc's single operation into a query plan tree.
func (p *Planner) Plan(doc *ast.Document) (*plan.Tree, error) {
	op := getOperation(doc)
	if op == nil {
		return nil, fmt.Errorf("no operation found in document")
	}
	if len(op.SelectionSet) == 0 {
		return nil, fmt.Errorf("empty selection set")
	}

	fragmentDefs := collectFragmentDefinitions(doc)
	rootType, err := getRootTypeName(p.SuperGraph.Schema, op)
	if err != nil {
		return nil, err
	}

	expanded := expandFragmentsInSelections(op.SelectionSet, fragmentDefs)

	rootFieldsBySubGraph := make(map[*graph.SubGraphV2][]ast.Selection)
	var subGraphOrder []*graph.SubGraphV2
	for _, sel := range expanded {
		field, ok := sel.(*ast.Field)
		if !ok {
			continue
		}
		name := field.Name.String()
		if name == "__typename" || name == "__schema" || name == "__type" {
			continue
		}
		owners := p.SuperGraph.GetSubGraphsForField(rootType, name)
		if len(owners) == 0 {
			return nil, fmt.Errorf("no subgraph resolves %s.%s", rootType, name)
		}
		sg := owners[0]
		if _, seen := rootFieldsBySubGraph[sg]; !seen {
			subGraphOrder = append(subGraphOrder, sg)
		}
		rootFieldsBySubGraph[sg] = append(rootFieldsBySubGraph[sg], field)
	}

	operationKind := operationKindText(op.Operation)

	var rootBranches []*plan.Node
	for _, sg := range subGraphOrder {
		original := rootFieldsBySubGraph[sg]
		filtered := p.filterSelectionsForSubGraph(original, sg, rootType)

		nested := p.discoverEntitySteps(original, &filtered, sg, rootType, nil)

		opText, varUsages, err := buildRootOperationText(sg, operationKind, rootType, filtered)
		if err != nil {
			return nil, err
		}
		fetchNode := &plan.FetchNode{
			ServiceName:    sg.Name,
			OperationText:  opText,
			VariableUsages: varUsages,
			ParentType:     rootType,
			SelectionSet:   astSelectionsToPlan(filtered),
		}

		branch := plan.Fetch(fetchNode)
		if len(nested) == 1 {
			branch = plan.Sequence(branch, nested[0])
		} else if len(nested) > 1 {
			branch = plan.Sequence(branch, plan.Parallel(nested...))
		}
		rootBranches = append(rootBranches, branch)
	}

	var root *plan.Node
	switch len(rootBranches) {
	case 0:
		root = nil
	case 1:
		root = rootBranches[0]
	default:
		root = plan.Parallel(rootBranches...)
	}

	return &plan.Tree{
		Root:               root,
		OperationType:      operationKind,
		ClientSelectionSet: astSelectionsToPlan(expanded),
	}, nil
}

func operationKindText(op ast.OperationType) string {
	switch op {
	case ast.Mutation:
		return "mutation"
	case ast.Subscription:
		return "subscription"
	default:
		return "query"
	}
}

// discoverEntitySteps walks selections (the ORIGINAL, unfiltered selections
// owned by ownerSubGraph at parentType) looking for boundary fields: a
// field resolved by a different subgraph, or a field whose return type is
// an entity owned by a different subgraph. Each one found becomes a Flatten
// wrapping a Fetch (plus, recursively, its own nested boundary fields), and
// the key fields it needs are injected into parentFiltered in place so the
// parent fetch's representation selection picks them up.
func (p *Planner) discoverEntitySteps(
	selections []ast.Selection,
	parentFiltered *[]ast.Selection,
	ownerSubGraph *graph.SubGraphV2,
	parentType string,
	relPath plan.Path,
) []*plan.Node {
	var branches []*plan.Node

	for _, sel := range selections {
		field, ok := sel.(*ast.Field)
		if !ok {
			continue
		}
		fieldName := field.Name.String()
		if fieldName == "__typename" {
			continue
		}
		fieldIdent := fieldName
		if field.Alias != nil && field.Alias.String() != "" {
			fieldIdent = field.Alias.String()
		}

		fd := fieldDefinition(p.SuperGraph.Schema, parentType, fieldName)
		if fd == nil {
			continue
		}
		fieldType := namedType(fd.Type)
		if fieldType == "" {
			continue
		}

		fieldPath := relPath.Append(fieldIdent)
		if isListType(fd.Type) {
			fieldPath = fieldPath.Append(plan.AtSymbol)
		}

		owners := p.SuperGraph.GetSubGraphsForField(parentType, fieldName)
		if len(owners) == 0 {
			continue
		}
		fieldSubGraph := owners[0]
		entityOwner := p.SuperGraph.GetEntityOwnerSubGraph(fieldType)

		switch {
		case fieldSubGraph.Name != ownerSubGraph.Name:
			// Case A: the field itself belongs to another subgraph, as an
			// entity extension field (e.g. Customer.accounts).
			branches = append(branches, p.buildEntityBranch(
				field, fieldSubGraph, parentType, parentType, parentFiltered, relPath, nil))

		case entityOwner != nil && entityOwner.Name != ownerSubGraph.Name:
			// Case B: the field is ours, but its return type is an entity
			// owned elsewhere (e.g. Review.product).
			matched := findFilteredField(parentFiltered, fieldIdent)
			if matched == nil {
				continue
			}
			branches = append(branches, p.buildEntityBranch(
				field, entityOwner, fieldType, fieldType, &matched.SelectionSet, fieldPath, field.SelectionSet))

		default:
			if len(field.SelectionSet) == 0 {
				continue
			}
			matched := findFilteredField(parentFiltered, fieldIdent)
			if matched == nil {
				continue
			}
			nested := p.discoverEntitySteps(field.SelectionSet, &matched.SelectionSet, ownerSubGraph, fieldType, fieldPath)
			branches = append(branches, nested...)
		}
	}

	return branches
}

// buildEntityBranch builds the Flatten(Fetch+nested) subtree for one
// discovered boundary field. injectInto is where key fields for entityType
// are injected (parent's own selections for an extension, the boundary
// field's own children for a reference). childSelections, when non-nil,
// are the boundary field's original children to recurse into for
// selections owned by targetSubGraph and for further nested boundary
// fields; when nil (the extension case) the boundary field itself is the
// unit sent to targetSubGraph.
func (p *Planner) buildEntityBranch(
	field *ast.Field,
	targetSubGraph *graph.SubGraphV2,
	entityType string,
	nestedParentType string,
	injectInto *[]ast.Selection,
	flattenPath plan.Path,
	childSelections []ast.Selection,
) *plan.Node {
	keyFields := getKeyFields(entityType, targetSubGraph)
	ensureFieldsPresent(injectInto, keyFields)

	var entityFiltered []ast.Selection
	if childSelections == nil {
		entityFiltered = p.filterSelectionsForSubGraph([]ast.Selection{field}, targetSubGraph, entityType)
	} else {
		entityFiltered = p.filterSelectionsForSubGraph(childSelections, targetSubGraph, entityType)
	}

	var nested []*plan.Node
	if childSelections != nil {
		nested = p.discoverEntitySteps(childSelections, &entityFiltered, targetSubGraph, nestedParentType, nil)
	}

	opText, varUsages := buildEntityOperationText(entityType, astSelectionsToPlan(entityFiltered))
	fetchNode := &plan.FetchNode{
		ServiceName:    targetSubGraph.Name,
		OperationText:  opText,
		VariableUsages: varUsages,
		ParentType:     entityType,
		Requires:       keyFieldSelectionSet(keyFields),
		SelectionSet:   astSelectionsToPlan(entityFiltered),
	}

	subtree := plan.Fetch(fetchNode)
	if len(nested) == 1 {
		subtree = plan.Sequence(subtree, nested[0])
	} else if len(nested) > 1 {
		subtree = plan.Sequence(subtree, plan.Parallel(nested...))
	}

	return plan.Flatten(flattenPath, subtree)
}

// filterSelectionsForSubGraph rebuilds selections keeping only the fields
// ownerSubGraph resolves on parentType, recursing into their children
// against each field's own return type, and auto-injecting __typename
// wherever a field's children survive filtering (entity key extraction
// needs it) except at a schema root operation type.
func (p *Planner) filterSelectionsForSubGraph(selections []ast.Selection, ownerSubGraph *graph.SubGraphV2, parentType string) []ast.Selection {
	result := make([]ast.Selection, 0, len(selections))
	hasTypename := false

	for _, sel := range selections {
		field, ok := sel.(*ast.Field)
		if !ok {
			continue
		}
		fieldName := field.Name.String()
		if fieldName == "__typename" {
			hasTypename = true
			result = append(result, newTypenameField())
			continue
		}

		owners := p.SuperGraph.GetSubGraphsForField(parentType, fieldName)
		if len(owners) == 0 || owners[0].Name != ownerSubGraph.Name {
			continue
		}

		fd := fieldDefinition(p.SuperGraph.Schema, parentType, fieldName)
		fieldType := ""
		if fd != nil {
			fieldType = namedType(fd.Type)
		}

		var children []ast.Selection
		if len(field.SelectionSet) > 0 && fieldType != "" {
			children = p.filterSelectionsForSubGraph(field.SelectionSet, ownerSubGraph, fieldType)
			if len(children) == 0 {
				children = []ast.Selection{newTypenameField()}
			}
		}
		result = append(result, cloneField(field, children))
	}

	isRootType := parentType == "Query" || parentType == "Mutation" || parentType == "Subscription"
	if !hasTypename && !isRootType && len(result) > 0 {
		result = append([]ast.Selection{newTypenameField()}, result...)
	}

	return result
}

// findFilteredField locates the *ast.Field in *selections matching ident
// (by alias or name), returning nil if absent.
func findFilteredField(selections *[]ast.Selection, ident string) *ast.Field {
	for _, sel := range *selections {
		field, ok := sel.(*ast.Field)
		if !ok {
			continue
		}
		id := field.Name.String()
		if field.Alias != nil && field.Alias.String() != "" {
			id = field.Alias.String()
		}
		if id == ident {
			return field
		}
	}
	return nil
}

// ensureFieldsPresent appends any of names missing from *selections as
// plain fields, in order, skipping ones already present.
func ensureFieldsPresent(selections *[]ast.Selection, names []string) {
	present := make(map[string]bool, len(*selections))
	for _, sel := range *selections {
		if field, ok := sel.(*ast.Field); ok {
			present[field.Name.String()] = true
		}
	}
	for _, name := range names {
		if present[name] {
			continue
		}
		if name == "__typename" {
			*selections = append(*selections, newTypenameField())
		} else {
			*selections = append(*selections, &ast.Field{Name: nameNode(name)})
		}
		present[name] = true
	}
}

// getKeyFields returns the key field names (always led by __typename) for
// entityType as declared in targetSubGraph, inheriting the teacher's
// simplification of only ever using the first @key and splitting its field
// set on whitespace (no composite/nested key support).
func getKeyFields(entityType string, targetSubGraph *graph.SubGraphV2) []string {
	result := []string{"__typename"}
	entity, ok := targetSubGraph.GetEntity(entityType)
	if !ok || len(entity.Keys) == 0 {
		return result
	}
	fields := splitFieldSet(entity.Keys[0].FieldSet)
	return append(result, fields...)
}

func splitFieldSet(fieldSet string) []string {
	return strings.Fields(fieldSet)
}

func keyFieldSelectionSet(keyFields []string) plan.SelectionSet {
	out := make(plan.SelectionSet, 0, len(keyFields))
	for _, name := range keyFields {
		out = append(out, plan.Field(name, nil))
	}
	return out
}
