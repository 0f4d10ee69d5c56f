package executor

import (
	"github.com/n9te9/federation-gateway/federation/graph"
	"github.com/n9te9/federation-gateway/federation/plan"
)

// IntrospectionHandler resolves the introspection meta-fields (__schema and
// __type) that the merged response tree never carries data for, since no
// subgraph ever serves them.
type IntrospectionHandler interface {
	Resolve(selection plan.Selection) (interface{}, bool)
}

// PostProcessor shapes the unfiltered merged response tree down to exactly
// what the client's operation selected (spec §4.7), discarding the
// bookkeeping fields (extra __typename/key selections) the planner added
// for entity resolution.
type PostProcessor struct {
	Introspection IntrospectionHandler
	SuperGraph    *graph.SuperGraphV2
}

// Shape walks selections against tree and returns the client-facing data
// plus any errors the shaping itself produced.
func (pp *PostProcessor) Shape(tree map[string]interface{}, selections plan.SelectionSet) (map[string]interface{}, []GraphQLError) {
	var errs []GraphQLError
	out := pp.shapeObject(tree, selections, &errs)
	return out, errs
}

func (pp *PostProcessor) shapeObject(node interface{}, selections plan.SelectionSet, errs *[]GraphQLError) map[string]interface{} {
	srcMap, _ := node.(map[string]interface{})
	result := map[string]interface{}{}
	for _, sel := range selections {
		if sel.IsFragment() {
			typename, _ := srcMap["__typename"].(string)
			if typename == "" || !matchesTypeCondition(pp.SuperGraph, typename, sel.TypeCondition) {
				continue
			}
			for k, v := range pp.shapeObject(srcMap, sel.SubSelection, errs) {
				result[k] = v
			}
			continue
		}

		if isIntrospectionField(sel.FieldName) && pp.Introspection != nil {
			if val, handled := pp.Introspection.Resolve(sel); handled {
				result[sel.ResponseName] = val
				continue
			}
		}

		if srcMap == nil {
			result[sel.ResponseName] = nil
			continue
		}
		val, exists := srcMap[sel.ResponseName]
		if !exists {
			result[sel.ResponseName] = nil
			continue
		}
		if len(sel.SubSelection) == 0 {
			result[sel.ResponseName] = val
			continue
		}
		result[sel.ResponseName] = pp.shapeValue(val, sel.SubSelection, errs)
	}
	return result
}

func (pp *PostProcessor) shapeValue(val interface{}, sub plan.SelectionSet, errs *[]GraphQLError) interface{} {
	if val == nil {
		return nil
	}
	if arr, ok := val.([]interface{}); ok {
		out := make([]interface{}, len(arr))
		for i, e := range arr {
			if e == nil {
				continue
			}
			out[i] = pp.shapeObject(e, sub, errs)
		}
		return out
	}
	return pp.shapeObject(val, sub, errs)
}

func isIntrospectionField(name string) bool {
	return name == "__schema" || name == "__type"
}
