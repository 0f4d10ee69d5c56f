package executor

import (
	"github.com/n9te9/federation-gateway/federation/graph"
	"github.com/n9te9/federation-gateway/federation/plan"
)

// ExecuteSelectionSet is the Selection-Set Walker of spec §4.3: it builds
// one representation (or the requires input for an entity step) from
// source by recursively applying selections and input rewrites. It returns
// nil when source is missing the data a selected field needs, or when the
// resulting node has no __typename — viability requires one.
func ExecuteSelectionSet(sg *graph.SuperGraphV2, source interface{}, selections plan.SelectionSet, rewrites []plan.InputRewrite) map[string]interface{} {
	node, ok := buildNode(sg, source, selections, rewrites)
	if !ok {
		return nil
	}
	if _, hasTypename := node["__typename"]; !hasTypename {
		return nil
	}
	return node
}

func buildNode(sg *graph.SuperGraphV2, source interface{}, selections plan.SelectionSet, rewrites []plan.InputRewrite) (map[string]interface{}, bool) {
	srcMap, ok := source.(map[string]interface{})
	if !ok {
		return nil, false
	}
	result := map[string]interface{}{}
	for _, sel := range selections {
		if sel.IsFragment() {
			typename, _ := srcMap["__typename"].(string)
			if typename == "" || !matchesTypeCondition(sg, typename, sel.TypeCondition) {
				continue
			}
			subRewrites, _, _ := advanceRewrites(rewrites, plan.TypeConditionStep(sel.TypeCondition))
			sub, ok := buildNode(sg, srcMap, sel.SubSelection, subRewrites)
			if !ok {
				return nil, false
			}
			for k, v := range sub {
				result[k] = v
			}
			continue
		}

		val, exists := srcMap[sel.FieldName]
		if !exists {
			return nil, false
		}

		advanced, complete, isComplete := advanceRewrites(rewrites, sel.FieldName)
		if isComplete {
			result[sel.ResponseName] = complete
			continue
		}
		if len(sel.SubSelection) == 0 {
			result[sel.ResponseName] = val
			continue
		}
		mapped, ok := mapOverArrays(sg, val, sel.SubSelection, advanced)
		if !ok {
			return nil, false
		}
		result[sel.ResponseName] = mapped
	}
	return result, true
}

func mapOverArrays(sg *graph.SuperGraphV2, val interface{}, sub plan.SelectionSet, rewrites []plan.InputRewrite) (interface{}, bool) {
	if val == nil {
		return nil, true
	}
	if arr, ok := val.([]interface{}); ok {
		out := make([]interface{}, len(arr))
		for i, e := range arr {
			if e == nil {
				continue
			}
			m, ok := buildNode(sg, e, sub, rewrites)
			if !ok {
				return nil, false
			}
			out[i] = m
		}
		return out, true
	}
	return buildNode(sg, val, sub, rewrites)
}

func matchesTypeCondition(sg *graph.SuperGraphV2, runtimeType, condition string) bool {
	if runtimeType == condition {
		return true
	}
	if sg == nil {
		return false
	}
	if sg.IsAbstractType(condition) {
		return sg.IsSubtypeOf(runtimeType, condition)
	}
	return false
}
