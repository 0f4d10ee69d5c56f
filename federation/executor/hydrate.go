package executor

import "github.com/n9te9/federation-gateway/federation/plan"

// HydrateErrorPath translates one subgraph error's path into a response
// path, per spec §4.6. entityPaths holds the concrete response path each
// representation sent to the subgraph came from, in representation order;
// cursorPath is the fallback base path for fetches with no representations
// (ordinary root/object fetches).
//
// A subgraph error path for an entities fetch looks like
// ["_entities", i, ...rest]: i selects which representation failed, and
// rest is resolved against that representation's own source path. Any
// other shape (a plain field fetch's error) is resolved by appending the
// whole error path to cursorPath.
func HydrateErrorPath(entityPaths []plan.ResponsePath, cursorPath plan.ResponsePath, errPath []interface{}) plan.ResponsePath {
	if len(errPath) >= 2 {
		if first, ok := errPath[0].(string); ok && first == "_entities" {
			if idx, ok := asInt(errPath[1]); ok && idx >= 0 && idx < len(entityPaths) {
				return entityPaths[idx].Append(toResponseElements(errPath[2:])...)
			}
		}
	}
	return cursorPath.Append(toResponseElements(errPath)...)
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func toResponseElements(path []interface{}) []plan.ResponsePathElement {
	out := make([]plan.ResponsePathElement, len(path))
	for i, p := range path {
		if idx, ok := asInt(p); ok {
			out[i] = plan.IndexElem(idx)
			continue
		}
		if s, ok := p.(string); ok {
			out[i] = plan.FieldElem(s)
		}
	}
	return out
}
