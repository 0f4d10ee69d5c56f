package executor

import (
	"github.com/n9te9/federation-gateway/federation/plan"
)

// cursorItem is one concrete position a Cursor currently occupies: the
// hydrated response path that reached it, and the tree node found there.
type cursorItem struct {
	path plan.ResponsePath
	node interface{}
}

// Cursor is the (path, view, root) triple of spec §3. Internally it tracks
// every concrete position reached so far (more than one once a Flatten has
// traversed an array), so that View() can report either a single node or a
// flattened list, and ElementPaths() can hand the Error-Path Hydrator an
// exact response path per element without re-walking the tree.
type Cursor struct {
	items    []cursorItem
	planPath plan.Path // accumulated plan path, may contain "@"
	root     map[string]interface{}
}

// RootCursor builds the cursor positioned at the empty path of a fresh
// response tree.
func RootCursor(root map[string]interface{}) Cursor {
	return Cursor{
		items: []cursorItem{{path: plan.ResponsePath{}, node: root}},
		root:  root,
	}
}

// Root returns the response tree this cursor was derived from.
func (c Cursor) Root() map[string]interface{} { return c.root }

// PlanPath returns the plan path (which may contain "@") that produced this
// cursor, for use by the Error-Path Hydrator.
func (c Cursor) PlanPath() plan.Path { return c.planPath }

// View returns the node at path, or — if the cursor's path traversed any
// "@" — the flattened ordered list of nodes reachable via that path.
func (c Cursor) View() interface{} {
	if len(c.items) == 1 {
		return c.items[0].node
	}
	out := make([]interface{}, len(c.items))
	for i, it := range c.items {
		out[i] = it.node
	}
	return out
}

// Path returns a concrete response path representative of this cursor: the
// path of its single position when the cursor was never flattened, or of
// its first position otherwise. Used by the Error-Path Hydrator's fallback
// for errors that are not entity-indexed.
func (c Cursor) Path() plan.ResponsePath {
	if len(c.items) == 0 {
		return nil
	}
	return c.items[0].path
}

// ElementPaths returns, for each element of View() when it is a list
// (whether because "@" was traversed or because the single node at path
// happens to hold an array value), the concrete response path of that
// element. When View() is not a list, it returns a single-element slice
// with the cursor's own path.
func (c Cursor) ElementPaths() []plan.ResponsePath {
	if len(c.items) > 1 {
		out := make([]plan.ResponsePath, len(c.items))
		for i, it := range c.items {
			out[i] = it.path
		}
		return out
	}
	if len(c.items) == 1 {
		if arr, ok := c.items[0].node.([]interface{}); ok {
			out := make([]plan.ResponsePath, len(arr))
			base := c.items[0].path
			for i := range arr {
				out[i] = base.Append(plan.IndexElem(i))
			}
			return out
		}
		return []plan.ResponsePath{c.items[0].path}
	}
	return nil
}

// Move walks path from cursor, flattening at each "@" element and indexing
// at each field element. It returns ok=false ("no cursor") when the path
// dead-ends in null or absent data, or every branch of an already-flattened
// cursor does. Per spec, a field element is never applied to an array and
// "@" is never applied to a non-array; such attempts simply drop that
// branch rather than erroring, since the planner guarantees path validity.
func Move(c Cursor, path plan.Path) (Cursor, bool) {
	items := c.items
	planPath := c.planPath
	for _, step := range path {
		planPath = planPath.Append(step)
		var next []cursorItem
		if step == plan.AtSymbol {
			for _, it := range items {
				arr, ok := it.node.([]interface{})
				if !ok {
					continue
				}
				for i, elem := range arr {
					next = append(next, cursorItem{path: it.path.Append(plan.IndexElem(i)), node: elem})
				}
			}
		} else {
			for _, it := range items {
				if it.node == nil {
					continue
				}
				m, ok := it.node.(map[string]interface{})
				if !ok {
					continue
				}
				val, exists := m[step]
				if !exists || val == nil {
					continue
				}
				next = append(next, cursorItem{path: it.path.Append(plan.FieldElem(step)), node: val})
			}
		}
		items = next
		if len(items) == 0 {
			return Cursor{}, false
		}
	}
	return Cursor{items: items, planPath: planPath, root: c.root}, true
}
