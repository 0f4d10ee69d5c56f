package executor

import "github.com/n9te9/federation-gateway/federation/plan"

// advanceRewrites implements the updateRewrites operation of spec §4.5: it
// returns the subset of rewrites that advance past step with that step
// consumed from their path, plus the value of any rewrite whose path ends
// exactly at step.
func advanceRewrites(rewrites []plan.InputRewrite, step string) (advanced []plan.InputRewrite, complete interface{}, isComplete bool) {
	for _, rw := range rewrites {
		if len(rw.Path) == 0 || rw.Path[0] != step {
			continue
		}
		rest := rw.Path[1:]
		if len(rest) == 0 {
			complete = rw.SetValueTo
			isComplete = true
			continue
		}
		advanced = append(advanced, plan.InputRewrite{Path: rest, SetValueTo: rw.SetValueTo})
	}
	return advanced, complete, isComplete
}

// FilterOutputRewritesForType strips the leading "... on T" step from every
// rewrite whose conditioned type matches typename, and drops rewrites whose
// leading condition does not match. Used before merging one _entities
// element, whose value is already known to be of typename, back onto its
// source entity (spec §4.4 step 5).
func FilterOutputRewritesForType(rewrites []plan.OutputRewrite, typename string) []plan.OutputRewrite {
	var out []plan.OutputRewrite
	for _, rw := range rewrites {
		if len(rw.Path) == 0 {
			continue
		}
		if t, isCond := plan.IsTypeCondition(rw.Path[0]); isCond {
			if t != typename {
				continue
			}
			out = append(out, plan.OutputRewrite{Path: rw.Path[1:], RenameKeyTo: rw.RenameKeyTo})
			continue
		}
		out = append(out, rw)
	}
	return out
}

// ApplyOutputRewrites applies every rewrite to data in place (spec §4.5).
func ApplyOutputRewrites(data interface{}, rewrites []plan.OutputRewrite) {
	for _, rw := range rewrites {
		applyOutputRewrite(data, rw.Path, rw.RenameKeyTo)
	}
}

func applyOutputRewrite(node interface{}, path []string, renameTo string) {
	if node == nil || len(path) == 0 {
		return
	}
	if arr, ok := node.([]interface{}); ok {
		for _, e := range arr {
			applyOutputRewrite(e, path, renameTo)
		}
		return
	}
	m, ok := node.(map[string]interface{})
	if !ok {
		return
	}
	step := path[0]
	if t, isCond := plan.IsTypeCondition(step); isCond {
		if tn, _ := m["__typename"].(string); tn != t {
			return
		}
		applyOutputRewrite(m, path[1:], renameTo)
		return
	}
	if len(path) == 1 {
		if val, exists := m[step]; exists {
			m[renameTo] = val
			delete(m, step)
		}
		return
	}
	if next, exists := m[step]; exists {
		applyOutputRewrite(next, path[1:], renameTo)
	}
}
