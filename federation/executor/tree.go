package executor

// MergeInto deep-merges source into target in place, following spec §4.2:
// mappings combine keys recursively, equal-length arrays combine
// element-wise, scalars are replaced (later wins), and null replaces
// undefined but never a non-null value. target is mutated; this is how
// fetch results land on top of whatever an earlier, Sequence-ordered fetch
// already wrote at the same cursor.
func MergeInto(target map[string]interface{}, source map[string]interface{}) {
	for k, v := range source {
		if cur, exists := target[k]; exists {
			target[k] = mergeValue(cur, v)
		} else {
			target[k] = v
		}
	}
}

func mergeValue(existing, incoming interface{}) interface{} {
	switch inc := incoming.(type) {
	case map[string]interface{}:
		ex, ok := existing.(map[string]interface{})
		if !ok {
			return inc
		}
		for k, v := range inc {
			if cur, exists := ex[k]; exists {
				ex[k] = mergeValue(cur, v)
			} else {
				ex[k] = v
			}
		}
		return ex
	case []interface{}:
		ex, ok := existing.([]interface{})
		if !ok || len(ex) != len(inc) {
			return inc
		}
		for i := range ex {
			ex[i] = mergeValue(ex[i], inc[i])
		}
		return ex
	case nil:
		if existing != nil {
			return existing
		}
		return nil
	default:
		return inc
	}
}
