package schema

// Merge deep-merges the supplied fragments left to right into a fresh
// fragment. Later scalar values replace earlier ones, nested objects merge
// recursively and arrays merge index by index, so an enum of [a, b] merged with
// [c] yields [c, b]. Nil fragments are skipped and nil keyword values are
// dropped, so a rule with a missing constraint never erases an earlier bound
// or emits a null keyword. Sources are never mutated.
//
// Merge performs no semantic checks: {"type": "integer"} merged with
// {"type": "number"} yields "number", and a minimum above the maximum is kept
// as is.
func Merge(fragments ...Fragment) Fragment {
	out := Fragment{}
	for _, fragment := range fragments {
		if fragment == nil {
			continue
		}
		mergeObject(out, fragment)
	}
	return out
}

func mergeObject(dst, src Fragment) {
	for key, value := range src {
		if value == nil {
			continue
		}
		dst[key] = mergeValue(dst[key], value)
	}
}

func mergeValue(existing, incoming any) any {
	if obj, ok := AsFragment(incoming); ok {
		base, ok := existing.(Fragment)
		if !ok {
			base = Fragment{}
		}
		mergeObject(base, obj)
		return base
	}

	if list, ok := asList(incoming); ok {
		base, ok := existing.([]any)
		if !ok {
			base = make([]any, 0, len(list))
		}
		for idx, item := range list {
			if idx < len(base) {
				base[idx] = mergeValue(base[idx], item)
				continue
			}
			base = append(base, mergeValue(nil, item))
		}
		return base
	}

	return incoming
}

func asList(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		return typed, true
	case []string:
		return cloneValue(typed).([]any), true
	case []byte:
		return nil, false
	}
	if cloned, ok := cloneSlice(value).([]any); ok {
		return cloned, true
	}
	return nil, false
}
