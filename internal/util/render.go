package util

// WalkStrings walks arbitrary structures (map[string]any, []any) and replaces
// every string leaf with fn's result. Maps and slices are rebuilt so the input
// is never mutated; non-string scalars are returned as is.
func WalkStrings(in any, fn func(string) (any, error)) (any, error) {
	var walk func(v any) (any, error)
	walk = func(v any) (any, error) {
		switch t := v.(type) {
		case map[string]any:
			m := make(map[string]any, len(t))
			for k, vv := range t {
				out, err := walk(vv)
				if err != nil {
					return nil, err
				}
				m[k] = out
			}
			return m, nil
		case []any:
			arr := make([]any, len(t))
			for i := range t {
				out, err := walk(t[i])
				if err != nil {
					return nil, err
				}
				arr[i] = out
			}
			return arr, nil
		case string:
			if fn == nil {
				return t, nil
			}
			return fn(t)
		default:
			return v, nil
		}
	}
	return walk(in)
}
