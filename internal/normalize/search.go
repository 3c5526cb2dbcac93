package normalize

// Suggestions flattens a search-suggest response into plain strings. The
// endpoint has returned bare string arrays, object arrays and a wrapped
// {suggestions: [...]} envelope across server versions.
func Suggestions(v any) []string {
	switch data := v.(type) {
	case []any:
		var items []string
		for _, item := range data {
			if s, ok := item.(string); ok && s != "" {
				items = append(items, s)
				continue
			}
			if r := AsRecord(item); r != nil {
				if name := firstNonEmpty(r.str("name"), r.str("text"), r.str("suggestion")); name != "" {
					items = append(items, name)
				}
			}
		}
		return items
	case map[string]any:
		r := Record(data)
		if list := r.list("suggestions"); list != nil {
			return Suggestions(list)
		}
		return Suggestions(r.list("results"))
	}
	return nil
}
