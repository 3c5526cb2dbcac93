package normalize

// Page is the canonical paginated collection shape. Every listing endpoint
// is normalized into it, whether the server returned a DRF-style envelope
// {count, next, previous, results} or a bare array.
type Page[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []T    `json:"results"`
}

// collection splits a decoded response into its result items plus envelope
// metadata. A bare array becomes an envelope whose count is the array
// length.
func collection(v any) (items []any, count int, next, prev string) {
	switch data := v.(type) {
	case []any:
		return data, len(data), "", ""
	case map[string]any:
		r := Record(data)
		items = r.list("results")
		count = r.integer("count")
		if count == 0 {
			count = len(items)
		}
		return items, count, r.str("next"), r.str("previous")
	case Record:
		return collection(map[string]any(data))
	}
	return nil, 0, "", ""
}

func mapPage[T any](v any, fn func(Record) T) Page[T] {
	items, count, next, prev := collection(v)
	page := Page[T]{Count: count, Next: next, Previous: prev, Results: make([]T, 0, len(items))}
	for _, item := range items {
		page.Results = append(page.Results, fn(AsRecord(item)))
	}
	return page
}
