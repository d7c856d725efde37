package catalog

// Dedup collapses products sharing an ID. The last occurrence wins, placed at
// the position where the ID first appeared.
func Dedup(products []Product) []Product {
	if len(products) == 0 {
		return []Product{}
	}
	index := make(map[int64]int, len(products))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if i, ok := index[p.ID]; ok {
			out[i] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}
