package utils

// UniqueBy keeps the first item for every distinct key, preserving order.
func UniqueBy[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	list := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		list = append(list, item)
	}
	return list
}

func Chunks[T any](items []T, chunkSize int) (chunks [][]T) {
	if chunkSize <= 0 {
		return [][]T{items}
	}
	for chunkSize < len(items) {
		items, chunks = items[chunkSize:], append(chunks, items[0:chunkSize:chunkSize])
	}
	return append(chunks, items)
}
