// Package utils contains small generic helpers shared across packages.
package utils

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Unique returns the items of in with duplicates removed, keeping first-seen order.
func Unique[T comparable](in []T) []T {
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
