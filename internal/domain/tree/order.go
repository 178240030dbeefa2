package tree

import "sort"

// Stable 返回按 SortOrder 升序的副本，相同 order 保持原相对顺序
func Stable[N Node](level []N) []N {
	out := make([]N, len(level))
	copy(out, level)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder() < out[j].SortOrder() })
	return out
}
