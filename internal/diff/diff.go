// Package diff finds which character positions changed between two
// renderings of the same display field.
package diff

// ChangedIndices compares previous and current rune by rune and returns the
// ascending positions that differ. A position past the end of either string
// never matches. Equal strings give an empty, non-nil slice.
//
// An empty previous means "no previous value"; callers skip diffing on the
// first observation instead of flagging every position.
func ChangedIndices(previous, current string) []int {
	prev := []rune(previous)
	cur := []rune(current)

	n := max(len(prev), len(cur))
	changes := make([]int, 0)
	for i := range n {
		if i >= len(prev) || i >= len(cur) || prev[i] != cur[i] {
			changes = append(changes, i)
		}
	}
	return changes
}
