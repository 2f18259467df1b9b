package dispatch

// MergeByName merges two entry lists, each already sorted by name,
// into one name-sorted list.
//
// This is how a lookup combines the wildcard bucket with a tag bucket
// without re-sorting: both buckets inherit name order from the catalog
// scan, and the merge preserves it. Ties keep a's entry first, though
// buckets built from one catalog snapshot never share a name.
//
// Pure function; the inputs are not modified.
func MergeByName(a, b []Entry) []Entry {
	merged := make([]Entry, 0, len(a)+len(b))

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].Name <= b[j].Name {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)

	return merged
}
