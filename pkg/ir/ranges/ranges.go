// Package ranges implements the inclusive integer Range type and
// find_ranges, the run-coalescing helper used to compute an enum's
// valid_ranges from its declared values.
package ranges

import "sort"

// Range is an inclusive integer interval [Start, End].
type Range struct {
	Start, End int64
}

// Contains reports whether v falls within the range.
func (r Range) Contains(v int64) bool {
	return v >= r.Start && v <= r.End
}

// FindRanges coalesces a list of integers (need not be sorted or unique)
// into the minimal list of maximal consecutive runs, sorted ascending.
func FindRanges(values []int64) []Range {
	if len(values) == 0 {
		return nil
	}
	uniq := make([]int64, len(values))
	copy(uniq, values)
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })

	dedup := uniq[:1]
	for _, v := range uniq[1:] {
		if v != dedup[len(dedup)-1] {
			dedup = append(dedup, v)
		}
	}

	var out []Range
	start := dedup[0]
	prev := dedup[0]
	for _, v := range dedup[1:] {
		if v == prev+1 {
			prev = v
			continue
		}
		out = append(out, Range{Start: start, End: prev})
		start = v
		prev = v
	}
	out = append(out, Range{Start: start, End: prev})
	return out
}
