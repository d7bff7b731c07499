package kanatrie

import (
	"sort"
	"unicode/utf8"

	"github.com/mkanda/kkc/internal/types"
)

// SegmentationResult maps an end byte offset to the reading substrings
// that end there. All listed substrings start somewhere in [0, end).
type SegmentationResult map[int][]string

// Ends returns the end offsets in ascending order.
func (r SegmentationResult) Ends() []int {
	ends := make([]int, 0, len(r))
	for e := range r {
		ends = append(ends, e)
	}
	sort.Ints(ends)
	return ends
}

// Segmenter composes an ordered list of tries (system first, then the
// user-learned readings) into one common-prefix search.
type Segmenter struct {
	tries []Searcher
}

// NewSegmenter builds a Segmenter over the given tries.
func NewSegmenter(tries ...Searcher) *Segmenter {
	return &Segmenter{tries: tries}
}

// Build enumerates the known substrings of yomi beginning at each
// reachable start offset, keyed by their end offset. Only starts that
// are the end of an already-emitted segment (or offset 0) are
// expanded, which keeps every emitted node reachable from the head of
// the reading. A reachable start with no match contributes its single
// leading character so the walk always advances. forceRanges pin
// clause boundaries: no emitted segment may straddle one, and each
// forced range is always emitted.
func (sg *Segmenter) Build(yomi string, forceRanges []types.Range) SegmentationResult {
	result := make(SegmentationResult)
	add := func(start, end int) {
		seg := yomi[start:end]
		for _, prev := range result[end] {
			if prev == seg {
				return
			}
		}
		result[end] = append(result[end], seg)
	}

	reachable := map[int]bool{0: true}
	for start := 0; start < len(yomi); {
		_, size := utf8.DecodeRuneInString(yomi[start:])
		if !reachable[start] {
			start += size
			continue
		}
		found := false
		for _, trie := range sg.tries {
			for _, end := range trie.PrefixesAt(yomi, start) {
				if straddlesForced(start, end, forceRanges) {
					continue
				}
				add(start, end)
				reachable[end] = true
				found = true
			}
		}
		if !found {
			add(start, start+size)
			reachable[start+size] = true
		}
		start += size
	}

	for _, r := range forceRanges {
		if r.Start >= 0 && r.End <= len(yomi) && r.Start < r.End {
			add(r.Start, r.End)
		}
	}
	return result
}

// straddlesForced reports whether [start, end) crosses a forced-range
// boundary.
func straddlesForced(start, end int, ranges []types.Range) bool {
	for _, r := range ranges {
		if (start < r.Start && r.Start < end) || (start < r.End && r.End < end) {
			return true
		}
	}
	return false
}
