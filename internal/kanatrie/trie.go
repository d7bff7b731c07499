// Package kanatrie provides common-prefix search over reading strings
// and the segmenter that turns a reading into candidate segments.
//
// The static trie is a darts-clone double array built once from the
// dictionary readings; the mutable trie wraps one for the user-learned
// readings and rebuilds lazily as they grow.
package kanatrie

import (
	"sort"
	"sync"

	"github.com/ikawaha/dartsclone"
)

// Searcher enumerates the byte offsets at which known readings that
// start at `start` end.
type Searcher interface {
	PrefixesAt(s string, start int) []int
}

// Trie is an immutable common-prefix-search trie over readings.
type Trie struct {
	da dartsclone.Trie
}

// Build constructs a Trie from the given readings. Duplicates are
// folded; an empty list yields a trie that matches nothing.
func Build(yomis []string) (*Trie, error) {
	uniq := make(map[string]struct{}, len(yomis))
	for _, y := range yomis {
		if y != "" {
			uniq[y] = struct{}{}
		}
	}
	if len(uniq) == 0 {
		return &Trie{}, nil
	}
	keys := make([]string, 0, len(uniq))
	for y := range uniq {
		keys = append(keys, y)
	}
	sort.Strings(keys)
	da, err := dartsclone.BuildTRIE(keys, nil, nil)
	if err != nil {
		return nil, err
	}
	return &Trie{da: da}, nil
}

// PrefixesAt returns the end offsets of every key that is a prefix of
// s[start:], offsets relative to s.
func (t *Trie) PrefixesAt(s string, start int) []int {
	if t.da == nil || start >= len(s) {
		return nil
	}
	matches, err := t.da.CommonPrefixSearch(s[start:], 0)
	if err != nil || len(matches) == 0 {
		return nil
	}
	ends := make([]int, 0, len(matches))
	for _, m := range matches {
		ends = append(ends, start+m[1])
	}
	return ends
}

// MutableTrie is a Trie that accepts inserts; lookups rebuild the
// underlying double array when entries were added since the last
// search. Safe for concurrent use.
type MutableTrie struct {
	mu    sync.Mutex
	yomis map[string]struct{}
	built *Trie
	dirty bool
}

// NewMutableTrie returns an empty mutable trie.
func NewMutableTrie() *MutableTrie {
	return &MutableTrie{yomis: make(map[string]struct{})}
}

// Add inserts a reading.
func (m *MutableTrie) Add(yomi string) {
	if yomi == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.yomis[yomi]; !ok {
		m.yomis[yomi] = struct{}{}
		m.dirty = true
	}
}

// Len returns the number of stored readings.
func (m *MutableTrie) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.yomis)
}

// PrefixesAt implements Searcher, rebuilding first if needed.
func (m *MutableTrie) PrefixesAt(s string, start int) []int {
	m.mu.Lock()
	if m.dirty || m.built == nil {
		keys := make([]string, 0, len(m.yomis))
		for y := range m.yomis {
			keys = append(keys, y)
		}
		t, err := Build(keys)
		if err == nil {
			m.built = t
			m.dirty = false
		}
	}
	t := m.built
	m.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.PrefixesAt(s, start)
}
