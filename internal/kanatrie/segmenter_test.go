package kanatrie

import (
	"reflect"
	"testing"

	"github.com/mkanda/kkc/internal/types"
)

func mustBuild(t *testing.T, yomis ...string) *Trie {
	t.Helper()
	tr, err := Build(yomis)
	if err != nil {
		t.Fatalf("Build(%v): %v", yomis, err)
	}
	return tr
}

func TestTrie_PrefixesAt(t *testing.T) {
	tr := mustBuild(t, "わたし", "わた", "し")

	ends := tr.PrefixesAt("わたし", 0)
	if !reflect.DeepEqual(ends, []int{6, 9}) {
		t.Errorf("PrefixesAt(0) = %v, want [6 9]", ends)
	}
	ends = tr.PrefixesAt("わたし", 6)
	if !reflect.DeepEqual(ends, []int{9}) {
		t.Errorf("PrefixesAt(6) = %v, want [9]", ends)
	}
	if got := tr.PrefixesAt("わたし", 3); got != nil {
		t.Errorf("PrefixesAt(3) = %v, want nil", got)
	}
	if got := tr.PrefixesAt("わたし", 9); got != nil {
		t.Errorf("PrefixesAt past end = %v, want nil", got)
	}
}

func TestTrie_Empty(t *testing.T) {
	tr, err := Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := tr.PrefixesAt("わたし", 0); got != nil {
		t.Errorf("empty trie matched: %v", got)
	}
}

func TestSegmenter_Build(t *testing.T) {
	sg := NewSegmenter(mustBuild(t, "わたし", "わた", "し"))

	got := sg.Build("わたし", nil)
	want := SegmentationResult{
		6: {"わた"},
		9: {"わたし", "し"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build = %v, want %v", got, want)
	}
	if ends := got.Ends(); !reflect.DeepEqual(ends, []int{6, 9}) {
		t.Errorf("Ends = %v", ends)
	}
}

func TestSegmenter_FallbackSingleChar(t *testing.T) {
	// Unknown readings fall back to per-character segments so the
	// lattice stays connected.
	sg := NewSegmenter(mustBuild(t))
	got := sg.Build("すし", nil)
	want := SegmentationResult{
		3: {"す"},
		6: {"し"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build = %v, want %v", got, want)
	}
}

func TestSegmenter_MultipleTries(t *testing.T) {
	// User-learned readings extend the system trie; duplicates fold.
	user := NewMutableTrie()
	user.Add("わたし")
	user.Add("わたしは")
	sg := NewSegmenter(mustBuild(t, "わたし", "わた", "し", "は"), user)

	got := sg.Build("わたしは", nil)
	if !contains(got[12], "わたしは") {
		t.Errorf("user reading missing from %v", got[12])
	}
	if n := count(got[9], "わたし"); n != 1 {
		t.Errorf("duplicate segment emitted %d times", n)
	}
}

func TestSegmenter_ForceRanges(t *testing.T) {
	sg := NewSegmenter(mustBuild(t, "きたかな", "きた", "かな"))

	// Force a boundary after きた: きたかな straddles it and must go.
	got := sg.Build("きたかな", []types.Range{{Start: 0, End: 6}})
	if contains(got[12], "きたかな") {
		t.Errorf("straddling segment survived: %v", got[12])
	}
	if !contains(got[6], "きた") {
		t.Errorf("forced range missing: %v", got[6])
	}
	if !contains(got[12], "かな") {
		t.Errorf("in-range segment should survive: %v", got[12])
	}

	// A forced range is emitted even when the trie doesn't know it.
	got = sg.Build("きたかな", []types.Range{{Start: 0, End: 9}})
	if !contains(got[9], "きたか") {
		t.Errorf("forced unknown segment missing: %v", got[9])
	}
}

func TestMutableTrie_RebuildOnAdd(t *testing.T) {
	m := NewMutableTrie()
	if got := m.PrefixesAt("わたし", 0); got != nil {
		t.Fatalf("empty mutable trie matched: %v", got)
	}
	m.Add("わた")
	if got := m.PrefixesAt("わたし", 0); !reflect.DeepEqual(got, []int{6}) {
		t.Errorf("after Add = %v, want [6]", got)
	}
	m.Add("わたし")
	if got := m.PrefixesAt("わたし", 0); !reflect.DeepEqual(got, []int{6, 9}) {
		t.Errorf("after second Add = %v, want [6 9]", got)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func count(list []string, s string) int {
	n := 0
	for _, v := range list {
		if v == s {
			n++
		}
	}
	return n
}
