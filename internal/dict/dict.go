package dict

import (
	"fmt"
	"os"
	"sort"
)

// KanaKanji is the merged reading → surfaces dictionary. Immutable
// after load.
type KanaKanji struct {
	entries map[string][]string
}

// NewKanaKanji wraps an entries map. The map is owned by the
// dictionary afterwards.
func NewKanaKanji(entries map[string][]string) *KanaKanji {
	if entries == nil {
		entries = map[string][]string{}
	}
	return &KanaKanji{entries: entries}
}

// Get returns the surfaces for a reading, or nil.
func (d *KanaKanji) Get(yomi string) []string {
	return d.entries[yomi]
}

// Yomis returns every reading, sorted.
func (d *KanaKanji) Yomis() []string {
	yomis := make([]string, 0, len(d.entries))
	for y := range d.entries {
		yomis = append(yomis, y)
	}
	sort.Strings(yomis)
	return yomis
}

// Len returns the number of readings.
func (d *KanaKanji) Len() int { return len(d.entries) }

// Spec names one SKK source file.
type Spec struct {
	Path     string
	Encoding Encoding
}

// Load parses and merges the given SKK sources in order; surfaces from
// earlier sources come first in each candidate list.
func Load(specs []Spec) (*KanaKanji, error) {
	merged := make(map[string][]string)
	for _, spec := range specs {
		f, err := os.Open(spec.Path)
		if err != nil {
			return nil, fmt.Errorf("load dict: %w", err)
		}
		entries, err := ParseSKK(f, spec.Encoding)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("load dict %s: %w", spec.Path, err)
		}
		for yomi, surfaces := range entries {
			for _, s := range surfaces {
				merged[yomi] = appendUnique(merged[yomi], s)
			}
		}
	}
	return NewKanaKanji(merged), nil
}
