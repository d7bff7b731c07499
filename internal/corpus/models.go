package corpus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mkanda/kkc/internal/graph"
	"github.com/mkanda/kkc/internal/lm"
)

// DefaultUnigramThreshold drops words the corpus barely attests.
const DefaultUnigramThreshold = 16

// BuildUnigramModel converts a frequency table into unigram.model.
// Words are inserted in sorted order, which is what makes the assigned
// ids reproducible for identical input data. The BOS/EOS reserved
// words are always present with score 0.
func BuildUnigramModel(counts map[string]uint32, dst string, threshold uint32) error {
	kept := make(map[string]uint32)
	var total uint32
	for word, cnt := range counts {
		if cnt > threshold {
			kept[word] = cnt
			total += cnt
		}
	}
	if len(kept)+2 >= lm.MaxVocab {
		return fmt.Errorf("vocabulary too large for 24-bit ids: %d words", len(kept))
	}
	unique := uint32(len(kept))

	words := make([]string, 0, len(kept))
	for w := range kept {
		words = append(words, w)
	}
	sort.Strings(words)

	b := lm.NewUnigramBuilder()
	if err := b.Add(graph.BOSKey, 0); err != nil {
		return err
	}
	if err := b.Add(graph.EOSKey, 0); err != nil {
		return err
	}
	for _, w := range words {
		if err := b.Add(w, lm.CalcCost(kept[w], total, unique)); err != nil {
			return err
		}
	}
	if err := b.SetTotalWords(total); err != nil {
		return err
	}
	if err := b.SetUniqueWords(unique); err != nil {
		return err
	}
	return b.Save(dst)
}

// countPairs scans the tokenized corpus and counts id pairs at the
// given distance (1 = adjacent bigram, 2 = skip-bigram). Each line is
// framed with the BOS/EOS ids; tokens missing from the vocabulary
// break the chain rather than bridging over it.
func countPairs(corpusDirs []string, ids map[string]int32, gap int) (map[[2]int32]uint32, error) {
	bosID, hasBOS := ids[graph.BOSKey]
	eosID, hasEOS := ids[graph.EOSKey]

	pairs := make(map[[2]int32]uint32)
	err := eachLine(corpusDirs, func(line string) error {
		if line == "" {
			return nil
		}
		seq := make([]int32, 0, 16)
		if hasBOS {
			seq = append(seq, bosID)
		}
		valid := make([]bool, 0, 16)
		for range seq {
			valid = append(valid, true)
		}
		for _, word := range strings.Split(line, " ") {
			if word == "" {
				continue
			}
			id, ok := ids[normalizeNumToken(word)]
			seq = append(seq, id)
			valid = append(valid, ok)
		}
		if hasEOS {
			seq = append(seq, eosID)
			valid = append(valid, true)
		}
		for i := gap; i < len(seq); i++ {
			if valid[i-gap] && valid[i] {
				pairs[[2]int32{seq[i-gap], seq[i]}]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

func unigramIDs(unigramPath string) (map[string]int32, error) {
	unigram, err := lm.LoadUnigram(unigramPath)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int32, unigram.NumKeys())
	for word, entry := range unigram.AsMap() {
		ids[word] = entry.ID
	}
	return ids, nil
}

// BuildBigramModel counts adjacent pairs over the tokenized corpus and
// writes bigram.model with CalcCost-scaled scores and a default edge
// cost derived from the same scalars.
func BuildBigramModel(corpusDirs []string, unigramPath, dst string, threshold uint32) error {
	ids, err := unigramIDs(unigramPath)
	if err != nil {
		return err
	}
	pairs, err := countPairs(corpusDirs, ids, 1)
	if err != nil {
		return err
	}
	total, unique := pairScalars(pairs, threshold)

	b := lm.NewBigramBuilder()
	b.SetDefaultEdgeCost(lm.CalcCost(0, total, unique))
	for pair, cnt := range pairs {
		if cnt <= threshold {
			continue
		}
		if err := b.Add(pair[0], pair[1], lm.CalcCost(cnt, total, unique)); err != nil {
			return err
		}
	}
	return b.Save(dst)
}

// BuildSkipBigramModel is BuildBigramModel at distance 2, writing
// skip_bigram.model.
func BuildSkipBigramModel(corpusDirs []string, unigramPath, dst string, threshold uint32) error {
	ids, err := unigramIDs(unigramPath)
	if err != nil {
		return err
	}
	pairs, err := countPairs(corpusDirs, ids, 2)
	if err != nil {
		return err
	}
	total, unique := pairScalars(pairs, threshold)

	b := lm.NewSkipBigramBuilder()
	b.SetDefaultSkipCost(lm.CalcCost(0, total, unique))
	for pair, cnt := range pairs {
		if cnt <= threshold {
			continue
		}
		if err := b.Add(pair[0], pair[1], lm.CalcCost(cnt, total, unique)); err != nil {
			return err
		}
	}
	return b.Save(dst)
}

func pairScalars(pairs map[[2]int32]uint32, threshold uint32) (total, unique uint32) {
	for _, cnt := range pairs {
		if cnt > threshold {
			total += cnt
			unique++
		}
	}
	if total == 0 {
		// Degenerate corpus: keep the cost formula finite.
		total, unique = 1, 1
	}
	return total, unique
}
