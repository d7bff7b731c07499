// Package userdata implements the adaptive learning layer: unigram /
// bigram / skip-bigram counts over accepted candidates, the learned
// reading dictionary, and their LevelDB persistence. All counts share
// the language-model cost scale, so learned words win against the
// static model as their counts grow.
package userdata

import (
	"github.com/mkanda/kkc/internal/lm"
	"github.com/mkanda/kkc/internal/numeric"
	"github.com/mkanda/kkc/internal/types"
)

// ngramStats is one count layer. Keys are "surface/yomi" for unigrams
// and tab-joined key pairs for the bigram layers; counter expressions
// are normalized before both recording and lookup so "3匹/3びき"
// contributes to "<NUM>匹/<NUM>ひき".
type ngramStats struct {
	uniqueWords uint32
	totalWords  uint32
	wordCount   map[string]uint32
}

func newNgramStats() ngramStats {
	return ngramStats{wordCount: make(map[string]uint32)}
}

// cost computes the learned cost for a key, trying the counter-
// normalized key when the raw one has no count. Tuned to come out
// cheaper than the system LM scale.
func (s *ngramStats) cost(key string) (float32, bool) {
	if count, ok := s.wordCount[key]; ok {
		return lm.CalcCost(count, s.uniqueWords, s.totalWords), true
	}
	nk, ok := numeric.NormalizeCounterKey(key)
	if !ok {
		return 0, false
	}
	count, ok := s.wordCount[nk]
	if !ok {
		return 0, false
	}
	return lm.CalcCost(count, s.uniqueWords, s.totalWords), true
}

// pairCost is cost for a tab-joined key pair, with the same
// normalized fallback.
func (s *ngramStats) pairCost(key1, key2 string) (float32, bool) {
	if count, ok := s.wordCount[key1+"\t"+key2]; ok {
		return lm.CalcCost(count, s.uniqueWords, s.totalWords), true
	}
	n1 := numeric.NormalizeCounterKeyOrSelf(key1)
	n2 := numeric.NormalizeCounterKeyOrSelf(key2)
	if n1 == key1 && n2 == key2 {
		return 0, false
	}
	count, ok := s.wordCount[n1+"\t"+n2]
	if !ok {
		return 0, false
	}
	return lm.CalcCost(count, s.uniqueWords, s.totalWords), true
}

// bump increments a key, maintaining the scalars. Returns the new
// count.
func (s *ngramStats) bump(key string) uint32 {
	if _, ok := s.wordCount[key]; !ok {
		s.uniqueWords++
	}
	s.wordCount[key]++
	s.totalWords++
	return s.wordCount[key]
}

// restore seeds a count during load without touching persistence.
func (s *ngramStats) restore(key string, count uint32) {
	if _, ok := s.wordCount[key]; !ok {
		s.uniqueWords++
	}
	s.totalWords += count - s.wordCount[key]
	s.wordCount[key] = count
}

// recordUnigrams counts each accepted candidate.
func (s *ngramStats) recordUnigrams(cands []types.Candidate, touched func(key string, count uint32)) {
	for _, c := range cands {
		key := numeric.NormalizeCounterKeyOrSelf(c.Key())
		touched(key, s.bump(key))
	}
}

// recordPairs counts (i-gap, i) key pairs over the accepted sequence.
func (s *ngramStats) recordPairs(cands []types.Candidate, gap int, touched func(key string, count uint32)) {
	if len(cands) <= gap {
		return
	}
	for i := gap; i < len(cands); i++ {
		k1 := numeric.NormalizeCounterKeyOrSelf(cands[i-gap].Key())
		k2 := numeric.NormalizeCounterKeyOrSelf(cands[i].Key())
		key := k1 + "\t" + k2
		touched(key, s.bump(key))
	}
}
