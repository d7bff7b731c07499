package graph

import "sort"

// RerankWeights is the linear re-ranker over path features. The
// unigram term is the scale anchor and carries an implicit weight of
// 1.0. The length term penalizes over-segmentation; the unknown-bigram
// term discourages paths that leaned on the default edge cost.
type RerankWeights struct {
	Bigram        float32 `json:"bigram_weight"`
	Length        float32 `json:"length_weight"`
	UnknownBigram float32 `json:"unknown_bigram_weight"`
	SkipBigram    float32 `json:"skip_bigram_weight"`
}

// DefaultRerankWeights returns the tuned defaults.
func DefaultRerankWeights() RerankWeights {
	return RerankWeights{
		Bigram:        1.0,
		Length:        2.0,
		UnknownBigram: 1.0,
		SkipBigram:    0.0,
	}
}

// IsDefault reports whether w equals the defaults.
func (w RerankWeights) IsDefault() bool {
	return w == DefaultRerankWeights()
}

// Rerank recomputes each path's RerankCost from its features and
// sorts the slice ascending. NaN scores compare equal.
func (w RerankWeights) Rerank(paths []KBestPath) {
	for i := range paths {
		p := &paths[i]
		p.RerankCost = p.UnigramCost +
			w.Bigram*p.BigramCost +
			w.UnknownBigram*p.UnknownBigramCost +
			w.Length*float32(p.TokenCount) +
			w.SkipBigram*p.SkipBigramCost
	}
	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].RerankCost < paths[j].RerankCost
	})
}
