// Package lm implements the packed on-disk language models: a unigram
// store mapping "surface/yomi" words to (id, score), and bigram /
// skip-bigram stores keyed by packed 3-byte ID pairs. Scores are costs:
// Laplace-smoothed negative log-likelihoods, so lower is better and the
// same scale is shared by the system models and the user-learning layer.
package lm

import "math"

// CalcCost converts an occurrence count into a cost on the shared
// scale: -ln((count+1) / (total+unique)). count = 0 still yields a
// finite value, which is what makes it usable as the unknown-word
// penalty.
func CalcCost(count, total, unique uint32) float32 {
	return float32(-math.Log(float64(count+1) / float64(total+unique)))
}
