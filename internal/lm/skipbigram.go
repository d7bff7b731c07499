package lm

import (
	"encoding/binary"
	"log/slog"
	"strconv"

	"github.com/x448/float16"
)

// Skip-bigram entries score the (w_{i-2}, w_i) pair; the key layout is
// identical to the bigram store.
const (
	DefaultSkipCostKey = "__DEFAULT_SKIP_COST__"

	// FallbackSkipCost is used when a model predates the reserved
	// default-cost key.
	FallbackSkipCost = 10.0
)

// SkipBigramBuilder accumulates (id1, id2, score) skip pairs.
type SkipBigramBuilder struct {
	keys [][]byte
}

func NewSkipBigramBuilder() *SkipBigramBuilder {
	return &SkipBigramBuilder{}
}

// Add appends one skip pair. Both ids must be below MaxVocab.
func (b *SkipBigramBuilder) Add(id1, id2 int32, score float32) error {
	key, err := packPairKey(id1, id2)
	if err != nil {
		return err
	}
	var tail [2]byte
	binary.LittleEndian.PutUint16(tail[:], float16.Fromfloat32(score).Bits())
	b.keys = append(b.keys, append(key, tail[:]...))
	return nil
}

// SetDefaultSkipCost records the fallback score for pairs not in the
// model.
func (b *SkipBigramBuilder) SetDefaultSkipCost(score float32) *SkipBigramBuilder {
	key := DefaultSkipCostKey + "\t" + strconv.FormatFloat(float64(score), 'g', -1, 32)
	b.keys = append(b.keys, []byte(key))
	return b
}

// Save writes the model file.
func (b *SkipBigramBuilder) Save(path string) error {
	return newKeyBlock(b.keys).writeFile(path)
}

// Build assembles the in-memory model.
func (b *SkipBigramBuilder) Build() (*SkipBigram, error) {
	return newSkipBigram(newKeyBlock(b.keys)), nil
}

// SkipBigram is the resident skip-bigram model.
type SkipBigram struct {
	block           *keyBlock
	defaultSkipCost float32
}

// LoadSkipBigram reads a skip-bigram model file. Older models without
// the reserved default-cost key load with FallbackSkipCost.
func LoadSkipBigram(path string) (*SkipBigram, error) {
	block, err := readKeyBlock(path)
	if err != nil {
		return nil, err
	}
	return newSkipBigram(block), nil
}

func newSkipBigram(block *keyBlock) *SkipBigram {
	def, ok := readDefaultCost(block, DefaultSkipCostKey)
	if !ok {
		slog.Info("skip-bigram model has no default cost, using fallback",
			"fallback", FallbackSkipCost)
		def = FallbackSkipCost
	}
	return &SkipBigram{block: block, defaultSkipCost: def}
}

// NumKeys returns the number of entries.
func (g *SkipBigram) NumKeys() int { return g.block.len() }

// DefaultSkipCost returns the fallback cost for unknown skip pairs.
func (g *SkipBigram) DefaultSkipCost() float32 { return g.defaultSkipCost }

// SkipCost looks up the cost of the (w_{i-2}, w_i) pair.
func (g *SkipBigram) SkipCost(id1, id2 int32) (float32, bool) {
	return pairLookup(g.block, id1, id2)
}
