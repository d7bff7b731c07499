package lm

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/x448/float16"
)

// Key layout, per entry:
//
//	{word1 id: 3 bytes LE} {word2 id: 3 bytes LE} {score: 2 bytes LE f16}
//
// IDs come from the unigram store, which is what keeps these keys at a
// fixed 8 bytes. The default edge cost lives under a reserved ASCII key
// so the whole model is a single key block.
const (
	DefaultEdgeCostKey = "__DEFAULT_EDGE_COST__"

	pairKeyLen = 8
)

// BigramBuilder accumulates (id1, id2, score) edges.
type BigramBuilder struct {
	keys       [][]byte
	hasDefault bool
}

func NewBigramBuilder() *BigramBuilder {
	return &BigramBuilder{}
}

// Add appends one edge. Both ids must be below MaxVocab.
func (b *BigramBuilder) Add(id1, id2 int32, score float32) error {
	key, err := packPairKey(id1, id2)
	if err != nil {
		return err
	}
	var tail [2]byte
	binary.LittleEndian.PutUint16(tail[:], float16.Fromfloat32(score).Bits())
	b.keys = append(b.keys, append(key, tail[:]...))
	return nil
}

// SetDefaultEdgeCost records the fallback score returned for pairs not
// in the model.
func (b *BigramBuilder) SetDefaultEdgeCost(score float32) *BigramBuilder {
	key := DefaultEdgeCostKey + "\t" + strconv.FormatFloat(float64(score), 'g', -1, 32)
	b.keys = append(b.keys, []byte(key))
	b.hasDefault = true
	return b
}

// Save writes the model file.
func (b *BigramBuilder) Save(path string) error {
	return newKeyBlock(b.keys).writeFile(path)
}

// Build assembles the in-memory model. The default edge cost must have
// been set.
func (b *BigramBuilder) Build() (*Bigram, error) {
	block := newKeyBlock(b.keys)
	def, ok := readDefaultCost(block, DefaultEdgeCostKey)
	if !ok {
		return nil, fmt.Errorf("bigram model: missing %s", DefaultEdgeCostKey)
	}
	return &Bigram{block: block, defaultEdgeCost: def}, nil
}

// Bigram is the resident word-bigram model.
type Bigram struct {
	block           *keyBlock
	defaultEdgeCost float32
}

// LoadBigram reads a bigram model file. A missing default edge cost is
// fatal.
func LoadBigram(path string) (*Bigram, error) {
	block, err := readKeyBlock(path)
	if err != nil {
		return nil, err
	}
	def, ok := readDefaultCost(block, DefaultEdgeCostKey)
	if !ok {
		return nil, fmt.Errorf("%s: missing %s", path, DefaultEdgeCostKey)
	}
	return &Bigram{block: block, defaultEdgeCost: def}, nil
}

// NumKeys returns the number of entries, the reserved key included.
func (g *Bigram) NumKeys() int { return g.block.len() }

// DefaultEdgeCost returns the fallback cost for unknown pairs.
func (g *Bigram) DefaultEdgeCost() float32 { return g.defaultEdgeCost }

// EdgeCost looks up the cost of the (id1, id2) edge. Malformed entries
// are reported as absent.
func (g *Bigram) EdgeCost(id1, id2 int32) (float32, bool) {
	return pairLookup(g.block, id1, id2)
}

// AsMap walks all edges. Build-time use only.
func (g *Bigram) AsMap() map[[2]int32]float32 {
	return pairMap(g.block)
}

func packPairKey(id1, id2 int32) ([]byte, error) {
	if id1 < 0 || id1 >= MaxVocab || id2 < 0 || id2 >= MaxVocab {
		return nil, fmt.Errorf("word id out of 24-bit range: (%d, %d)", id1, id2)
	}
	key := make([]byte, 6, pairKeyLen)
	putU24(key[:3], id1)
	putU24(key[3:6], id2)
	return key, nil
}

func pairLookup(block *keyBlock, id1, id2 int32) (float32, bool) {
	prefix, err := packPairKey(id1, id2)
	if err != nil {
		return 0, false
	}
	key := block.findPrefix(prefix)
	if key == nil {
		return 0, false
	}
	if len(key) != pairKeyLen {
		slog.Warn("malformed packed pair entry", "len", len(key))
		return 0, false
	}
	return float16.Frombits(binary.LittleEndian.Uint16(key[6:])).Float32(), true
}

func pairMap(block *keyBlock) map[[2]int32]float32 {
	m := make(map[[2]int32]float32)
	block.each(func(key []byte) {
		if len(key) != pairKeyLen {
			return // reserved ASCII key
		}
		m[[2]int32{getU24(key[:3]), getU24(key[3:6])}] =
			float16.Frombits(binary.LittleEndian.Uint16(key[6:])).Float32()
	})
	return m
}

func readDefaultCost(block *keyBlock, reservedKey string) (float32, bool) {
	key := block.findPrefix([]byte(reservedKey + "\t"))
	if key == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(key[len(reservedKey)+1:]), 32)
	if err != nil {
		return 0, false
	}
	return float32(v), true
}
