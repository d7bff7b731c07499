package lm

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
)

// Key layout, per entry:
//
//	{word utf-8} 0xff {id: 3 bytes LE} {score: 4 bytes LE f32}
//
// The id is the builder's insertion ordinal and must fit in 24 bits so
// the bigram stores can pack ID pairs into 6 bytes.
const (
	TotalWordsKey  = "__TOTAL_WORDS__"
	UniqueWordsKey = "__UNIQUE_WORDS__"

	unigramSep = 0xff
	// MaxVocab is the hard vocabulary cap: 2^23 ids.
	MaxVocab = 1 << 23
)

// UnigramBuilder accumulates (word, score) entries and assigns each an
// id in insertion order.
type UnigramBuilder struct {
	keys [][]byte
	next int32
}

func NewUnigramBuilder() *UnigramBuilder {
	return &UnigramBuilder{}
}

// Add appends a word with its cost. Fails once the next id would reach
// MaxVocab.
func (b *UnigramBuilder) Add(word string, score float32) error {
	if b.next >= MaxVocab {
		return fmt.Errorf("unigram vocabulary exceeds %d words", MaxVocab)
	}
	key := make([]byte, 0, len(word)+8)
	key = append(key, word...)
	key = append(key, unigramSep)
	var tail [7]byte
	putU24(tail[:3], b.next)
	binary.LittleEndian.PutUint32(tail[3:], math.Float32bits(score))
	key = append(key, tail[:]...)
	b.keys = append(b.keys, key)
	b.next++
	return nil
}

// SetTotalWords records the corpus token total as a reserved entry.
func (b *UnigramBuilder) SetTotalWords(n uint32) error {
	return b.Add(TotalWordsKey, float32(n))
}

// SetUniqueWords records the vocabulary size as a reserved entry.
func (b *UnigramBuilder) SetUniqueWords(n uint32) error {
	return b.Add(UniqueWordsKey, float32(n))
}

// Save writes the model file.
func (b *UnigramBuilder) Save(path string) error {
	return newKeyBlock(b.keys).writeFile(path)
}

// Build assembles the in-memory model without touching disk.
func (b *UnigramBuilder) Build() (*Unigram, error) {
	return newUnigram(newKeyBlock(b.keys), "<memory>")
}

// Unigram is the resident unigram model.
type Unigram struct {
	block       *keyBlock
	totalWords  uint32
	uniqueWords uint32
}

// LoadUnigram reads a unigram model file. A missing TotalWords or
// UniqueWords scalar is fatal.
func LoadUnigram(path string) (*Unigram, error) {
	block, err := readKeyBlock(path)
	if err != nil {
		return nil, err
	}
	return newUnigram(block, path)
}

func newUnigram(block *keyBlock, name string) (*Unigram, error) {
	u := &Unigram{block: block}
	_, total, ok := u.Find(TotalWordsKey)
	if !ok {
		return nil, fmt.Errorf("%s: missing %s", name, TotalWordsKey)
	}
	_, unique, ok := u.Find(UniqueWordsKey)
	if !ok {
		return nil, fmt.Errorf("%s: missing %s", name, UniqueWordsKey)
	}
	u.totalWords = uint32(total)
	u.uniqueWords = uint32(unique)
	return u, nil
}

// NumKeys returns the number of entries, reserved keys included.
func (u *Unigram) NumKeys() int { return u.block.len() }

// TotalWords returns the corpus token total scalar.
func (u *Unigram) TotalWords() uint32 { return u.totalWords }

// UniqueWords returns the vocabulary size scalar.
func (u *Unigram) UniqueWords() uint32 { return u.uniqueWords }

// Find looks up a word and returns its (id, score). A key with a
// malformed trailing payload is reported as absent.
func (u *Unigram) Find(word string) (id int32, score float32, ok bool) {
	prefix := make([]byte, 0, len(word)+1)
	prefix = append(prefix, word...)
	prefix = append(prefix, unigramSep)
	key := u.block.findPrefix(prefix)
	if key == nil {
		return 0, 0, false
	}
	tail := key[len(prefix):]
	if len(tail) != 7 {
		slog.Warn("malformed unigram entry", "word", word, "tail_len", len(tail))
		return 0, 0, false
	}
	id = getU24(tail[:3])
	score = math.Float32frombits(binary.LittleEndian.Uint32(tail[3:]))
	return id, score, true
}

// Cost returns the backoff cost for a word seen count times, using the
// model's scalars.
func (u *Unigram) Cost(count uint32) float32 {
	return CalcCost(count, u.totalWords, u.uniqueWords)
}

// IDScore pairs a word id with its stored score.
type IDScore struct {
	ID    int32
	Score float32
}

// AsMap walks the whole store. Used by the model-build pipeline to
// invert word ids; not meant for the conversion path.
func (u *Unigram) AsMap() map[string]IDScore {
	m := make(map[string]IDScore, u.block.len())
	u.block.each(func(key []byte) {
		for i, b := range key {
			if b == unigramSep {
				tail := key[i+1:]
				if len(tail) == 7 {
					m[string(key[:i])] = IDScore{
						ID:    getU24(tail[:3]),
						Score: math.Float32frombits(binary.LittleEndian.Uint32(tail[3:])),
					}
				}
				break
			}
		}
	})
	return m
}
