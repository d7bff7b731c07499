package graph

import (
	"strconv"

	"github.com/mkanda/kkc/internal/dict"
	"github.com/mkanda/kkc/internal/kana"
	"github.com/mkanda/kkc/internal/kanatrie"
	"github.com/mkanda/kkc/internal/lm"
	"github.com/mkanda/kkc/internal/numeric"
	"github.com/mkanda/kkc/internal/userdata"
)

// Builder turns a segmented reading into a Lattice, attaching unigram
// ids and scores as it goes.
type Builder struct {
	systemDict     *dict.KanaKanji
	singleTermDict *dict.KanaKanji
	userData       *userdata.UserData
	unigram        *lm.Unigram
	bigram         *lm.Bigram
	skip           *lm.SkipBigram
}

// NewBuilder wires a Builder. skip may be nil.
func NewBuilder(systemDict, singleTermDict *dict.KanaKanji, ud *userdata.UserData,
	unigram *lm.Unigram, bigram *lm.Bigram, skip *lm.SkipBigram) *Builder {
	return &Builder{
		systemDict:     systemDict,
		singleTermDict: singleTermDict,
		userData:       ud,
		unigram:        unigram,
		bigram:         bigram,
		skip:           skip,
	}
}

// findWord looks up "surface/yomi" in the unigram LM, falling back to
// the <NUM>-normalized key for digit-prefixed words. Bare numbers are
// deliberately not normalized.
func (b *Builder) findWord(surface, yomi string) (int32, float32, bool) {
	key := surface + "/" + yomi
	if id, score, ok := b.unigram.Find(key); ok {
		return id, score, true
	}
	if nk, ok := numeric.NormalizeDigitKey(key); ok {
		return b.unigram.Find(nk)
	}
	return 0, 0, false
}

func (b *Builder) newNode(startPos int, surface, yomi string) *WordNode {
	if id, score, ok := b.findWord(surface, yomi); ok {
		return NewScoredWordNode(startPos, surface, yomi, id, score)
	}
	return NewWordNode(startPos, surface, yomi, false)
}

// Construct builds the lattice for yomi from its segmentation.
func (b *Builder) Construct(yomi string, seg kanatrie.SegmentationResult) *Lattice {
	graph := make(map[int][]*WordNode)

	bos := newBOS()
	if id, _, ok := b.unigram.Find(BOSKey); ok {
		bos.WordID, bos.UnigramScore, bos.HasWordID = id, 0, true
	}
	graph[0] = []*WordNode{bos}

	eos := newEOS(len(yomi))
	if id, _, ok := b.unigram.Find(EOSKey); ok {
		eos.WordID, eos.UnigramScore, eos.HasWordID = id, 0, true
	}
	graph[len(yomi)+1] = []*WordNode{eos}

	for _, endPos := range seg.Ends() {
		for _, segment := range seg[endPos] {
			startPos := endPos - len(segment)
			nodes := graph[endPos]
			seen := make(map[string]bool)

			// System dictionary candidates.
			for _, surface := range b.systemDict.Get(segment) {
				nodes = append(nodes, b.newNode(startPos, surface, segment))
				seen[surface] = true
			}
			// Learned candidates, minus what the system dict already gave.
			for _, surface := range b.userData.DictSurfaces(segment) {
				if seen[surface] {
					continue
				}
				nodes = append(nodes, b.newNode(startPos, surface, segment))
				seen[surface] = true
			}
			// The reading itself and its katakana form always convert.
			for _, surface := range []string{segment, kana.HiraToKata(segment)} {
				if seen[surface] {
					continue
				}
				nodes = append(nodes, NewWordNode(startPos, surface, segment, true))
				seen[surface] = true
			}
			// Digit runs get the numeric sentinel; rendering into
			// arabic/full-width/kanji alternatives happens at
			// candidate collection.
			if leadingDigits(segment) > 0 {
				nodes = append(nodes, NewWordNode(startPos, NumberSentinel, segment, true))
			}
			nodes = b.appendMixedNumeric(nodes, startPos, segment, seen)

			// Whole-reading segments also consult the single-term
			// dictionary (emoji and symbol entries).
			if segment == yomi {
				for _, surface := range b.singleTermDict.Get(yomi) {
					nodes = append(nodes, b.newNode(startPos, surface, segment))
				}
			}
			graph[endPos] = nodes
		}
	}

	return &Lattice{
		Yomi:     yomi,
		graph:    graph,
		userData: b.userData,
		unigram:  b.unigram,
		bigram:   b.bigram,
		skip:     b.skip,
	}
}

// appendMixedNumeric expands segments like "90ぎょう": the kana tail is
// converted through the dictionary and recombined with the digit run
// and its kanji-numeral rendering. LM lookup goes through the <NUM>
// key either way.
func (b *Builder) appendMixedNumeric(nodes []*WordNode, startPos int, segment string, seen map[string]bool) []*WordNode {
	digitEnd := leadingDigits(segment)
	if digitEnd == 0 || digitEnd == len(segment) {
		return nodes
	}
	numStr := segment[:digitEnd]
	kanaPart := segment[digitEnd:]

	surfaces := b.systemDict.Get(kanaPart)
	for _, surface := range surfaces {
		compound := numStr + surface
		if seen[compound] {
			continue
		}
		nodes = append(nodes, b.newNode(startPos, compound, segment))
		seen[compound] = true
	}

	n, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return nodes
	}
	kanjiNum := numeric.IntToKanji(n)
	for _, surface := range surfaces {
		kansuji := kanjiNum + surface
		if seen[kansuji] {
			continue
		}
		nodes = append(nodes, b.newNode(startPos, kansuji, segment))
		seen[kansuji] = true
	}
	// The kanji numeral with the raw kana tail (九十ぎょう).
	kansujiKana := kanjiNum + kanaPart
	if !seen[kansujiKana] {
		nodes = append(nodes, NewWordNode(startPos, kansujiKana, segment, true))
		seen[kansujiKana] = true
	}
	return nodes
}

func leadingDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}
