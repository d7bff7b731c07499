// Package graph builds the conversion lattice from a segmented reading
// and resolves it with a k-best Viterbi search, then re-ranks the
// resulting paths on their global features.
package graph

// Reserved word keys for the sentinel nodes. When the unigram model
// carries an entry for one, the node takes its id and its score is
// forced to zero; without an entry the node is costed like any other
// word the model lacks.
const (
	BOSToken = "__BOS__"
	EOSToken = "__EOS__"
	BOSKey   = "__BOS__/__BOS__"
	EOSKey   = "__EOS__/__EOS__"
)

// NumberSentinel is the surface of the synthetic node emitted for
// digit-run segments. Candidate collection replaces it with the
// rendered numeric alternatives; it never reaches the user.
const NumberSentinel = "(*(*(NUMBER-KANSUJI"

// WordNode is one lattice vertex: a surface covering a slice of the
// reading, starting at a byte offset.
type WordNode struct {
	StartPos int
	Surface  string
	Yomi     string

	// WordID and UnigramScore are set when the unigram LM knows the
	// word (HasWordID). The score is the stored unigram cost.
	WordID       int32
	UnigramScore float32
	HasWordID    bool

	// AutoGenerated marks kana fallbacks and numeric expansions.
	AutoGenerated bool

	key string // cached "surface/yomi"
}

// NewWordNode builds a node without an LM entry.
func NewWordNode(startPos int, surface, yomi string, auto bool) *WordNode {
	return &WordNode{
		StartPos:      startPos,
		Surface:       surface,
		Yomi:          yomi,
		AutoGenerated: auto,
		key:           surface + "/" + yomi,
	}
}

// NewScoredWordNode builds a node carrying its unigram (id, score).
func NewScoredWordNode(startPos int, surface, yomi string, id int32, score float32) *WordNode {
	n := NewWordNode(startPos, surface, yomi, false)
	n.WordID = id
	n.UnigramScore = score
	n.HasWordID = true
	return n
}

// Key returns the cached "surface/yomi" LM key.
func (n *WordNode) Key() string { return n.key }

// IsBOS reports whether n is the beginning-of-sentence sentinel.
func (n *WordNode) IsBOS() bool { return n.Surface == BOSToken && n.Yomi == BOSToken }

// IsEOS reports whether n is the end-of-sentence sentinel.
func (n *WordNode) IsEOS() bool { return n.Surface == EOSToken && n.Yomi == EOSToken }

func newBOS() *WordNode {
	n := NewWordNode(0, BOSToken, BOSToken, true)
	return n
}

func newEOS(startPos int) *WordNode {
	n := NewWordNode(startPos, EOSToken, EOSToken, true)
	return n
}
