package graph

import (
	"sort"
	"strings"

	"github.com/mkanda/kkc/internal/lm"
	"github.com/mkanda/kkc/internal/userdata"
)

// Lattice holds every considered word over one reading, indexed by the
// byte offset the word ends at. Position 0 holds BOS; position
// len(yomi)+1 holds EOS. The predecessors of a node are exactly the
// list at its StartPos.
type Lattice struct {
	Yomi string

	graph map[int][]*WordNode

	userData *userdata.UserData
	unigram  *lm.Unigram
	bigram   *lm.Bigram
	skip     *lm.SkipBigram // nil when no skip-bigram model is loaded
}

// NodeList returns the nodes ending at endPos, or nil.
func (l *Lattice) NodeList(endPos int) []*WordNode {
	return l.graph[endPos]
}

// PrevNodes returns the candidate predecessors of n.
func (l *Lattice) PrevNodes(n *WordNode) []*WordNode {
	return l.graph[n.StartPos]
}

// EOSPos returns the lattice position of the EOS sentinel.
func (l *Lattice) EOSPos() int { return len(l.Yomi) + 1 }

// UserData exposes the learning store backing this lattice.
func (l *Lattice) UserData() *userdata.UserData { return l.userData }

// DefaultEdgeCost returns the bigram model's fallback edge cost.
func (l *Lattice) DefaultEdgeCost() float32 {
	return l.bigram.DefaultEdgeCost()
}

// nodeCost scores one node under an acquired user session: the learned
// cost wins, then the stored unigram score; words the models have
// never seen get the backoff cost, shaded so that surfaces shorter
// than their reading (kanji spellings from the dictionary) rank ahead
// of raw kana.
func (l *Lattice) nodeCost(n *WordNode, sess *userdata.Session) float32 {
	if cost, ok := sess.UnigramCost(n.Key()); ok {
		return cost
	}
	if n.HasWordID {
		return n.UnigramScore
	}
	if len(n.Surface) < len(n.Yomi) {
		return l.unigram.Cost(1)
	}
	return l.unigram.Cost(0)
}

// edgeCost scores the transition prev → n. known is false when the
// default edge cost had to stand in.
func (l *Lattice) edgeCost(prev, n *WordNode, sess *userdata.Session) (cost float32, known bool) {
	if cost, ok := sess.BigramCost(prev.Key(), n.Key()); ok {
		return cost, true
	}
	if prev.HasWordID && n.HasWordID {
		if cost, ok := l.bigram.EdgeCost(prev.WordID, n.WordID); ok {
			return cost, true
		}
	}
	return l.bigram.DefaultEdgeCost(), false
}

// skipCost scores the (w_{i-2}, n) skip pair: the learned count wins,
// then the skip-bigram model, then its default.
func (l *Lattice) skipCost(prev2, n *WordNode, sess *userdata.Session) float32 {
	if cost, ok := sess.SkipBigramCost(prev2.Key(), n.Key()); ok {
		return cost
	}
	if l.skip != nil {
		if prev2.HasWordID && n.HasWordID {
			if cost, ok := l.skip.SkipCost(prev2.WordID, n.WordID); ok {
				return cost
			}
		}
		return l.skip.DefaultSkipCost()
	}
	return lm.FallbackSkipCost
}

// NodeCost scores a node, taking the user lock for the single call.
// The resolver's DP uses the session-based variant instead; this one
// serves candidate collection after the lock is released.
func (l *Lattice) NodeCost(n *WordNode) float32 {
	sess := l.userData.Acquire()
	defer sess.Release()
	return l.nodeCost(n, sess)
}

// EdgeCost scores an edge, taking the user lock for the single call.
func (l *Lattice) EdgeCost(prev, n *WordNode) float32 {
	sess := l.userData.Acquire()
	defer sess.Release()
	cost, _ := l.edgeCost(prev, n, sess)
	return cost
}

// Dump renders the lattice for debugging, one position per line.
func (l *Lattice) Dump() string {
	ends := make([]int, 0, len(l.graph))
	for e := range l.graph {
		ends = append(ends, e)
	}
	sort.Ints(ends)
	var b strings.Builder
	for _, e := range ends {
		fmtNodes := make([]string, 0, len(l.graph[e]))
		for _, n := range l.graph[e] {
			fmtNodes = append(fmtNodes, n.Key())
		}
		b.WriteString(strings.Join(fmtNodes, " "))
		b.WriteByte('\n')
	}
	return b.String()
}
