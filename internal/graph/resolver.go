package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/mkanda/kkc/internal/kana"
	"github.com/mkanda/kkc/internal/numeric"
	"github.com/mkanda/kkc/internal/types"
)

// Conversion failures. Both indicate a malformed lattice; callers may
// fall back to presenting the raw reading.
var (
	ErrNoPathFound           = errors.New("no conversion path found")
	ErrNoPathFromPredecessor = errors.New("no valid predecessor for lattice node")
)

// Candidate-collection heuristics. Tuning knobs, not contracts: when a
// clause offers fewer than breakdownThreshold surfaces, shorter nodes
// are recombined into compound candidates, bounded in recursion depth
// and per-level fanout.
const (
	breakdownThreshold = 5
	breakdownMaxDepth  = 4
	breakdownFanout    = 3
)

// kBestEntry is one of the top-k partial paths kept per node. Feature
// sums ride along so a finished path reports its cost breakdown
// without re-walking the lattice.
type kBestEntry struct {
	cost     float32
	prev     *WordNode
	prevRank int

	unigramCost        float32
	bigramCost         float32
	unknownBigramCost  float32
	unknownBigramCount int
	skipBigramCost     float32
}

// KBestPath is one resolved segmentation pattern: per-clause candidate
// lists plus the path-global cost features the re-ranker consumes.
type KBestPath struct {
	Segments [][]types.Candidate

	ViterbiCost        float32
	UnigramCost        float32
	BigramCost         float32
	UnknownBigramCost  float32
	UnknownBigramCount int
	TokenCount         int
	SkipBigramCost     float32
	// RerankCost starts out equal to ViterbiCost; Rerank overwrites it.
	RerankCost float32
}

// Surfaces returns the top surface of each clause, in order.
func (p *KBestPath) Surfaces() []string {
	out := make([]string, 0, len(p.Segments))
	for _, clause := range p.Segments {
		if len(clause) > 0 {
			out = append(out, clause[0].Surface)
		}
	}
	return out
}

// Resolver runs the k-best Viterbi search. skipWeight scales the
// skip-bigram term inside the DP; zero disables it entirely.
type Resolver struct {
	skipWeight float32
}

// NewResolver builds a Resolver with the given in-DP skip-bigram
// weight.
func NewResolver(skipWeight float32) *Resolver {
	return &Resolver{skipWeight: skipWeight}
}

// Resolve returns the single best path's clause candidates.
func (r *Resolver) Resolve(l *Lattice) ([][]types.Candidate, error) {
	paths, err := r.ResolveKBest(l, 1)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	return paths[0].Segments, nil
}

// ResolveKBest runs the forward DP keeping the top k predecessor
// lineages per node, then backtracks the EOS entries into distinct
// segmentation patterns. Fewer than k patterns may exist; at least one
// path is always returned for a resolvable lattice.
func (r *Resolver) ResolveKBest(l *Lattice, k int) ([]KBestPath, error) {
	if k < 1 {
		k = 1
	}
	kbest := make(map[*WordNode][]kBestEntry)

	// One lock acquisition covers the whole DP; released before
	// backtracking and candidate collection.
	sess := l.UserData().Acquire()
	eosPos := l.EOSPos()
	for i := 1; i <= eosPos; i++ {
		nodes := l.NodeList(i)
		if nodes == nil {
			continue
		}
		for _, node := range nodes {
			nodeCost := l.nodeCost(node, sess)
			prevs := l.PrevNodes(node)
			if len(prevs) == 0 {
				sess.Release()
				return nil, fmt.Errorf("%w: %q start=%d yomi=%q",
					ErrNoPathFromPredecessor, node.Surface, node.StartPos, l.Yomi)
			}

			var entries []kBestEntry
			for _, prev := range prevs {
				edgeCost, known := l.edgeCost(prev, node, sess)
				prevEntries := kbest[prev]
				if len(prevEntries) == 0 {
					// BOS: a single synthetic lineage with cost 0.
					e := kBestEntry{
						cost:        edgeCost + nodeCost,
						prev:        prev,
						unigramCost: nodeCost,
					}
					if known {
						e.bigramCost = edgeCost
					} else {
						e.unknownBigramCost = edgeCost
						e.unknownBigramCount = 1
					}
					entries = append(entries, e)
					continue
				}
				for rank, pe := range prevEntries {
					e := kBestEntry{
						cost:               pe.cost + edgeCost + nodeCost,
						prev:               prev,
						prevRank:           rank,
						unigramCost:        pe.unigramCost + nodeCost,
						bigramCost:         pe.bigramCost,
						unknownBigramCost:  pe.unknownBigramCost,
						unknownBigramCount: pe.unknownBigramCount,
						skipBigramCost:     pe.skipBigramCost,
					}
					if known {
						e.bigramCost += edgeCost
					} else {
						e.unknownBigramCost += edgeCost
						e.unknownBigramCount++
					}
					// The (i-2) word of this lineage is the node the
					// predecessor's entry came from.
					if prev2 := pe.prev; prev2 != nil && !prev2.IsBOS() {
						raw := l.skipCost(prev2, node, sess)
						e.skipBigramCost += raw
						if r.skipWeight != 0 {
							e.cost += r.skipWeight * raw
						}
					}
					entries = append(entries, e)
				}
			}

			sortEntries(entries)
			if len(entries) > k {
				entries = entries[:k]
			}
			if len(entries) == 0 {
				sess.Release()
				return nil, fmt.Errorf("%w: %q start=%d yomi=%q",
					ErrNoPathFromPredecessor, node.Surface, node.StartPos, l.Yomi)
			}
			kbest[node] = entries
		}
	}
	sess.Release()

	// 1-best costs drive candidate ordering during collection.
	costmap := make(map[*WordNode]float32, len(kbest))
	for node, entries := range kbest {
		costmap[node] = entries[0].cost
	}

	eosList := l.NodeList(eosPos)
	if len(eosList) == 0 {
		return nil, fmt.Errorf("%w: missing EOS at %d", ErrNoPathFound, eosPos)
	}
	eos := eosList[0]
	bosList := l.NodeList(0)
	if len(bosList) == 0 {
		return nil, fmt.Errorf("%w: missing BOS", ErrNoPathFound)
	}
	bos := bosList[0]
	eosEntries := kbest[eos]
	if len(eosEntries) == 0 {
		return nil, fmt.Errorf("%w: yomi=%q", ErrNoPathFound, l.Yomi)
	}

	var paths []KBestPath
	seenPatterns := make(map[string]bool)
	for _, eosEntry := range eosEntries {
		var clauses [][]types.Candidate
		cur, curRank := eosEntry.prev, eosEntry.prevRank
		for cur != bos {
			if !cur.IsEOS() {
				endPos := cur.StartPos + len(cur.Yomi)
				clauses = append(clauses, r.collectCandidates(cur, l, costmap, endPos))
			}
			entries := kbest[cur]
			if len(entries) == 0 {
				break
			}
			if curRank >= len(entries) {
				curRank = 0
			}
			entry := entries[curRank]
			cur, curRank = entry.prev, entry.prevRank
		}
		reverseClauses(clauses)

		pattern := patternSignature(clauses)
		if seenPatterns[pattern] {
			continue
		}
		seenPatterns[pattern] = true

		paths = append(paths, KBestPath{
			Segments:           clauses,
			ViterbiCost:        eosEntry.cost,
			UnigramCost:        eosEntry.unigramCost,
			BigramCost:         eosEntry.bigramCost,
			UnknownBigramCost:  eosEntry.unknownBigramCost,
			UnknownBigramCount: eosEntry.unknownBigramCount,
			TokenCount:         len(clauses),
			SkipBigramCost:     eosEntry.skipBigramCost,
			RerankCost:         eosEntry.cost,
		})
	}
	if len(paths) == 0 {
		paths = append(paths, KBestPath{})
	}
	return paths, nil
}

// collectCandidates gathers every surface over the same clause span,
// ordered by resolved cost, expanding the numeric sentinel and — when
// the list runs short — compound candidates assembled from shorter
// nodes.
func (r *Resolver) collectCandidates(node *WordNode, l *Lattice, costmap map[*WordNode]float32, endPos int) []types.Candidate {
	nodeList := l.NodeList(endPos)
	if nodeList == nil {
		slog.Error("node list missing at clause end", "end_pos", endPos, "surface", node.Surface)
		return nil
	}

	var out []types.Candidate
	for _, alt := range nodeList {
		if alt.StartPos != node.StartPos || len(alt.Yomi) != len(node.Yomi) {
			continue
		}
		cost, ok := costmap[alt]
		if !ok {
			slog.Error("cost missing for lattice node", "key", alt.Key(), "start", alt.StartPos)
			cost = maxCost
		}
		if alt.Surface == NumberSentinel {
			out = append(out, expandNumberSentinel(alt, cost)...)
			continue
		}
		out = append(out, types.Candidate{Surface: alt.Surface, Yomi: alt.Yomi, Cost: cost})
	}
	sortCandidates(out)
	out = dedupBySurface(out)

	if len(out) < breakdownThreshold {
		var compounds []types.Candidate
		r.collectBreakdown(node.Yomi, len(node.Yomi), node.StartPos, &compounds,
			"", "", l, costmap, endPos, 0, 0, nil)
		sortCandidates(compounds)
		out = append(out, compounds...)
	}
	return out
}

// expandNumberSentinel renders the numeric placeholder into its
// display forms: arabic, full-width, and kanji numerals.
func expandNumberSentinel(n *WordNode, cost float32) []types.Candidate {
	digits := n.Yomi[:leadingDigits(n.Yomi)]
	if digits == "" {
		return nil
	}
	surfaces := []string{digits, kana.WidenDigits(digits)}
	if v, err := strconv.ParseInt(digits, 10, 64); err == nil {
		surfaces = append(surfaces, numeric.IntToKanji(v))
	}
	out := make([]types.Candidate, 0, len(surfaces))
	seen := make(map[string]bool)
	for _, s := range surfaces {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, types.Candidate{Surface: s, Yomi: n.Yomi, Cost: cost})
	}
	return out
}

type breakdown struct {
	node     *WordNode
	headCost float32
	tailCost float32
}

// collectBreakdown walks backwards from endPos assembling shorter
// nodes whose readings tile the clause exactly, bounded by depth and
// fanout.
func (r *Resolver) collectBreakdown(nodeYomi string, requiredLen, minStartPos int,
	results *[]types.Candidate, curSurface, curYomi string, l *Lattice,
	costmap map[*WordNode]float32, endPos, depth int, tailCost float32, next *WordNode) {

	if depth > breakdownMaxDepth {
		return
	}
	if len(curYomi) == len(nodeYomi) {
		*results = append(*results, types.Candidate{
			Surface:      curSurface,
			Yomi:         curYomi,
			Cost:         tailCost,
			CompoundWord: true,
		})
		return
	}

	nodeList := l.NodeList(endPos)
	if nodeList == nil {
		return
	}
	var targets []breakdown
	for _, cur := range nodeList {
		if cur.StartPos < minStartPos || cur.Yomi == nodeYomi {
			continue
		}
		head, ok := costmap[cur]
		if !ok {
			head = maxCost
		}
		tail := l.NodeCost(cur)
		if next != nil {
			tail += l.EdgeCost(cur, next)
		} else {
			tail += l.DefaultEdgeCost()
		}
		targets = append(targets, breakdown{node: cur, headCost: head, tailCost: tail})
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].headCost+targets[i].tailCost < targets[j].headCost+targets[j].tailCost
	})
	if len(targets) > breakdownFanout {
		targets = targets[:breakdownFanout]
	}

	for _, target := range targets {
		if target.node.IsBOS() || target.node.IsEOS() || target.node.Surface == NumberSentinel {
			continue
		}
		if requiredLen < len(target.node.Yomi) {
			continue
		}
		r.collectBreakdown(nodeYomi, requiredLen-len(target.node.Yomi), minStartPos,
			results, target.node.Surface+curSurface, target.node.Yomi+curYomi, l,
			costmap, endPos-len(target.node.Yomi), depth+1, tailCost+target.tailCost, target.node)
	}
}

const maxCost = float32(3.4e38)

// sortEntries orders DP entries by cost ascending. NaN costs compare
// equal so a poisoned score cannot panic the sort.
func sortEntries(entries []kBestEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].cost < entries[j].cost
	})
}

// dedupBySurface keeps the cheapest candidate per surface. The
// numeric expansion and the kana fallbacks can render the same text.
func dedupBySurface(cands []types.Candidate) []types.Candidate {
	seen := make(map[string]bool, len(cands))
	out := cands[:0]
	for _, c := range cands {
		if seen[c.Surface] {
			continue
		}
		seen[c.Surface] = true
		out = append(out, c)
	}
	return out
}

func sortCandidates(cands []types.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Cost < cands[j].Cost
	})
}

func patternSignature(clauses [][]types.Candidate) string {
	var b strings.Builder
	for _, clause := range clauses {
		if len(clause) == 0 {
			continue
		}
		b.WriteString(strconv.Itoa(len(clause[0].Yomi)))
		b.WriteByte(',')
	}
	return b.String()
}

func reverseClauses(clauses [][]types.Candidate) {
	for i, j := 0, len(clauses)-1; i < j; i, j = i+1, j-1 {
		clauses[i], clauses[j] = clauses[j], clauses[i]
	}
}
