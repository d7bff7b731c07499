package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mkanda/kkc/internal/graph"
	"github.com/mkanda/kkc/internal/types"
)

// ANSI codes
const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
)

const maxShownCandidates = 8

// renderClauses draws the selected sentence, then one row per clause
// listing its candidates in ranked order with the selected one
// highlighted, columns padded display-width aware so CJK double-width
// text lines up.
func renderClauses(clauses [][]types.Candidate, selection []int) string {
	var b strings.Builder

	// Selected sentence on top.
	b.WriteString(ansiBold)
	for i, clause := range clauses {
		b.WriteString(clause[selection[i]].Surface)
	}
	b.WriteString(ansiReset)
	b.WriteByte('\n')

	colWidth := 0
	for _, clause := range clauses {
		for i, c := range clause {
			if i >= maxShownCandidates {
				break
			}
			if w := runewidth.StringWidth(c.Surface); w > colWidth {
				colWidth = w
			}
		}
	}

	for ci, clause := range clauses {
		fmt.Fprintf(&b, "%s%2d│%s ", ansiDim, ci+1, ansiReset)
		shown := clause
		if len(shown) > maxShownCandidates {
			shown = shown[:maxShownCandidates]
		}
		for ni, c := range shown {
			cell := pad(c.Surface, colWidth)
			switch {
			case ni == selection[ci]:
				b.WriteString(ansiCyan + cell + ansiReset)
			case c.CompoundWord:
				b.WriteString(ansiDim + cell + ansiReset)
			default:
				b.WriteString(cell)
			}
			b.WriteByte(' ')
		}
		if len(clause) > maxShownCandidates {
			fmt.Fprintf(&b, "%s…+%d%s", ansiDim, len(clause)-maxShownCandidates, ansiReset)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// renderKBest draws the paths with their cost breakdown.
func renderKBest(paths []graph.KBestPath) string {
	var b strings.Builder
	for i, p := range paths {
		fmt.Fprintf(&b, "%s%2d.%s %s\n", ansiBold, i+1, ansiReset,
			strings.Join(p.Surfaces(), "/"))
		fmt.Fprintf(&b, "    %srerank=%.3f viterbi=%.3f uni=%.3f bi=%.3f ubi=%.3f(×%d) len=%d skip=%.3f%s\n",
			ansiDim, p.RerankCost, p.ViterbiCost, p.UnigramCost, p.BigramCost,
			p.UnknownBigramCost, p.UnknownBigramCount, p.TokenCount, p.SkipBigramCost, ansiReset)
	}
	return b.String()
}

// pad right-pads s with spaces to the given display width.
func pad(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// clip truncates s to at most width display columns, appending an
// ellipsis when it had to cut.
func clip(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width-1, "…")
}
