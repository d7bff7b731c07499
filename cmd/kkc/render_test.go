package main

import (
	"strings"
	"testing"

	"github.com/mkanda/kkc/internal/types"
)

func TestPad_CJKWidth(t *testing.T) {
	// 私 is two columns wide; padding must account for that.
	if got := pad("私", 4); got != "私  " {
		t.Errorf("pad(私, 4) = %q", got)
	}
	if got := pad("abcd", 4); got != "abcd" {
		t.Errorf("pad(abcd, 4) = %q", got)
	}
	if got := pad("abcdef", 4); got != "abcdef" {
		t.Errorf("overlong string must not be cut: %q", got)
	}
}

func TestClip(t *testing.T) {
	if got := clip("短い", 10); got != "短い" {
		t.Errorf("clip under width = %q", got)
	}
	got := clip("とてもながいぶんしょう", 8)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("clip should ellipsize, got %q", got)
	}
}

func TestRenderClauses(t *testing.T) {
	clauses := [][]types.Candidate{
		{{Surface: "私", Yomi: "わたし"}, {Surface: "渡し", Yomi: "わたし"}},
		{{Surface: "は", Yomi: "は"}},
	}
	out := renderClauses(clauses, []int{1, 0})
	if !strings.Contains(out, "渡しは") {
		t.Errorf("selected sentence missing from:\n%s", out)
	}
	if !strings.Contains(out, "渡し") || !strings.Contains(out, "私") {
		t.Errorf("candidates missing from:\n%s", out)
	}
}
