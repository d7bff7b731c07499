// Package corpus implements the training-side pipeline: morphological
// tokenization of raw text, word-frequency counting, vocabulary
// extraction, and packed-model generation. The conversion runtime
// never imports it; the two sides meet only through model files.
package corpus

import (
	"fmt"
	"strings"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/mkanda/kkc/internal/kana"
)

// token is the intermediate form merging works on.
type token struct {
	surface string
	yomi    string
	pos     string
	subPOS  string
}

// Tokenizer wraps the kagome morphological analyzer with the IPA
// dictionary and produces "surface/yomi" token lines.
type Tokenizer struct {
	t *tokenizer.Tokenizer
}

// NewTokenizer initializes the analyzer. The IPA dictionary is
// embedded, so this works offline but is not cheap; share one
// Tokenizer per process.
func NewTokenizer() (*Tokenizer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("corpus tokenizer: %w", err)
	}
	return &Tokenizer{t: t}, nil
}

// TokenizeLine analyzes one sentence and returns its space-joined
// "surface/yomi" tokens.
func (tk *Tokenizer) TokenizeLine(line string) string {
	kts := tk.t.Tokenize(line)
	toks := make([]token, 0, len(kts))
	for _, kt := range kts {
		surface := kt.Surface
		if strings.TrimSpace(surface) == "" {
			continue
		}
		yomi, ok := kt.Reading()
		if !ok || yomi == "" {
			yomi = surface
		}
		yomi = kana.KataToHira(yomi)
		features := kt.Features()
		var pos, sub string
		if len(features) > 0 {
			pos = features[0]
		}
		if len(features) > 1 {
			sub = features[1]
		}
		toks = append(toks, token{surface: surface, yomi: yomi, pos: pos, subPOS: sub})
	}
	return mergeTerms(toks)
}

// TokenizeText splits text into sentences and tokenizes each,
// returning one line per sentence.
func (tk *Tokenizer) TokenizeText(text string) []string {
	var lines []string
	for _, s := range SplitSentences(text) {
		if out := tk.TokenizeLine(s); out != "" {
			lines = append(lines, out)
		}
	}
	return lines
}

// SplitSentences breaks text into trimmed, non-empty sentences.
func SplitSentences(text string) []string {
	var out []string
	iter := sentences.FromString(text)
	for iter.Next() {
		if s := strings.TrimSpace(iter.Value()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// mergeTerms glues auxiliary verbs, conjunctive particles, and
// suffixes to their head token, following the IPA part-of-speech
// scheme. 実施/さ/れ/た becomes 実施 + された (the noun keeps its own
// token); without this the bigram model learns nothing about
// conjugation.
func mergeTerms(toks []token) string {
	var parts []string
	i := 0
	for i < len(toks) {
		cur := toks[i]
		surface, yomi := cur.surface, cur.yomi
		prev := cur
		j := i + 1
		for j < len(toks) {
			t := toks[j]
			if (t.pos == "助動詞" && (prev.pos == "動詞" || prev.pos == "助動詞")) ||
				t.subPOS == "接続助詞" || t.subPOS == "接尾" {
				surface += t.surface
				yomi += t.yomi
				prev = t
				j++
				continue
			}
			break
		}
		parts = append(parts, surface+"/"+yomi)
		i = j
	}
	return strings.Join(parts, " ")
}
