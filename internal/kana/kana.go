// Package kana holds small script conversions shared by the segmenter,
// the graph builder, and the corpus tokenizer.
package kana

import (
	"strings"

	"golang.org/x/text/width"
)

// HiraToKata converts hiragana runes to their katakana counterparts.
// Everything outside the hiragana block passes through unchanged.
func HiraToKata(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'ぁ' && r <= 'ゖ':
			r += 0x60
		case r == 'ゝ' || r == 'ゞ':
			r += 0x60
		}
		b.WriteRune(r)
	}
	return b.String()
}

// KataToHira converts katakana runes to hiragana. ヵ and ヶ have no
// hiragana counterpart in common use but fold anyway (ゕ/ゖ).
func KataToHira(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'ァ' && r <= 'ヶ':
			r -= 0x60
		case r == 'ヽ' || r == 'ヾ':
			r -= 0x60
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NarrowWidth folds full-width forms (１２３, ＡＢＣ) to their narrow
// counterparts. Kana is left alone.
func NarrowWidth(s string) string {
	return width.Narrow.String(s)
}

// WidenDigits converts ASCII digits to their full-width forms.
func WidenDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			r += 0xFEE0
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsHiragana reports whether every rune of s is hiragana (or the
// prolonged sound mark).
func IsHiragana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'ぁ' || r > 'ゖ') && r != 'ー' && r != 'ゝ' && r != 'ゞ' {
			return false
		}
	}
	return true
}

// ContainsJapanese reports whether s contains at least one hiragana,
// katakana, or CJK ideograph rune.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		if (r >= 0x3040 && r <= 0x309F) || // hiragana
			(r >= 0x30A0 && r <= 0x30FF) || // katakana
			(r >= 0x4E00 && r <= 0x9FFF) || // CJK unified ideographs
			(r >= 0x3400 && r <= 0x4DBF) { // CJK extension A
			return true
		}
	}
	return false
}
