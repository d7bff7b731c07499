// Package numeric parses numeral prefixes (ASCII, full-width, kanji,
// and kana readings) and canonicalizes counter expressions into the
// <NUM>-keyed form used for language-model lookup. The normalization is
// key-only: surfaces shown to the user are never <NUM>-prefixed, and
// this package is the sole writer of <NUM> into LM keys.
package numeric

import "strings"

var kanjiDigits = [10]string{"", "一", "二", "三", "四", "五", "六", "七", "八", "九"}
var kanjiSmallUnits = [4]string{"", "十", "百", "千"}
var kanjiBigUnits = []string{"", "万", "億", "兆", "京"}

// IntToKanji renders n in kanji numerals (positional with 万/億/兆/京
// groups). Zero renders as 〇.
func IntToKanji(n int64) string {
	if n == 0 {
		return "〇"
	}
	var b strings.Builder
	if n < 0 {
		b.WriteString("マイナス")
		n = -n
	}
	// Split into groups of four digits, little-endian. int64 tops out
	// below 10^19, so the 京 unit always suffices.
	var groups []int64
	for n > 0 {
		groups = append(groups, n%10000)
		n /= 10000
	}
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		if g == 0 {
			continue
		}
		b.WriteString(renderGroup(g))
		b.WriteString(kanjiBigUnits[i])
	}
	return b.String()
}

func renderGroup(g int64) string {
	var b strings.Builder
	for p := 3; p >= 0; p-- {
		div := int64(1)
		for i := 0; i < p; i++ {
			div *= 10
		}
		d := (g / div) % 10
		if d == 0 {
			continue
		}
		if d != 1 || p == 0 {
			b.WriteString(kanjiDigits[d])
		}
		b.WriteString(kanjiSmallUnits[p])
	}
	return b.String()
}

// isKanjiNumeralRune reports whether r can appear in a kanji numeral,
// units included.
func isKanjiNumeralRune(r rune) bool {
	switch r {
	case '零', '〇', '一', '二', '三', '四', '五', '六', '七', '八', '九',
		'十', '百', '千', '万', '億', '兆', '京':
		return true
	}
	return false
}
