package numeric

import (
	"strings"
	"unicode/utf8"

	"github.com/mkanda/kkc/internal/kana"
)

// Kana numeral readings. Gemination forms (ろっ, はっ, じゅっ …) are
// listed so compounds like ろっぴゃく and はっせん parse.
var kanaNumTokens = []string{
	"きゅう", "ひゃく", "ひゃっ", "びゃく", "ぴゃく",
	"じゅう", "じゅっ", "じっ",
	"いち", "さん", "よん", "なな", "しち",
	"ろく", "ろっ", "はち", "はっ",
	"せん", "ぜん", "ぜろ", "れい",
	"に", "し", "ご", "く",
}

// asciiDigitPrefixLen returns the byte length of the leading ASCII
// digit run.
func asciiDigitPrefixLen(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

func isFullWidthDigit(r rune) bool { return r >= '０' && r <= '９' }

// surfaceNumPrefixLen measures the numeric prefix of a surface: ASCII
// digits, full-width digits, and kanji numerals all count.
func surfaceNumPrefixLen(s string) int {
	end := 0
	for i, r := range s {
		if (r >= '0' && r <= '9') || isFullWidthDigit(r) || isKanjiNumeralRune(r) {
			end = i + utf8.RuneLen(r)
		} else {
			break
		}
	}
	return end
}

// digitPrefixLen measures the leading run of ASCII or full-width
// digits in bytes.
func digitPrefixLen(s string) int {
	end := 0
	for i, r := range s {
		if (r >= '0' && r <= '9') || isFullWidthDigit(r) {
			end = i + utf8.RuneLen(r)
		} else {
			break
		}
	}
	return end
}

// kanaNumPrefixEnds scans s for kana numeral tokens and returns every
// cumulative end offset (in bytes) the scan passes through, shortest
// first. さんぜん yields [さん, さんぜん]; a non-numeral head yields nil.
func kanaNumPrefixEnds(s string) []int {
	var ends []int
	end := 0
	for end < len(s) {
		matched := ""
		for _, tok := range kanaNumTokens {
			if strings.HasPrefix(s[end:], tok) && len(tok) > len(matched) {
				matched = tok
			}
		}
		if matched == "" {
			break
		}
		end += len(matched)
		ends = append(ends, end)
	}
	return ends
}

// NormalizeCounterKey canonicalizes a "surface/yomi" key whose word is
// a numeral + counter into the <NUM>-keyed form, e.g.
//
//	"3匹/3びき"            → "<NUM>匹/<NUM>ひき"
//	"五百十六週間/516しゅうかん" → "<NUM>週間/<NUM>しゅうかん"
//
// The counter table is closed: keys that don't resolve to a known
// counter are left alone (ok = false).
func NormalizeCounterKey(key string) (string, bool) {
	slash := strings.IndexByte(key, '/')
	if slash < 0 {
		return "", false
	}
	surface, reading := key[:slash], key[slash+1:]

	sp := surfaceNumPrefixLen(surface)
	if sp == 0 || sp == len(surface) {
		return "", false
	}
	surfaceSuffix := surface[sp:]

	if rp := digitPrefixLen(reading); rp > 0 {
		return matchCounter(surfaceSuffix, reading[rp:], false)
	}
	// Kana-numeral pathway: try every token boundary, longest prefix
	// first, so さんしゅうかん resolves to さん + しゅうかん rather than
	// over-consuming the し of the counter.
	ends := kanaNumPrefixEnds(reading)
	for i := len(ends) - 1; i >= 0; i-- {
		rp := ends[i]
		// Single-rune numerals (に/し/ご/く) are far more often
		// particles or word heads; they never open the pathway.
		if utf8.RuneCountInString(reading[:rp]) < 2 {
			continue
		}
		if key, ok := matchCounter(surfaceSuffix, reading[rp:], true); ok {
			return key, ok
		}
	}
	return "", false
}

// matchCounter resolves a counter reading against the closed table and
// checks the surface spelling. Kana-numeral prefixes additionally
// require a counter of at least two runes (じ/ど/こ/わ after a kana
// numeral is too ambiguous).
func matchCounter(surfaceSuffix, readingSuffix string, kanaPath bool) (string, bool) {
	if readingSuffix == "" {
		return "", false
	}
	if kanaPath && utf8.RuneCountInString(readingSuffix) < 2 {
		return "", false
	}
	canonical, ok := NormalizeCounterYomi(readingSuffix)
	if !ok {
		return "", false
	}
	surfaces, ok := CounterSurfaces(canonical)
	if !ok {
		return "", false
	}
	for _, s := range surfaces {
		if s == surfaceSuffix {
			return "<NUM>" + surfaceSuffix + "/<NUM>" + canonical, true
		}
	}
	return "", false
}

// NormalizeCounterKeyOrSelf returns the normalized key, or the key
// itself when it doesn't normalize. Idempotent.
func NormalizeCounterKeyOrSelf(key string) string {
	if nk, ok := NormalizeCounterKey(key); ok {
		return nk
	}
	return key
}

// NormalizeDigitKey rewrites a "surface/yomi" key whose surface starts
// with ASCII digits followed by a non-empty suffix into the <NUM> form,
// without consulting the counter table:
//
//	"90行/90ぎょう" → "<NUM>行/<NUM>ぎょう"
//
// Bare all-digit surfaces do not normalize: aggregating every numeral
// under one key would give it a wildly inflated count.
func NormalizeDigitKey(key string) (string, bool) {
	slash := strings.IndexByte(key, '/')
	if slash < 0 {
		return "", false
	}
	surface, reading := key[:slash], key[slash+1:]
	sp := asciiDigitPrefixLen(surface)
	if sp == 0 {
		return "", false
	}
	surfaceSuffix := surface[sp:]
	if surfaceSuffix == "" {
		return "", false
	}
	readingSuffix := reading[asciiDigitPrefixLen(reading):]
	return "<NUM>" + surfaceSuffix + "/<NUM>" + readingSuffix, true
}

// FoldDigits folds full-width digits in s to ASCII.
func FoldDigits(s string) string {
	hasWide := false
	for _, r := range s {
		if isFullWidthDigit(r) {
			hasWide = true
			break
		}
	}
	if !hasWide {
		return s
	}
	return kana.NarrowWidth(s)
}
