package numeric

import "testing"

func TestIntToKanji(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "〇"},
		{1, "一"},
		{10, "十"},
		{16, "十六"},
		{90, "九十"},
		{100, "百"},
		{111, "百十一"},
		{516, "五百十六"},
		{1000, "千"},
		{8000, "八千"},
		{10000, "一万"},
		{123456789, "一億二千三百四十五万六千七百八十九"},
		{1000000000000, "一兆"},
	}
	for _, c := range cases {
		if got := IntToKanji(c.n); got != c.want {
			t.Errorf("IntToKanji(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}

func TestNormalizeCounterKey(t *testing.T) {
	cases := []struct {
		key  string
		want string
		ok   bool
	}{
		{"3匹/3びき", "<NUM>匹/<NUM>ひき", true},
		{"3匹/3ぴき", "<NUM>匹/<NUM>ひき", true},
		{"５１６週間/516しゅうかん", "<NUM>週間/<NUM>しゅうかん", true},
		{"五百十六週間/516しゅうかん", "<NUM>週間/<NUM>しゅうかん", true},
		{"0匹/ぜろひき", "<NUM>匹/<NUM>ひき", true},
		{"3人/3にん", "<NUM>人/<NUM>にん", true},
		{"三週間/さんしゅうかん", "<NUM>週間/<NUM>しゅうかん", true},
		{"100円/100えん", "<NUM>円/<NUM>えん", true},
		{"3時/3じ", "<NUM>時/<NUM>じ", true},

		// bare numbers never normalize
		{"1/1", "", false},
		// no numeric prefix
		{"匹/ひき", "", false},
		// numeral not at the head
		{"第1回/だい1かい", "", false},
		// single-rune kana numerals must not open the pathway (ご彼/ごはん etc.)
		{"五飯/ごはん", "", false},
		// kana numeral + one-rune counter is too ambiguous
		{"五十度/ごじゅうど", "", false},
		// unknown counter
		{"3झ/3つぶ", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeCounterKey(c.key)
		if ok != c.ok || got != c.want {
			t.Errorf("NormalizeCounterKey(%q) = (%q, %v), want (%q, %v)",
				c.key, got, ok, c.want, c.ok)
		}
	}
}

func TestNormalizeCounterKeyOrSelf_Idempotent(t *testing.T) {
	for _, key := range []string{"3匹/3びき", "私/わたし", "<NUM>匹/<NUM>ひき", "1/1"} {
		once := NormalizeCounterKeyOrSelf(key)
		twice := NormalizeCounterKeyOrSelf(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", key, once, twice)
		}
	}
}

func TestNormalizeDigitKey(t *testing.T) {
	cases := []struct {
		key  string
		want string
		ok   bool
	}{
		{"1匹/1ひき", "<NUM>匹/<NUM>ひき", true},
		{"100円/100えん", "<NUM>円/<NUM>えん", true},
		{"90行/90ぎょう", "<NUM>行/<NUM>ぎょう", true},
		// digit normalization is table-free: any suffix goes
		{"42km/42きろ", "<NUM>km/<NUM>きろ", true},
		{"1/1", "", false},
		{"匹/ひき", "", false},
		{"第1回/だい1かい", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeDigitKey(c.key)
		if ok != c.ok || got != c.want {
			t.Errorf("NormalizeDigitKey(%q) = (%q, %v), want (%q, %v)",
				c.key, got, ok, c.want, c.ok)
		}
	}
}

func TestFoldDigits(t *testing.T) {
	if got := FoldDigits("５１６しゅうかん"); got != "516しゅうかん" {
		t.Errorf("FoldDigits = %q", got)
	}
	if got := FoldDigits("516"); got != "516" {
		t.Errorf("FoldDigits should pass ASCII through, got %q", got)
	}
}
