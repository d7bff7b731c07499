package numeric

// The counter table is a closed set: a counter expression only
// normalizes when its reading resolves to one of these canonical forms
// and its surface is one of the listed spellings. Phonetic aliases
// (rendaku / gemination variants) map onto the canonical reading.

// counterAliases maps a reading suffix to its canonical counter yomi.
var counterAliases = map[string]string{
	"ひき": "ひき", "びき": "ひき", "ぴき": "ひき",
	"にん": "にん",
	"ほん": "ほん", "ぼん": "ほん", "ぽん": "ほん",
	"まい": "まい",
	"だい": "だい",
	"かい": "かい", "がい": "かい",
	"こ":  "こ",
	"さつ": "さつ",
	"とう": "とう",
	"わ":  "わ", "ば": "わ", "ぱ": "わ",
	"ちゃく": "ちゃく",
	"けん":  "けん", "げん": "けん",
	"しゅう":   "しゅう",
	"しゅうかん": "しゅうかん",
	"ねん":    "ねん",
	"かげつ":   "かげつ",
	"にち":    "にち",
	"じ":     "じ",
	"じかん":   "じかん",
	"ふん":    "ふん", "ぷん": "ふん",
	"びょう": "びょう",
	"さい":  "さい",
	"ど":   "ど",
	"ばん":  "ばん",
	"えん":  "えん",
	"めい":  "めい",
	"だん":  "だん",
	"つう":  "つう",
	"そく":  "そく", "ぞく": "そく",
}

// counterSurfaces lists the accepted spellings per canonical yomi.
var counterSurfaces = map[string][]string{
	"ひき":    {"匹"},
	"にん":    {"人"},
	"ほん":    {"本"},
	"まい":    {"枚"},
	"だい":    {"台"},
	"かい":    {"回", "階"},
	"こ":     {"個"},
	"さつ":    {"冊"},
	"とう":    {"頭"},
	"わ":     {"羽"},
	"ちゃく":   {"着"},
	"けん":    {"件", "軒"},
	"しゅう":   {"週"},
	"しゅうかん": {"週間"},
	"ねん":    {"年"},
	"かげつ":   {"か月", "ヶ月", "カ月", "ケ月", "箇月"},
	"にち":    {"日"},
	"じ":     {"時"},
	"じかん":   {"時間"},
	"ふん":    {"分"},
	"びょう":   {"秒"},
	"さい":    {"歳", "才"},
	"ど":     {"度"},
	"ばん":    {"番"},
	"えん":    {"円"},
	"めい":    {"名"},
	"だん":    {"段"},
	"つう":    {"通"},
	"そく":    {"足"},
}

// NormalizeCounterYomi resolves a counter reading to its canonical
// form (e.g. びき/ぴき → ひき).
func NormalizeCounterYomi(yomi string) (string, bool) {
	c, ok := counterAliases[yomi]
	return c, ok
}

// CounterSurfaces returns the accepted surfaces for a canonical
// counter yomi.
func CounterSurfaces(canonicalYomi string) ([]string, bool) {
	s, ok := counterSurfaces[canonicalYomi]
	return s, ok
}
