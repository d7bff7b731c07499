package lm

import (
	"math"
	"path/filepath"
	"testing"
)

func TestCalcCost(t *testing.T) {
	// Laplace smoothing keeps the zero-count cost finite
	zero := CalcCost(0, 45, 2)
	if math.IsInf(float64(zero), 0) || zero <= 0 {
		t.Fatalf("CalcCost(0, 45, 2) = %v, want finite positive", zero)
	}
	one := CalcCost(1, 45, 2)
	if one >= zero {
		t.Errorf("cost should fall with count: CalcCost(1)=%v >= CalcCost(0)=%v", one, zero)
	}
	want := float32(-math.Log(2.0 / 47.0))
	if diff := one - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("CalcCost(1, 45, 2) = %v, want %v", one, want)
	}
}

func TestUnigram_BuildFindRoundTrip(t *testing.T) {
	// Every added word resolves to a unique insertion-order id and its score
	b := NewUnigramBuilder()
	words := map[string]float32{
		"私/わたし":  1.5,
		"彼/かれ":   2.0,
		"天気/てんき": 0.25,
	}
	order := []string{"私/わたし", "彼/かれ", "天気/てんき"}
	for _, w := range order {
		if err := b.Add(w, words[w]); err != nil {
			t.Fatalf("Add(%q): %v", w, err)
		}
	}
	if err := b.SetTotalWords(100); err != nil {
		t.Fatal(err)
	}
	if err := b.SetUniqueWords(50); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "unigram.model")
	if err := b.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	u, err := LoadUnigram(path)
	if err != nil {
		t.Fatalf("LoadUnigram: %v", err)
	}

	if u.TotalWords() != 100 || u.UniqueWords() != 50 {
		t.Errorf("scalars = (%d, %d), want (100, 50)", u.TotalWords(), u.UniqueWords())
	}
	seen := map[int32]string{}
	for i, w := range order {
		id, score, ok := u.Find(w)
		if !ok {
			t.Fatalf("Find(%q): not found", w)
		}
		if id != int32(i) {
			t.Errorf("Find(%q) id = %d, want insertion order %d", w, id, i)
		}
		if prev, dup := seen[id]; dup {
			t.Errorf("id %d assigned to both %q and %q", id, prev, w)
		}
		seen[id] = w
		if score != words[w] {
			t.Errorf("Find(%q) score = %v, want %v", w, score, words[w])
		}
	}
	if _, _, ok := u.Find("未知/みち"); ok {
		t.Error("Find of absent word should miss")
	}
}

func TestUnigram_FindNotPrefixConfused(t *testing.T) {
	// "今日/きょう" must not be found via the key "今日/きょうは"
	b := NewUnigramBuilder()
	if err := b.Add("今日/きょうは", 1.0); err != nil {
		t.Fatal(err)
	}
	b.SetTotalWords(10)
	b.SetUniqueWords(5)
	u, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := u.Find("今日/きょう"); ok {
		t.Error("prefix of a longer key must not match")
	}
}

func TestUnigram_MissingScalarsFatal(t *testing.T) {
	b := NewUnigramBuilder()
	b.Add("私/わたし", 1.0)
	if _, err := b.Build(); err == nil {
		t.Error("Build without scalars should fail")
	}
}

func TestUnigram_VocabularyCap(t *testing.T) {
	b := NewUnigramBuilder()
	b.next = MaxVocab - 1
	if err := b.Add("ぎりぎり/ぎりぎり", 1.0); err != nil {
		t.Fatalf("id %d should still be accepted: %v", MaxVocab-1, err)
	}
	if err := b.Add("あふれ/あふれ", 1.0); err == nil {
		t.Error("id 2^23 must be rejected")
	}
}

func TestUnigram_AsMap(t *testing.T) {
	b := NewUnigramBuilder()
	b.Add("私/わたし", 1.5)
	b.SetTotalWords(10)
	b.SetUniqueWords(5)
	u, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	m := u.AsMap()
	got, ok := m["私/わたし"]
	if !ok || got.ID != 0 || got.Score != 1.5 {
		t.Errorf("AsMap entry = %+v ok=%v", got, ok)
	}
	if _, ok := m[TotalWordsKey]; !ok {
		t.Error("reserved keys should appear in the full map")
	}
}

func TestBigram_RoundTripF16(t *testing.T) {
	// Inserted pairs round-trip through f16 quantization
	b := NewBigramBuilder()
	b.SetDefaultEdgeCost(20)
	if err := b.Add(4649, 5963, 5.11); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "bigram.model")
	if err := b.Save(path); err != nil {
		t.Fatal(err)
	}
	g, err := LoadBigram(path)
	if err != nil {
		t.Fatalf("LoadBigram: %v", err)
	}

	got, ok := g.EdgeCost(4649, 5963)
	if !ok {
		t.Fatal("EdgeCost miss for inserted pair")
	}
	if got < 5.0 || got > 5.12 {
		t.Errorf("EdgeCost = %v, want ~5.11 within f16 precision", got)
	}
	if _, ok := g.EdgeCost(999, 888); ok {
		t.Error("absent pair should miss")
	}
	if g.DefaultEdgeCost() != 20 {
		t.Errorf("DefaultEdgeCost = %v, want 20", g.DefaultEdgeCost())
	}

	m := g.AsMap()
	if v, ok := m[[2]int32{4649, 5963}]; !ok || v < 5.0 || v > 5.12 {
		t.Errorf("AsMap pair = %v ok=%v", v, ok)
	}
}

func TestBigram_MissingDefaultFatal(t *testing.T) {
	b := NewBigramBuilder()
	b.Add(1, 2, 5.0)
	if _, err := b.Build(); err == nil {
		t.Error("Build without default edge cost should fail")
	}
}

func TestBigram_IDRange(t *testing.T) {
	b := NewBigramBuilder()
	if err := b.Add(MaxVocab, 0, 1.0); err == nil {
		t.Error("id MaxVocab (2^23) must be rejected")
	}
	if err := b.Add(-1, 0, 1.0); err == nil {
		t.Error("negative id must be rejected")
	}
}

func TestSkipBigram_DefaultFallback(t *testing.T) {
	// Older models without the reserved key fall back to 10.0
	b := NewSkipBigramBuilder()
	b.Add(100, 200, 3.5)
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if g.DefaultSkipCost() != FallbackSkipCost {
		t.Errorf("DefaultSkipCost = %v, want fallback %v", g.DefaultSkipCost(), FallbackSkipCost)
	}
	cost, ok := g.SkipCost(100, 200)
	if !ok || cost < 3.4 || cost > 3.6 {
		t.Errorf("SkipCost = %v ok=%v, want ~3.5", cost, ok)
	}
}

func TestSkipBigram_SaveLoad(t *testing.T) {
	b := NewSkipBigramBuilder()
	b.SetDefaultSkipCost(8)
	b.Add(1, 2, 4.0)
	path := filepath.Join(t.TempDir(), "skip_bigram.model")
	if err := b.Save(path); err != nil {
		t.Fatal(err)
	}
	g, err := LoadSkipBigram(path)
	if err != nil {
		t.Fatal(err)
	}
	if g.DefaultSkipCost() != 8 {
		t.Errorf("DefaultSkipCost = %v, want 8", g.DefaultSkipCost())
	}
	if cost, ok := g.SkipCost(1, 2); !ok || cost < 3.9 || cost > 4.1 {
		t.Errorf("SkipCost = %v ok=%v, want ~4.0", cost, ok)
	}
}
