package dict

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

const skkSample = `;; -*- mode: fundamental; coding: utf-8 -*-
;; okuri-ari entries.
わたs /渡/
;; okuri-nasi entries.
わたし /私/渡し/
きょう /今日/京;みやこ/
すし /寿司/鮨/
`

func TestParseSKK(t *testing.T) {
	got, err := ParseSKK(strings.NewReader(skkSample), EncodingUTF8)
	if err != nil {
		t.Fatalf("ParseSKK: %v", err)
	}
	want := map[string][]string{
		"わたし": {"私", "渡し"},
		"きょう": {"今日", "京"}, // annotation after ';' stripped
		"すし":  {"寿司", "鮨"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseSKK = %v, want %v", got, want)
	}
	if _, ok := got["わたs"]; ok {
		t.Error("okuri-ari entry should be skipped")
	}
}

func TestParseSKK_EUCJP(t *testing.T) {
	// Round trip a UTF-8 sample through the EUC-JP encoder first.
	utf8Line := "わたし /私/\n"
	enc, err := japanese.EUCJP.NewEncoder().String(utf8Line)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	got, err := ParseSKK(strings.NewReader(enc), EncodingEUCJP)
	if err != nil {
		t.Fatalf("ParseSKK: %v", err)
	}
	if !reflect.DeepEqual(got["わたし"], []string{"私"}) {
		t.Errorf("got %v", got)
	}
}

func writeDict(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MergesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeDict(t, dir, "a.dict", "わたし /私/\n")
	b := writeDict(t, dir, "b.dict", "わたし /渡し/私/\nかれ /彼/\n")

	d, err := Load([]Spec{{Path: a, Encoding: EncodingUTF8}, {Path: b, Encoding: EncodingUTF8}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := d.Get("わたし"); !reflect.DeepEqual(got, []string{"私", "渡し"}) {
		t.Errorf("merged surfaces = %v, want earlier source first and deduped", got)
	}
	if got := d.Get("かれ"); !reflect.DeepEqual(got, []string{"彼"}) {
		t.Errorf("かれ = %v", got)
	}
	if d.Get("ふめい") != nil {
		t.Error("absent reading should return nil")
	}
	if got := d.Yomis(); !reflect.DeepEqual(got, []string{"かれ", "わたし"}) {
		t.Errorf("Yomis = %v", got)
	}
}

func TestLoadWithCache(t *testing.T) {
	dir := t.TempDir()
	src := writeDict(t, dir, "a.dict", "わたし /私/\n")
	cache := filepath.Join(dir, "dict_cache.bin")
	specs := []Spec{{Path: src, Encoding: EncodingUTF8}}

	d1, err := LoadWithCache(specs, cache)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if _, err := os.Stat(cache); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	// Second load must come from the cache and agree.
	d2, err := LoadWithCache(specs, cache)
	if err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if !reflect.DeepEqual(d1.Get("わたし"), d2.Get("わたし")) {
		t.Errorf("cache round trip mismatch: %v vs %v", d1.Get("わたし"), d2.Get("わたし"))
	}

	// Changing the source invalidates the cache.
	writeDict(t, dir, "a.dict", "わたし /私/渡し/\n")
	d3, err := LoadWithCache(specs, cache)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := d3.Get("わたし"); !reflect.DeepEqual(got, []string{"私", "渡し"}) {
		t.Errorf("stale cache served: %v", got)
	}
}

func TestLoadWithCache_CorruptCacheRebuilds(t *testing.T) {
	dir := t.TempDir()
	src := writeDict(t, dir, "a.dict", "わたし /私/\n")
	cache := writeDict(t, dir, "dict_cache.bin", "not snappy at all")

	d, err := LoadWithCache([]Spec{{Path: src, Encoding: EncodingUTF8}}, cache)
	if err != nil {
		t.Fatalf("LoadWithCache: %v", err)
	}
	if got := d.Get("わたし"); !reflect.DeepEqual(got, []string{"私"}) {
		t.Errorf("got %v", got)
	}
}
