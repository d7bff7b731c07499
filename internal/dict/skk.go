// Package dict loads kana-kanji dictionaries from SKK-format sources
// and merges them into the reading → surfaces map the graph builder
// consults.
package dict

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Encoding selects the character encoding of an SKK source file.
type Encoding string

const (
	EncodingUTF8  Encoding = "utf-8"
	EncodingEUCJP Encoding = "euc-jp"
)

// ParseSKK reads one SKK dictionary. Okuri-ari entries are skipped —
// the engine works on whole readings and has no okurigana machinery —
// and per-candidate annotations (after ';') are stripped.
func ParseSKK(r io.Reader, enc Encoding) (map[string][]string, error) {
	if enc == EncodingEUCJP {
		r = transform.NewReader(r, japanese.EUCJP.NewDecoder())
	}
	entries := make(map[string][]string)
	okuriAri := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, ";;") {
			if strings.Contains(line, "okuri-ari entries") {
				okuriAri = true
			} else if strings.Contains(line, "okuri-nasi entries") {
				okuriAri = false
			}
			continue
		}
		if okuriAri || line == "" {
			continue
		}
		yomi, rest, ok := strings.Cut(line, " ")
		if !ok || yomi == "" {
			continue
		}
		for _, cand := range strings.Split(strings.Trim(rest, "/"), "/") {
			if surface, _, _ := strings.Cut(cand, ";"); surface != "" {
				entries[yomi] = appendUnique(entries[yomi], surface)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parse skk: %w", err)
	}
	return entries, nil
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
