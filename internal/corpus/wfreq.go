package corpus

import (
	"bufio"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mkanda/kkc/internal/kana"
	"github.com/mkanda/kkc/internal/numeric"
)

// listFiles returns every regular file under each dir, sorted.
func listFiles(dirs []string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list corpus files: %w", err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// eachLine streams the lines of every file under dirs.
func eachLine(dirs []string, fn func(line string) error) error {
	files, err := listFiles(dirs)
	if err != nil {
		return err
	}
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for sc.Scan() {
			if err := fn(strings.TrimSpace(sc.Text())); err != nil {
				f.Close()
				return err
			}
		}
		err = sc.Err()
		f.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}
	return nil
}

// normalizeNumToken folds digit-prefixed tokens into their <NUM> form
// so counter expressions aggregate; everything else passes through.
func normalizeNumToken(word string) string {
	if nk, ok := numeric.NormalizeDigitKey(word); ok {
		return nk
	}
	return word
}

// CountWords tallies "surface/yomi" tokens across tokenized corpus
// directories.
func CountWords(dirs []string) (map[string]uint32, error) {
	counts := make(map[string]uint32)
	err := eachLine(dirs, func(line string) error {
		for _, word := range strings.Split(line, " ") {
			if word == "" || word[0] == '/' || word[0] == ' ' {
				continue
			}
			if strings.ContainsRune(word, '\u200f') {
				slog.Warn("skipping token with RTL marker", "token", word)
				continue
			}
			counts[normalizeNumToken(word)]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// WriteWfreq writes the frequency table as sorted "word\tcount" lines.
func WriteWfreq(counts map[string]uint32, path string) error {
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Strings(words)

	var b strings.Builder
	for _, w := range words {
		b.WriteString(w)
		b.WriteByte('\t')
		b.WriteString(strconv.FormatUint(uint64(counts[w]), 10))
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// ReadWfreq parses a frequency table written by WriteWfreq. Malformed
// lines are skipped with a warning.
func ReadWfreq(path string) (map[string]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	counts := make(map[string]uint32)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		word, cntStr, ok := strings.Cut(line, "\t")
		if !ok {
			slog.Warn("skipping malformed wfreq line", "line", line)
			continue
		}
		cnt, err := strconv.ParseUint(cntStr, 10, 32)
		if err != nil {
			slog.Warn("skipping malformed wfreq count", "line", line)
			continue
		}
		counts[word] = uint32(cnt)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Vocab filters the frequency table into the modeling vocabulary:
// above threshold, shaped like "surface/yomi", and carrying at least
// one Japanese character in the surface.
func Vocab(counts map[string]uint32, threshold uint32) []string {
	var words []string
	for word, cnt := range counts {
		if cnt <= threshold {
			continue
		}
		if strings.HasPrefix(word, " ") || strings.HasPrefix(word, "/") {
			continue
		}
		surface, _, ok := strings.Cut(word, "/")
		if !ok {
			continue
		}
		if !kana.ContainsJapanese(surface) && !strings.HasPrefix(surface, "<NUM>") {
			continue
		}
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}
