package dict

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang/snappy"
)

// Rebuilding the merged dictionary from SKK sources dominates engine
// start-up, so the result can be cached next to the model as a
// snappy-compressed gob blob keyed by a hash of the source files. A
// stale or unreadable cache is rebuilt, never trusted.

type cacheBlob struct {
	SourceHash string
	Entries    map[string][]string
}

// LoadWithCache loads the merged dictionary, reusing cachePath when
// its recorded source hash still matches the given specs.
func LoadWithCache(specs []Spec, cachePath string) (*KanaKanji, error) {
	hash, err := sourceHash(specs)
	if err != nil {
		return nil, err
	}
	if d, ok := readCache(cachePath, hash); ok {
		return d, nil
	}

	d, err := Load(specs)
	if err != nil {
		return nil, err
	}
	if err := writeCache(cachePath, hash, d.entries); err != nil {
		// The cache is an optimization; failing to write it is not
		// a load failure.
		slog.Warn("dict cache write failed", "path", cachePath, "err", err)
	}
	return d, nil
}

func sourceHash(specs []Spec) (string, error) {
	h := sha256.New()
	for _, spec := range specs {
		f, err := os.Open(spec.Path)
		if err != nil {
			return "", fmt.Errorf("dict cache hash: %w", err)
		}
		io.WriteString(h, spec.Path)
		io.WriteString(h, string(spec.Encoding))
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("dict cache hash: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func readCache(path, wantHash string) (*KanaKanji, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		slog.Warn("dict cache corrupt, rebuilding", "path", path, "err", err)
		return nil, false
	}
	var blob cacheBlob
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&blob); err != nil {
		slog.Warn("dict cache corrupt, rebuilding", "path", path, "err", err)
		return nil, false
	}
	if blob.SourceHash != wantHash {
		return nil, false
	}
	return NewKanaKanji(blob.Entries), true
}

func writeCache(path, hash string, entries map[string][]string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cacheBlob{SourceHash: hash, Entries: entries}); err != nil {
		return err
	}
	return os.WriteFile(path, snappy.Encode(nil, buf.Bytes()), 0644)
}
