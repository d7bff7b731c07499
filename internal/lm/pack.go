package lm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
)

// The stores share one container: a flat block of binary keys, sorted,
// searched by prefix. The file layout is a magic string, a uvarint key
// count, then each key as uvarint length + raw bytes. Keys carry their
// own payload in their trailing bytes (see unigram.go / bigram.go), so
// there is no separate value section.
const packMagic = "#kkc.pack1"

type keyBlock struct {
	keys [][]byte // sorted lexicographically
}

func newKeyBlock(keys [][]byte) *keyBlock {
	sorted := make([][]byte, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i], sorted[j]) < 0 })
	return &keyBlock{keys: sorted}
}

// findPrefix returns the first key that starts with prefix, or nil.
func (b *keyBlock) findPrefix(prefix []byte) []byte {
	i := sort.Search(len(b.keys), func(i int) bool {
		return bytes.Compare(b.keys[i], prefix) >= 0
	})
	if i < len(b.keys) && bytes.HasPrefix(b.keys[i], prefix) {
		return b.keys[i]
	}
	return nil
}

func (b *keyBlock) len() int { return len(b.keys) }

// each calls f for every key in sorted order.
func (b *keyBlock) each(f func(key []byte)) {
	for _, k := range b.keys {
		f(k)
	}
}

func (b *keyBlock) writeFile(path string) error {
	var buf bytes.Buffer
	buf.WriteString(packMagic)
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], uint64(len(b.keys)))
	buf.Write(scratch[:n])
	for _, k := range b.keys {
		n := binary.PutUvarint(scratch[:], uint64(len(k)))
		buf.Write(scratch[:n])
		buf.Write(k)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func readKeyBlock(path string) (*keyBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < len(packMagic) || string(data[:len(packMagic)]) != packMagic {
		return nil, fmt.Errorf("%s: not a kkc model file", path)
	}
	rest := data[len(packMagic):]
	count, n := binary.Uvarint(rest)
	if n <= 0 {
		return nil, fmt.Errorf("%s: corrupt key count", path)
	}
	rest = rest[n:]
	keys := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		klen, n := binary.Uvarint(rest)
		if n <= 0 || uint64(len(rest)-n) < klen {
			return nil, fmt.Errorf("%s: corrupt key %d of %d", path, i, count)
		}
		keys = append(keys, rest[n:n+int(klen)])
		rest = rest[n+int(klen):]
	}
	// Builders write sorted keys, but don't trust the file.
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	return &keyBlock{keys: keys}, nil
}

func putU24(buf []byte, id int32) {
	buf[0] = byte(id)
	buf[1] = byte(id >> 8)
	buf[2] = byte(id >> 16)
}

func getU24(buf []byte) int32 {
	return int32(buf[0]) | int32(buf[1])<<8 | int32(buf[2])<<16
}
