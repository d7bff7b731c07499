package userdata

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/mkanda/kkc/internal/kanatrie"
	"github.com/mkanda/kkc/internal/types"
)

// LevelDB key prefix scheme — "|" keeps the prefixes unambiguous since
// n-gram keys never start with it.
//
//	u|<key>        → u32 count   (unigram "surface/yomi")
//	b|<k1>\t<k2>   → u32 count   (bigram)
//	s|<k1>\t<k2>   → u32 count   (skip-bigram, positions i-2 and i)
//	d|<yomi>       → "/"-joined learned surfaces
const (
	prefixUnigram = "u|"
	prefixBigram  = "b|"
	prefixSkip    = "s|"
	prefixDict    = "d|"
)

// UserData is the mutable learning store shared by the graph builder
// (learned-surface candidates), the lattice (cost lookups), and Learn.
// One exclusive lock guards it; the resolver acquires it once per
// query via Acquire and holds it across the whole DP.
type UserData struct {
	mu sync.Mutex

	unigram ngramStats
	bigram  ngramStats
	skip    ngramStats

	dict     map[string][]string
	kanaTrie *kanatrie.MutableTrie

	db *leveldb.DB // nil when running without persistence
}

// New returns an empty, unpersisted store.
func New() *UserData {
	return &UserData{
		unigram:  newNgramStats(),
		bigram:   newNgramStats(),
		skip:     newNgramStats(),
		dict:     make(map[string][]string),
		kanaTrie: kanatrie.NewMutableTrie(),
	}
}

// Open loads (or creates) the LevelDB-backed store at dir. LevelDB is
// single-writer: a second engine on the same user directory will fail
// here.
func Open(dir string) (*UserData, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open user data: %w", err)
	}
	u := New()
	u.db = db
	if err := u.loadAll(); err != nil {
		db.Close()
		return nil, err
	}
	return u, nil
}

// Close releases the backing database, if any.
func (u *UserData) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.db == nil {
		return nil
	}
	err := u.db.Close()
	u.db = nil
	return err
}

func (u *UserData) loadAll() error {
	load := func(prefix string, restore func(key string, count uint32)) error {
		iter := u.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
		defer iter.Release()
		for iter.Next() {
			key := string(iter.Key()[len(prefix):])
			if len(iter.Value()) != 4 {
				slog.Warn("skipping malformed user-data record", "key", key)
				continue
			}
			restore(key, binary.LittleEndian.Uint32(iter.Value()))
		}
		return iter.Error()
	}
	if err := load(prefixUnigram, u.unigram.restore); err != nil {
		return err
	}
	if err := load(prefixBigram, u.bigram.restore); err != nil {
		return err
	}
	if err := load(prefixSkip, u.skip.restore); err != nil {
		return err
	}

	iter := u.db.NewIterator(util.BytesPrefix([]byte(prefixDict)), nil)
	defer iter.Release()
	for iter.Next() {
		yomi := string(iter.Key()[len(prefixDict):])
		surfaces := strings.Split(string(iter.Value()), "/")
		u.dict[yomi] = surfaces
		u.kanaTrie.Add(yomi)
	}
	return iter.Error()
}

// RecordEntries feeds one accepted conversion into all three n-gram
// layers and the learned dictionary, then writes the touched keys
// through to disk in one batch.
func (u *UserData) RecordEntries(cands []types.Candidate) {
	if len(cands) == 0 {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	batch := new(leveldb.Batch)
	put := func(prefix string) func(key string, count uint32) {
		return func(key string, count uint32) {
			var v [4]byte
			binary.LittleEndian.PutUint32(v[:], count)
			batch.Put([]byte(prefix+key), v[:])
		}
	}
	u.unigram.recordUnigrams(cands, put(prefixUnigram))
	u.bigram.recordPairs(cands, 1, put(prefixBigram))
	u.skip.recordPairs(cands, 2, put(prefixSkip))

	for _, c := range cands {
		if c.Yomi == "" || c.Surface == "" {
			continue
		}
		changed := false
		if !containsStr(u.dict[c.Yomi], c.Surface) {
			u.dict[c.Yomi] = append(u.dict[c.Yomi], c.Surface)
			changed = true
		}
		u.kanaTrie.Add(c.Yomi)
		if changed {
			batch.Put([]byte(prefixDict+c.Yomi), []byte(strings.Join(u.dict[c.Yomi], "/")))
		}
	}

	if u.db != nil {
		if err := u.db.Write(batch, nil); err != nil {
			// Learning stays effective in memory; only durability is lost.
			slog.Warn("user-data write failed", "err", err)
		}
	}
}

// DictSurfaces returns the learned surfaces for a reading.
func (u *UserData) DictSurfaces(yomi string) []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.dict[yomi]...)
}

// KanaTrie exposes the learned-readings trie for the segmenter. The
// trie has its own lock.
func (u *UserData) KanaTrie() *kanatrie.MutableTrie {
	return u.kanaTrie
}

// Acquire takes the store's exclusive lock and returns a view for the
// resolver's cost lookups. Release before backtracking; never hold
// across I/O.
func (u *UserData) Acquire() *Session {
	u.mu.Lock()
	return &Session{u: u}
}

// Session is an acquired view of the store. Valid until Release.
type Session struct {
	u    *UserData
	done bool
}

// Release unlocks the store. Idempotent.
func (s *Session) Release() {
	if !s.done {
		s.done = true
		s.u.mu.Unlock()
	}
}

// UnigramCost returns the learned node cost for a "surface/yomi" key.
func (s *Session) UnigramCost(key string) (float32, bool) {
	return s.u.unigram.cost(key)
}

// BigramCost returns the learned edge cost for a key pair.
func (s *Session) BigramCost(key1, key2 string) (float32, bool) {
	return s.u.bigram.pairCost(key1, key2)
}

// SkipBigramCost returns the learned skip cost for the (i-2, i) pair.
func (s *Session) SkipBigramCost(key1, key2 string) (float32, bool) {
	return s.u.skip.pairCost(key1, key2)
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
