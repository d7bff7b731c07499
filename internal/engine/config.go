// Package engine wires the language models, dictionaries, segmenter,
// graph builder, and resolver into the conversion facade.
package engine

import (
	"github.com/mkanda/kkc/internal/dict"
	"github.com/mkanda/kkc/internal/graph"
)

// DictUsage selects how an extra dictionary participates.
type DictUsage string

const (
	// DictUsageNormal merges the dictionary into the main kana-kanji
	// dictionary.
	DictUsageNormal DictUsage = "normal"
	// DictUsageSingleTerm merges it into the single-term dictionary,
	// consulted only for whole-reading segments.
	DictUsageSingleTerm DictUsage = "single-term"
)

// DictConfig names one extra SKK dictionary source.
type DictConfig struct {
	Path     string
	Encoding dict.Encoding
	Usage    DictUsage
}

// Config drives Build.
type Config struct {
	// Model is the directory holding unigram.model, bigram.model,
	// skip_bigram.model (optional), and SKK-JISYO.akaza.
	Model string

	// Dicts are additional dictionaries merged on top of the system
	// one.
	Dicts []DictConfig

	// DictCache persists the merged dictionary next to the model and
	// reuses it while the sources are unchanged.
	DictCache bool

	// UserDataDir is the LevelDB directory for the learning store.
	// Empty runs with an in-memory store.
	UserDataDir string

	// RerankWeights configures the k-best re-ranker.
	RerankWeights graph.RerankWeights
}

// Default file names inside the model directory.
const (
	UnigramModelFile    = "unigram.model"
	BigramModelFile     = "bigram.model"
	SkipBigramModelFile = "skip_bigram.model"
	SystemDictFile      = "SKK-JISYO.akaza"

	dictCacheFile       = "kana_kanji_cache.bin"
	singleTermCacheFile = "single_term_cache.bin"
)
