package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mkanda/kkc/internal/dict"
	"github.com/mkanda/kkc/internal/graph"
	"github.com/mkanda/kkc/internal/kanatrie"
	"github.com/mkanda/kkc/internal/lm"
	"github.com/mkanda/kkc/internal/types"
	"github.com/mkanda/kkc/internal/userdata"
)

// Engine is the conversion facade. Everything but the user-learning
// store is immutable after Build, so one Engine may serve concurrent
// queries.
type Engine struct {
	segmenter *kanatrie.Segmenter
	builder   *graph.Builder
	resolver  *graph.Resolver
	weights   graph.RerankWeights
	userData  *userdata.UserData
}

// Build loads the models and dictionaries named by cfg and assembles
// the engine. Missing or corrupt required files are fatal; the
// skip-bigram model is optional.
func Build(cfg Config) (*Engine, error) {
	unigram, err := lm.LoadUnigram(filepath.Join(cfg.Model, UnigramModelFile))
	if err != nil {
		return nil, fmt.Errorf("engine build: %w", err)
	}
	bigram, err := lm.LoadBigram(filepath.Join(cfg.Model, BigramModelFile))
	if err != nil {
		return nil, fmt.Errorf("engine build: %w", err)
	}
	var skip *lm.SkipBigram
	skipPath := filepath.Join(cfg.Model, SkipBigramModelFile)
	if _, statErr := os.Stat(skipPath); statErr == nil {
		skip, err = lm.LoadSkipBigram(skipPath)
		if err != nil {
			return nil, fmt.Errorf("engine build: %w", err)
		}
		slog.Info("loaded skip-bigram model", "path", skipPath)
	} else {
		slog.Info("skip-bigram model not found (optional)", "path", skipPath)
	}

	normalSpecs := []dict.Spec{{Path: filepath.Join(cfg.Model, SystemDictFile), Encoding: dict.EncodingUTF8}}
	var singleSpecs []dict.Spec
	for _, dc := range cfg.Dicts {
		spec := dict.Spec{Path: dc.Path, Encoding: dc.Encoding}
		if dc.Usage == DictUsageSingleTerm {
			singleSpecs = append(singleSpecs, spec)
		} else {
			normalSpecs = append(normalSpecs, spec)
		}
	}
	systemDict, err := loadDicts(cfg, normalSpecs, dictCacheFile)
	if err != nil {
		return nil, fmt.Errorf("engine build: %w", err)
	}
	singleTermDict, err := loadDicts(cfg, singleSpecs, singleTermCacheFile)
	if err != nil {
		return nil, fmt.Errorf("engine build: %w", err)
	}

	ud := userdata.New()
	if cfg.UserDataDir != "" {
		ud, err = userdata.Open(cfg.UserDataDir)
		if err != nil {
			return nil, fmt.Errorf("engine build: %w", err)
		}
	}

	yomis := append(systemDict.Yomis(), singleTermDict.Yomis()...)
	kanaTrie, err := kanatrie.Build(yomis)
	if err != nil {
		return nil, fmt.Errorf("engine build: kana trie: %w", err)
	}

	weights := cfg.RerankWeights
	if (weights == graph.RerankWeights{}) {
		weights = graph.DefaultRerankWeights()
	}
	skipWeight := weights.SkipBigram
	if skip == nil {
		skipWeight = 0
	}

	return &Engine{
		segmenter: kanatrie.NewSegmenter(kanaTrie, ud.KanaTrie()),
		builder:   graph.NewBuilder(systemDict, singleTermDict, ud, unigram, bigram, skip),
		resolver:  graph.NewResolver(skipWeight),
		weights:   weights,
		userData:  ud,
	}, nil
}

func loadDicts(cfg Config, specs []dict.Spec, cacheName string) (*dict.KanaKanji, error) {
	if len(specs) == 0 {
		return dict.NewKanaKanji(nil), nil
	}
	if cfg.DictCache {
		return dict.LoadWithCache(specs, filepath.Join(cfg.Model, cacheName))
	}
	return dict.Load(specs)
}

// Close releases the user store.
func (e *Engine) Close() error {
	return e.userData.Close()
}

// UserData exposes the learning store, e.g. for direct inspection.
func (e *Engine) UserData() *userdata.UserData { return e.userData }

// ToLattice segments the reading and builds its lattice.
func (e *Engine) ToLattice(yomi string, forceRanges []types.Range) *graph.Lattice {
	seg := e.segmenter.Build(yomi, forceRanges)
	return e.builder.Construct(yomi, seg)
}

// Resolve runs the plain Viterbi search on a lattice, without
// re-ranking.
func (e *Engine) Resolve(l *graph.Lattice) ([][]types.Candidate, error) {
	return e.resolver.Resolve(l)
}

// ConvertKBest returns up to k distinct segmentation patterns,
// re-ranked.
func (e *Engine) ConvertKBest(yomi string, forceRanges []types.Range, k int) ([]graph.KBestPath, error) {
	if yomi == "" {
		return nil, nil
	}
	lattice := e.ToLattice(yomi, forceRanges)
	paths, err := e.resolver.ResolveKBest(lattice, k)
	if err != nil {
		return nil, err
	}
	e.weights.Rerank(paths)
	return paths, nil
}

// Convert returns the clause candidate lists of the best path after
// re-ranking. An empty reading converts to nothing.
func (e *Engine) Convert(yomi string, forceRanges []types.Range) ([][]types.Candidate, error) {
	paths, err := e.ConvertKBest(yomi, forceRanges, 10)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	return paths[0].Segments, nil
}

// Learn feeds an accepted conversion into the user store.
func (e *Engine) Learn(candidates []types.Candidate) {
	e.userData.RecordEntries(candidates)
}
