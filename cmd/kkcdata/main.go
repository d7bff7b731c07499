// Command kkcdata is the model pipeline: it tokenizes a raw corpus,
// counts word frequencies, extracts the vocabulary, and packs the
// unigram / bigram / skip-bigram models the engine loads.
//
// A full build runs:
//
//	kkcdata tokenize -src corpus/raw -dst corpus/tokenized
//	kkcdata wfreq -src corpus/tokenized -dst work/wfreq.tsv
//	kkcdata vocab -src work/wfreq.tsv -dst work/vocab.txt
//	kkcdata unigram -wfreq work/wfreq.tsv -dst model/unigram.model
//	kkcdata bigram -corpus corpus/tokenized -unigram model/unigram.model -dst model/bigram.model
//	kkcdata skip-bigram -corpus corpus/tokenized -unigram model/unigram.model -dst model/skip_bigram.model
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkanda/kkc/internal/corpus"
)

func main() {
	log.SetFlags(log.Ltime)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "tokenize":
		err = cmdTokenize(os.Args[2:])
	case "wfreq":
		err = cmdWfreq(os.Args[2:])
	case "vocab":
		err = cmdVocab(os.Args[2:])
	case "unigram":
		err = cmdUnigram(os.Args[2:])
	case "bigram":
		err = cmdBigram(os.Args[2:])
	case "skip-bigram":
		err = cmdSkipBigram(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "kkcdata %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kkcdata <tokenize|wfreq|vocab|unigram|bigram|skip-bigram> [flags]")
}

func cmdTokenize(args []string) error {
	fs := flag.NewFlagSet("tokenize", flag.ExitOnError)
	src := fs.String("src", "", "raw corpus directory")
	dst := fs.String("dst", "", "output directory for tokenized files")
	fs.Parse(args)
	if *src == "" || *dst == "" {
		return fmt.Errorf("-src and -dst are required")
	}
	if err := os.MkdirAll(*dst, 0755); err != nil {
		return err
	}

	tk, err := corpus.NewTokenizer()
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(*src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		log.Printf("tokenize %s", e.Name())
		data, err := os.ReadFile(filepath.Join(*src, e.Name()))
		if err != nil {
			return err
		}
		out, err := os.Create(filepath.Join(*dst, e.Name()))
		if err != nil {
			return err
		}
		w := bufio.NewWriter(out)
		for _, line := range tk.TokenizeText(string(data)) {
			fmt.Fprintln(w, line)
		}
		if err := w.Flush(); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
	}
	return nil
}

func cmdWfreq(args []string) error {
	fs := flag.NewFlagSet("wfreq", flag.ExitOnError)
	src := fs.String("src", "", "tokenized corpus directories (comma separated)")
	dst := fs.String("dst", "", "output frequency table")
	fs.Parse(args)
	if *src == "" || *dst == "" {
		return fmt.Errorf("-src and -dst are required")
	}
	counts, err := corpus.CountWords(strings.Split(*src, ","))
	if err != nil {
		return err
	}
	log.Printf("wfreq: %d distinct tokens", len(counts))
	return corpus.WriteWfreq(counts, *dst)
}

func cmdVocab(args []string) error {
	fs := flag.NewFlagSet("vocab", flag.ExitOnError)
	src := fs.String("src", "", "frequency table")
	dst := fs.String("dst", "", "output vocabulary list")
	threshold := fs.Uint("threshold", corpus.DefaultUnigramThreshold, "minimum count")
	fs.Parse(args)
	if *src == "" || *dst == "" {
		return fmt.Errorf("-src and -dst are required")
	}
	counts, err := corpus.ReadWfreq(*src)
	if err != nil {
		return err
	}
	words := corpus.Vocab(counts, uint32(*threshold))
	log.Printf("vocab: %d words over threshold %d", len(words), *threshold)
	return os.WriteFile(*dst, []byte(strings.Join(words, "\n")+"\n"), 0644)
}

func cmdUnigram(args []string) error {
	fs := flag.NewFlagSet("unigram", flag.ExitOnError)
	wfreq := fs.String("wfreq", "", "frequency table")
	dst := fs.String("dst", "", "output unigram.model")
	threshold := fs.Uint("threshold", corpus.DefaultUnigramThreshold, "minimum count")
	fs.Parse(args)
	if *wfreq == "" || *dst == "" {
		return fmt.Errorf("-wfreq and -dst are required")
	}
	counts, err := corpus.ReadWfreq(*wfreq)
	if err != nil {
		return err
	}
	log.Printf("unigram: packing %s", *dst)
	return corpus.BuildUnigramModel(counts, *dst, uint32(*threshold))
}

func cmdBigram(args []string) error {
	fs := flag.NewFlagSet("bigram", flag.ExitOnError)
	corpusDirs := fs.String("corpus", "", "tokenized corpus directories (comma separated)")
	unigram := fs.String("unigram", "", "unigram.model path")
	dst := fs.String("dst", "", "output bigram.model")
	threshold := fs.Uint("threshold", 3, "minimum pair count")
	fs.Parse(args)
	if *corpusDirs == "" || *unigram == "" || *dst == "" {
		return fmt.Errorf("-corpus, -unigram, and -dst are required")
	}
	log.Printf("bigram: packing %s", *dst)
	return corpus.BuildBigramModel(strings.Split(*corpusDirs, ","), *unigram, *dst, uint32(*threshold))
}

func cmdSkipBigram(args []string) error {
	fs := flag.NewFlagSet("skip-bigram", flag.ExitOnError)
	corpusDirs := fs.String("corpus", "", "tokenized corpus directories (comma separated)")
	unigram := fs.String("unigram", "", "unigram.model path")
	dst := fs.String("dst", "", "output skip_bigram.model")
	threshold := fs.Uint("threshold", 3, "minimum pair count")
	fs.Parse(args)
	if *corpusDirs == "" || *unigram == "" || *dst == "" {
		return fmt.Errorf("-corpus, -unigram, and -dst are required")
	}
	log.Printf("skip-bigram: packing %s", *dst)
	return corpus.BuildSkipBigramModel(strings.Split(*corpusDirs, ","), *unigram, *dst, uint32(*threshold))
}
