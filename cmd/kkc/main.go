// Command kkc is the interactive kana-kanji conversion front end: a
// readline REPL over the conversion engine, plus a one-shot mode for
// scripting. Accepted conversions feed the user-learning store.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"

	"github.com/mkanda/kkc/internal/convlog"
	"github.com/mkanda/kkc/internal/engine"
	"github.com/mkanda/kkc/internal/graph"
	"github.com/mkanda/kkc/internal/types"
)

func main() {
	// Load env overrides first so flag defaults can see them.
	_ = godotenv.Load(".env")

	homeDir, _ := os.UserHomeDir()
	cacheDir := filepath.Join(homeDir, ".cache", "kkc")
	dataDir := filepath.Join(homeDir, ".local", "share", "kkc")

	modelDir := flag.String("model", envOr("KKC_MODEL", "model"), "model directory")
	userDir := flag.String("user", envOr("KKC_USER_DATA", filepath.Join(dataDir, "user")), "user-learning LevelDB directory ('' = in-memory)")
	k := flag.Int("k", 10, "k-best width")
	noCache := flag.Bool("no-dict-cache", false, "rebuild the dictionary instead of using the cache")
	flag.Parse()

	_ = os.MkdirAll(cacheDir, 0755)
	if *userDir != "" {
		_ = os.MkdirAll(filepath.Dir(*userDir), 0755)
	}

	// Redirect debug logs to a file so they don't interfere with the
	// terminal. Tail ~/.cache/kkc/debug.log to observe engine activity.
	if f, err := os.OpenFile(filepath.Join(cacheDir, "debug.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))
		defer f.Close()
	}

	eng, err := engine.Build(engine.Config{
		Model:       *modelDir,
		DictCache:   !*noCache,
		UserDataDir: *userDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "kkc: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()

	logReg := convlog.NewRegistry(filepath.Join(cacheDir, "sessions"))
	sess := logReg.Open("")
	defer logReg.Close(sess.ID())

	// One-shot mode: convert the arguments and exit.
	if flag.NArg() > 0 {
		reading := strings.Join(flag.Args(), "")
		if err := convertOnce(eng, sess, reading, *k); err != nil {
			fmt.Fprintf(os.Stderr, "kkc: %v\n", err)
			os.Exit(1)
		}
		return
	}

	runREPL(eng, sess, *k)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func convertOnce(eng *engine.Engine, sess *convlog.SessionLog, reading string, k int) error {
	start := time.Now()
	paths, err := eng.ConvertKBest(reading, nil, k)
	logConvert(sess, reading, paths, k, time.Since(start), err)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}
	fmt.Println(strings.Join(paths[0].Surfaces(), ""))
	return nil
}

// repl holds the state carried between lines: the previous conversion
// and the per-clause candidate selection.
type repl struct {
	eng       *engine.Engine
	sess      *convlog.SessionLog
	k         int
	reading   string
	clauses   [][]types.Candidate
	selection []int
}

func runREPL(eng *engine.Engine, sess *convlog.SessionLog, k int) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ansiBold + "kkc> " + ansiReset,
		HistoryFile:     filepath.Join(os.TempDir(), "kkc_history"),
		InterruptPrompt: "^C",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "kkc: readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	// Ctrl+C is handled by readline per line; SIGTERM ends the session.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		<-sigCh
		rl.Close()
	}()

	fmt.Println(ansiDim + "hiragana to convert, :help for commands, ^D to quit" + ansiReset)
	r := &repl{eng: eng, sess: sess, k: k}
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or closed
			if err == readline.ErrInterrupt {
				continue
			}
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			r.command(line)
			continue
		}
		r.convert(line)
	}
}

func (r *repl) convert(reading string) {
	start := time.Now()
	paths, err := r.eng.ConvertKBest(reading, nil, r.k)
	logConvert(r.sess, reading, paths, r.k, time.Since(start), err)
	if err != nil {
		fmt.Printf("%sconversion failed: %v%s\n", ansiRed, err, ansiReset)
		return
	}
	if len(paths) == 0 || len(paths[0].Segments) == 0 {
		fmt.Println(ansiDim + "(nothing to convert)" + ansiReset)
		return
	}
	r.reading = reading
	r.clauses = paths[0].Segments
	r.selection = make([]int, len(r.clauses))
	fmt.Print(renderClauses(r.clauses, r.selection))
}

func (r *repl) command(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help":
		fmt.Print(helpText)
	case ":k":
		if len(fields) == 2 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
				r.k = n
				fmt.Printf("k = %d\n", n)
				return
			}
		}
		fmt.Println("usage: :k <n>")
	case ":kbest":
		if len(fields) != 2 {
			fmt.Println("usage: :kbest <reading>")
			return
		}
		start := time.Now()
		paths, err := r.eng.ConvertKBest(fields[1], nil, r.k)
		logConvert(r.sess, fields[1], paths, r.k, time.Since(start), err)
		if err != nil {
			fmt.Printf("%sconversion failed: %v%s\n", ansiRed, err, ansiReset)
			return
		}
		fmt.Print(renderKBest(paths))
	case ":pick":
		if len(fields) != 3 {
			fmt.Println("usage: :pick <clause> <candidate>")
			return
		}
		c, err1 := strconv.Atoi(fields[1])
		n, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || c < 1 || c > len(r.clauses) ||
			n < 1 || n > len(r.clauses[c-1]) {
			fmt.Println("pick out of range")
			return
		}
		r.selection[c-1] = n - 1
		fmt.Print(renderClauses(r.clauses, r.selection))
	case ":learn":
		if len(r.clauses) == 0 {
			fmt.Println("nothing to learn; convert something first")
			return
		}
		cands := make([]types.Candidate, 0, len(r.clauses))
		keys := make([]string, 0, len(r.clauses))
		for i, clause := range r.clauses {
			c := clause[r.selection[i]]
			cands = append(cands, c)
			keys = append(keys, c.Key())
		}
		r.eng.Learn(cands)
		r.sess.Learn(keys)
		fmt.Printf("%slearned:%s %s → %s\n", ansiGreen, ansiReset, clip(r.reading, 24), joinSurfaces(cands))
	default:
		fmt.Printf("unknown command %s (:help)\n", fields[0])
	}
}

const helpText = `  <hiragana>         convert a reading
  :k <n>             set the k-best width
  :kbest <reading>   show k-best paths with cost breakdown
  :pick <c> <n>      select candidate n for clause c
  :learn             record the current selection into the user store
`

func logConvert(sess *convlog.SessionLog, reading string, paths []graph.KBestPath, k int, elapsed time.Duration, err error) {
	var surfaces []string
	candidates := 0
	if len(paths) > 0 {
		surfaces = paths[0].Surfaces()
		for _, clause := range paths[0].Segments {
			candidates += len(clause)
		}
	}
	sess.Convert(reading, surfaces, k, len(paths), candidates, elapsed, err)
}

func joinSurfaces(cands []types.Candidate) string {
	var b strings.Builder
	for _, c := range cands {
		b.WriteString(c.Surface)
	}
	return b.String()
}
