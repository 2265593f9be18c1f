// corvid is a UCI chess engine built around a bitboard-based search and
// evaluation core. See: https://www.chessprogramming.org/UCI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/seekerror/logw"

	"github.com/corvidchess/corvid/pkg/book"
	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/engine/uci"
	"github.com/corvidchess/corvid/pkg/eval"
)

var (
	hash    = flag.Uint("hash", 16, "Transposition table size in MB")
	threads = flag.Uint("threads", 1, "Number of lazy-SMP search workers")
	noise   = flag.Int("noise", 0, "Evaluation noise in centipawns (zero if deterministic)")
	nnue    = flag.String("nnue", "", "Optional neural-network weights file replacing the classical evaluator")
	ownBook = flag.Bool("book", false, "Consult the built-in opening book before searching")
	bookDB  = flag.String("bookdb", "", "Optional persistent opening-book database directory")
	config  = flag.String("config", "", "Optional TOML file seeding engine options")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: corvid [options]

corvid is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	opts := engine.Options{Hash: *hash, Threads: *threads}
	if *config != "" {
		loaded, err := engine.LoadConfig(*config)
		if err != nil {
			logw.Exitf(ctx, "Invalid config %q: %v", *config, err)
		}
		opts = loaded.Merge(opts)
	}

	evaluator := eval.Evaluator(eval.NewClassical(4))
	if *nnue != "" {
		weights, err := eval.LoadNNUEWeights(*nnue)
		if err != nil {
			logw.Exitf(ctx, "Cannot load NNUE weights %q: %v", *nnue, err)
		}
		evaluator = eval.NewNNUE(weights)
	}
	if *noise > 0 {
		evaluator = eval.NewNoisy(evaluator, *noise, int64(os.Getpid()))
	}

	engineOpts := []engine.Option{engine.WithEvaluator(evaluator), engine.WithOptions(opts)}
	if *bookDB != "" {
		store, err := book.Open(*bookDB)
		if err != nil {
			logw.Exitf(ctx, "Cannot open book database %q: %v", *bookDB, err)
		}
		defer store.Close()
		engineOpts = append(engineOpts, engine.WithBook(store))
	}

	e := engine.New(ctx, "corvid", "corvidchess", engineOpts...)

	in := engine.ReadStdinLines(ctx)
	line, ok := <-in
	if !ok {
		return
	}
	if line != uci.ProtocolName {
		logw.Exitf(ctx, "Unsupported protocol handshake %q; only %q is supported", line, uci.ProtocolName)
	}

	var driverOpts []uci.Option
	if *ownBook || *bookDB != "" {
		driverOpts = append(driverOpts, uci.UseBook(int64(os.Getpid())))
	}

	driver, out := uci.NewDriver(ctx, e, in, driverOpts...)
	go engine.WriteStdoutLines(ctx, out)

	<-driver.Closed()
}
