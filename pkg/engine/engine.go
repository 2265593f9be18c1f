// Package engine wires together position state, the transposition table,
// the lazy-SMP search pool, and the opening book into the long-lived
// facade the UCI driver (pkg/engine/uci) and perft tooling talk to.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/seekerror/build"
	"github.com/seekerror/logw"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search"
)

var version = build.NewVersion(0, 1, 0)

// Options are the dynamic UCI-settable options described in SPEC_FULL §6.
type Options struct {
	// Hash is the transposition table size in MB, clamped to [8, 65536].
	Hash uint
	// Threads is the lazy-SMP worker count, clamped to [1, 256].
	Threads uint
	// SyzygyPath, if set, is the tablebase collaborator's probe directory.
	SyzygyPath string
}

func (o Options) String() string {
	return fmt.Sprintf("{hash=%vMB, threads=%v, syzygy=%q}", o.Hash, o.Threads, o.SyzygyPath)
}

const (
	MinHash, MaxHash       = 8, 65536
	MinThreads, MaxThreads = 1, 256
)

func clampHash(mb uint) uint {
	switch {
	case mb < MinHash:
		return MinHash
	case mb > MaxHash:
		return MaxHash
	default:
		return mb
	}
}

func clampThreads(n uint) uint {
	switch {
	case n < MinThreads:
		return MinThreads
	case n > MaxThreads:
		return MaxThreads
	default:
		return n
	}
}

// Engine owns the board position, transposition table, worker pool and
// options for the lifetime of a UCI session. Per DESIGN.md's scoping of
// the source's process-globals, this is the one long-lived mutable value;
// everything per-search is threaded through as immutable config (see
// search.Limits) or per-worker state (search.Thread), never globals.
type Engine struct {
	name, author string

	pos  *board.Position
	tt   search.TranspositionTable
	pool *search.Pool
	eval eval.Evaluator
	book Book
	tb   TablebaseProbe

	opts Options

	mu        sync.Mutex
	searchWG  sync.WaitGroup
	searching bool
}

// Option configures Engine construction.
type Option func(*Engine)

func WithBook(book Book) Option {
	return func(e *Engine) { e.book = book }
}

func WithEvaluator(evaluator eval.Evaluator) Option {
	return func(e *Engine) { e.eval = evaluator }
}

func WithOptions(opts Options) Option {
	return func(e *Engine) { e.opts = opts }
}

// New creates an Engine at the initial position with default options
// (Hash=16MB, Threads=1), overridable via Option.
func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:   name,
		author: author,
		eval:   eval.NewClassical(4),
		book:   NoBook,
		tb:     NoTablebase{},
		opts:   Options{Hash: 16, Threads: 1},
	}
	for _, fn := range opts {
		fn(e)
	}
	e.opts.Hash = clampHash(e.opts.Hash)
	e.opts.Threads = clampThreads(e.opts.Threads)

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

func (e *Engine) Name() string   { return fmt.Sprintf("%v %v", e.name, version) }
func (e *Engine) Author() string { return e.author }

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// SetHash resizes the transposition table. Per SPEC_FULL §9's resolution of
// the "resize mid-search" open question, this is rejected as a no-op while
// a search is active; callers (the UCI driver) only apply a pending resize
// once Halt has returned and joined the worker pool.
func (e *Engine) SetHash(ctx context.Context, mb uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.searching {
		logw.Errorf(ctx, "Cannot resize Hash to %vMB: search active", mb)
		return fmt.Errorf("cannot resize transposition table during an active search")
	}
	e.opts.Hash = clampHash(mb)
	e.tt = search.NewTranspositionTable(ctx, uint64(e.opts.Hash)<<20)
	e.pool = search.NewPool(e.tt, e.eval, int(e.opts.Threads))
	e.pool.SetTablebase(e.tb)
	return nil
}

func (e *Engine) SetThreads(n uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Threads = clampThreads(n)
	e.pool = search.NewPool(e.tt, e.eval, int(e.opts.Threads))
	e.pool.SetTablebase(e.tb)
}

func (e *Engine) SetSyzygyPath(ctx context.Context, path string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.SyzygyPath = path
	tb, err := NewTablebase(path)
	if err != nil {
		logw.Warningf(ctx, "Tablebase initialization failed for %q, probing disabled: %v", path, err)
		e.tb = NoTablebase{}
		e.pool.SetTablebase(e.tb)
		return
	}
	e.tb = tb
	e.pool.SetTablebase(e.tb)
}

// Position returns the current position in FEN.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fen.Encode(e.pos, e.pos.Turn(), e.pos.HalfmoveClock(), e.pos.FullmoveNumber())
}

// Reset resets to the position given in FEN and clears the transposition
// table and per-worker killer/history state, per "ucinewgame" semantics.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, _, _, _, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.pos = pos

	e.tt = search.NewTranspositionTable(ctx, uint64(e.opts.Hash)<<20)
	e.pool = search.NewPool(e.tt, e.eval, int(e.opts.Threads))
	e.pool.SetTablebase(e.tb)

	logw.Infof(ctx, "Reset to %v, options=%v", position, e.opts)
	return nil
}

// Move plays a single move, given in long algebraic notation, against the
// current position (typically the opponent's move from the GUI).
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	from, to, promo, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %w", err)
	}
	m, ok := board.FindMove(e.pos, from, to, promo)
	if !ok {
		return fmt.Errorf("illegal move: %v", move)
	}
	e.pos.Make(m)
	return nil
}

// Search runs a search from the current position under limits, reporting
// progress via post, and returns once the pool has fully halted.
func (e *Engine) Search(ctx context.Context, limits search.Limits, post search.PostFunc) search.Result {
	e.mu.Lock()
	pool := e.pool
	pos := e.pos
	e.searching = true
	e.mu.Unlock()

	e.searchWG.Add(1)
	defer e.searchWG.Done()

	result := pool.Search(ctx, pos, limits, post)

	e.mu.Lock()
	e.searching = false
	e.mu.Unlock()

	return result
}

// Halt requests the active search to stop as soon as its workers observe
// the abort flag, and waits for it to fully unwind.
func (e *Engine) Halt() {
	e.mu.Lock()
	pool := e.pool
	e.mu.Unlock()

	pool.Halt()
	e.searchWG.Wait()
}

// Book returns the engine's opening-book collaborator.
func (e *Engine) Book() Book { return e.book }

// Tablebase returns the engine's tablebase-probe collaborator.
func (e *Engine) Tablebase() TablebaseProbe { return e.tb }
