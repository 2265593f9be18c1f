package search

import (
	"go.uber.org/atomic"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// MaxPly mirrors eval.MaxPly: the ply-indexed arrays below (PV, killers,
// eval stack) are sized against the same recursion bound the score
// normalization in pkg/eval uses.
const MaxPly = eval.MaxPly

// pvTable is a triangular principal-variation buffer: pv[ply] holds the
// best line found from that ply downward, refreshed on every new best move.
type pvTable struct {
	line [MaxPly][MaxPly]board.Move
	n    [MaxPly]int
}

func (t *pvTable) update(ply int, m board.Move, child *pvTable) {
	t.line[ply][0] = m
	copy(t.line[ply][1:], child.line[ply+1][:child.n[ply+1]])
	t.n[ply] = child.n[ply+1] + 1
}

func (t *pvTable) clear(ply int) {
	t.n[ply] = 0
}

func (t *pvTable) moves(ply int) []board.Move {
	return append([]board.Move(nil), t.line[ply][:t.n[ply]]...)
}

// Thread is the per-worker search state described by SPEC_FULL §3/§5: a
// private position, PV buffer, killers/history/counter-move tables, and a
// per-ply static-eval stack. Nothing here is shared across worker
// goroutines except (by reference, outside this struct) the transposition
// table and the abort flag.
type Thread struct {
	ID  int
	Pos *board.Position

	TT   TranspositionTable
	Eval eval.Evaluator
	TB   *atomicTablebase

	Killers  Killers
	History  History
	Counters CounterMoves

	evalStack [MaxPly]eval.Score
	pv        pvTable

	Nodes    uint64
	TBHits   uint64
	SelDepth int

	// published mirrors Nodes at the abort-check cadence, so the main
	// worker can sum helper node counts mid-search without racing the
	// hot per-node increment of Nodes.
	published atomic.Uint64

	abort    *atomic.Bool
	nodeMask uint64 // abort/time check cadence, see SPEC_FULL §5
}

// NewThread creates a worker over its own clone of pos, so that Make/Undo
// recursion in one worker never observes another's mutations (SPEC_FULL §5).
func NewThread(id int, pos *board.Position, tt TranspositionTable, evaluator eval.Evaluator, tb *atomicTablebase, abort *atomic.Bool) *Thread {
	return &Thread{
		ID:       id,
		Pos:      pos.Clone(),
		TT:       tt,
		Eval:     evaluator,
		TB:       tb,
		abort:    abort,
		nodeMask: 1<<12 - 1, // check every ~4096 nodes, per SPEC_FULL §5
	}
}

// BeginSearch rebinds the thread to a fresh clone of pos and zeroes its
// per-search counters. Killer/history/counter-move tables deliberately
// persist across searches within a game and die with the owning Pool,
// which is itself rebuilt on "ucinewgame".
func (t *Thread) BeginSearch(pos *board.Position) {
	t.Pos = pos.Clone()
	t.Nodes = 0
	t.TBHits = 0
	t.SelDepth = 0
	t.published.Store(0)
}

// checkAbort is called on the node-count cadence described in SPEC_FULL §5.
// It never clears the flag; only the driver does that, between searches.
func (t *Thread) checkAbort() bool {
	t.published.Store(t.Nodes)
	return t.abort.Load()
}

// PublishNodes flushes the thread's node count for cross-thread readers;
// called by the thread itself at iteration boundaries.
func (t *Thread) PublishNodes() {
	t.published.Store(t.Nodes)
}

// PublishedNodes is the node count as of the thread's last publish point,
// safe to read from other goroutines while the thread is still searching.
func (t *Thread) PublishedNodes() uint64 {
	return t.published.Load()
}
