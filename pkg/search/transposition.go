package search

import (
	"context"
	"fmt"
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/seekerror/logw"
)

// Bound represents the bound of a -- possibly inexact -- search score.
type Bound uint8

const (
	ExactBound Bound = iota
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "Exact"
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	default:
		return "?"
	}
}

// TranspositionTable speeds up search by caching results keyed on the
// position's Zobrist hash. Must be thread-safe: multiple lazy-SMP worker
// threads read and write the same table concurrently.
type TranspositionTable interface {
	// Read returns the bound, depth, score, static eval and best move for
	// the given position hash, if present.
	Read(hash board.ZobristHash) (Bound, int, eval.Score, eval.Score, board.Move, bool)
	// Write stores the entry into the table, depending on replacement policy.
	Write(hash board.ZobristHash, bound Bound, depth int, score, staticEval eval.Score, move board.Move)

	// NewGeneration bumps the table's age counter, letting entries from a
	// prior search lose replacement priority without being cleared.
	NewGeneration()

	// Size returns the size of the table in bytes.
	Size() uint64
	// Used returns the utilization as a fraction [0;1], sampled from a
	// prefix of the table.
	Used() float64
}

type TranspositionTableFactory func(ctx context.Context, size uint64) TranspositionTable

// clusterSize is the number of entries sharing an index, so a few
// colliding hashes don't evict one another on every write. Extends the
// teacher's one-node-per-bucket design (DESIGN.md divergence #6) to the
// small-cluster layout common to bitboard engines.
const clusterSize = 4

// slot is one transposition table entry.
type slot struct {
	hash       uint32 // upper 32 bits of the full Zobrist hash, for verification
	move       board.Move
	score      eval.Score
	staticEval int16
	depth      int16
	bound      Bound
	age        uint8
}

func (s slot) empty() bool {
	return s.hash == 0 && s.move == board.NoMove && s.depth == 0
}

// replaceValue ranks a slot for eviction: older, shallower entries sort
// first. Lower is evicted first.
func (s slot) replaceValue(currentAge uint8) int {
	if s.empty() {
		return -1 << 30
	}
	ageDiff := int(currentAge - s.age)
	return int(s.depth) - 2*ageDiff
}

type cluster [clusterSize]slot

// table is a transposition table using a copy-on-write cluster per bucket,
// swapped in with a CAS loop: the teacher's lock-free-without-a-mutex style
// (atomic.LoadPointer/CompareAndSwapPointer on a single *node) applied to a
// cluster of entries instead of one.
type table struct {
	buckets []unsafe.Pointer // *cluster
	mask    uint64
	age     uint8
}

func NewTranspositionTable(ctx context.Context, size uint64) TranspositionTable {
	entrySize := uint64(unsafe.Sizeof(cluster{}))
	n := uint64(1)
	if clusters := size / entrySize; clusters > 1 {
		n = uint64(1) << (63 - bits.LeadingZeros64(clusters))
	}

	logw.Infof(ctx, "Allocating %vMB TT with %v clusters of %v entries", size>>20, n, clusterSize)

	return &table{
		buckets: make([]unsafe.Pointer, n),
		mask:    n - 1,
	}
}

func (t *table) Size() uint64 {
	return uint64(len(t.buckets)) * uint64(unsafe.Sizeof(cluster{}))
}

func (t *table) Used() float64 {
	sample := len(t.buckets)
	if sample > 1000 {
		sample = 1000
	}
	if sample == 0 {
		return 0
	}

	used := 0
	for i := 0; i < sample; i++ {
		ptr := (*cluster)(atomic.LoadPointer(&t.buckets[i]))
		if ptr == nil {
			continue
		}
		for _, s := range ptr {
			if !s.empty() {
				used++
			}
		}
	}
	return float64(used) / float64(sample*clusterSize)
}

func (t *table) NewGeneration() {
	t.age++
}

func verification(hash board.ZobristHash) uint32 {
	return uint32(uint64(hash) >> 32)
}

func (t *table) Read(hash board.ZobristHash) (Bound, int, eval.Score, eval.Score, board.Move, bool) {
	idx := uint64(hash) & t.mask
	ptr := (*cluster)(atomic.LoadPointer(&t.buckets[idx]))
	if ptr == nil {
		return 0, 0, 0, 0, board.NoMove, false
	}

	v := verification(hash)
	for _, s := range ptr {
		if !s.empty() && s.hash == v {
			return s.bound, int(s.depth), s.score, eval.Score(s.staticEval), s.move, true
		}
	}
	return 0, 0, 0, 0, board.NoMove, false
}

func (t *table) Write(hash board.ZobristHash, bound Bound, depth int, score, staticEval eval.Score, move board.Move) {
	idx := uint64(hash) & t.mask
	addr := &t.buckets[idx]
	v := verification(hash)

	fresh := slot{
		hash:       v,
		move:       move,
		score:      score,
		staticEval: int16(staticEval),
		depth:      int16(depth),
		bound:      bound,
		age:        t.age,
	}

	for {
		old := (*cluster)(atomic.LoadPointer(addr))

		var next cluster
		replace := 0
		if old != nil {
			next = *old
			worst := next[0].replaceValue(t.age)
			for i := 1; i < clusterSize; i++ {
				if val := next[i].replaceValue(t.age); val < worst {
					worst = val
					replace = i
				}
			}
			for i := 0; i < clusterSize; i++ {
				if next[i].hash == v {
					replace = i // always refresh the entry for this exact position
					break
				}
			}
			if fresh.move == board.NoMove && next[replace].move != board.NoMove && next[replace].hash == v {
				fresh.move = next[replace].move // preserve a hint move when this write carries none
			}
		}
		next[replace] = fresh

		if atomic.CompareAndSwapPointer(addr, unsafe.Pointer(old), unsafe.Pointer(&next)) {
			return
		}
	}
}

func (t *table) String() string {
	return fmt.Sprintf("TT[%v @ %v%%]", t.Size(), int(100*t.Used()))
}

// NoTranspositionTable is a Nop implementation, used by perft and tests that
// must not observe caching effects.
type NoTranspositionTable struct{}

func (NoTranspositionTable) Read(board.ZobristHash) (Bound, int, eval.Score, eval.Score, board.Move, bool) {
	return 0, 0, 0, 0, board.NoMove, false
}
func (NoTranspositionTable) Write(board.ZobristHash, Bound, int, eval.Score, eval.Score, board.Move) {}
func (NoTranspositionTable) NewGeneration()                                                          {}
func (NoTranspositionTable) Size() uint64                                                            { return 0 }
func (NoTranspositionTable) Used() float64                                                           { return 0 }
