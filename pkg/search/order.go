package search

import (
	"sort"

	"github.com/corvidchess/corvid/pkg/board"
)

// Move ordering assigns each legal move a sortable priority reflecting the
// staged pipeline of DESIGN.md/SPEC_FULL §4.4: transposition-table move,
// then winning captures by static exchange value, then killers, then
// counter-moves, then remaining quiets by history cutoff-rate, then losing
// captures last. Grounded on the teacher's movelist.go container/heap
// priority-queue pattern, adapted here to a single up-front sort since the
// whole legal move list is already materialized by GenerateQuiet/Captures.
type orderBand int32

const (
	bandLosingCapture orderBand = iota
	bandQuiet
	bandCounterMove
	bandKiller
	bandWinningCapture
	bandTTMove
)

const bandShift = 20 // headroom for SEE/history sub-scores within a band

// historyEntry tracks the beta-cutoff rate of a (color, piece, to-square)
// quiet move, per SPEC_FULL §4.4.
type historyEntry struct {
	searched uint32
	cutoff   uint32
}

func (h historyEntry) rate() int32 {
	if h.searched == 0 {
		return 0
	}
	return int32(h.cutoff) * 1024 / int32(h.searched)
}

// History is per-worker quiet-move scoring, never shared across threads.
type History [board.NumColors][board.NumPieces][board.NumSquares]historyEntry

func (h *History) score(us board.Color, m board.Move) int32 {
	return h[us][m.Piece()][m.To()].rate()
}

func (h *History) onSearched(us board.Color, m board.Move) {
	e := &h[us][m.Piece()][m.To()]
	if e.searched < 1<<20 {
		e.searched++
	} else {
		e.searched /= 2
		e.cutoff /= 2
	}
}

func (h *History) onCutoff(us board.Color, m board.Move) {
	h[us][m.Piece()][m.To()].cutoff++
}

// Killers holds up to two quiet killer moves per ply per side, heuristically
// promoted after causing a beta cutoff.
type Killers [MaxPly][board.NumColors][2]board.Move

func (k *Killers) has(ply int, us board.Color, m board.Move) bool {
	return k[ply][us][0] == m || k[ply][us][1] == m
}

func (k *Killers) promote(ply int, us board.Color, m board.Move) {
	if k[ply][us][0] == m {
		return
	}
	k[ply][us][1] = k[ply][us][0]
	k[ply][us][0] = m
}

// CounterMoves records the two best quiet replies previously found against
// a given (mover-color, mover-piece, to-square) triple, keyed by the move
// that was just made at the parent node. New entries demote the prior best
// into the second slot, like killers.
type CounterMoves [board.NumColors][board.NumPieces][board.NumSquares][2]board.Move

func (c *CounterMoves) get(prev board.Move, prevColor board.Color) [2]board.Move {
	if prev.IsNone() || prev.IsNull() {
		return [2]board.Move{}
	}
	return c[prevColor][prev.Piece()][prev.To()]
}

func (c *CounterMoves) set(prev board.Move, prevColor board.Color, reply board.Move) {
	if prev.IsNone() || prev.IsNull() {
		return
	}
	slot := &c[prevColor][prev.Piece()][prev.To()]
	if slot[0] == reply {
		return
	}
	slot[1] = slot[0]
	slot[0] = reply
}

// orderMoves sorts moves in place in the staged priority order described
// above. It returns nothing.
func orderMoves(pos *board.Position, moves []board.Move, ttMove board.Move, ply int, us board.Color, prev board.Move, prevColor board.Color, killers *Killers, history *History, counters *CounterMoves) {
	counter := counters.get(prev, prevColor)

	type scored struct {
		m   board.Move
		key int64
	}
	list := make([]scored, len(moves))
	for i, m := range moves {
		var band orderBand
		var sub int32

		switch {
		case m == ttMove:
			band = bandTTMove
		case m.IsCapture() || m.IsPromotion():
			see := board.SEE(pos, m)
			sub = int32(see) + 1<<16 // keep sub-score non-negative for stable packing
			if see >= 0 {
				band = bandWinningCapture
			} else {
				band = bandLosingCapture
			}
		case killers.has(ply, us, m):
			band = bandKiller
			if m == killers[ply][us][0] {
				sub = 1
			}
		case !m.IsNone() && (m == counter[0] || m == counter[1]):
			band = bandCounterMove
			if m == counter[0] {
				sub = 1
			}
		default:
			band = bandQuiet
			sub = history.score(us, m) + 1<<16
		}

		list[i] = scored{m: m, key: int64(band)<<bandShift | int64(sub)}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].key > list[j].key
	})
	for i, s := range list {
		moves[i] = s.m
	}
}
