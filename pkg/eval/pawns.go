package eval

import "github.com/corvidchess/corvid/pkg/board"

// Pawn structure evaluation (doubled/isolated/connected/passed) cached in a
// pawn-hash table keyed by Position.PawnKey, since pawn structure changes far
// less often than the rest of the position during search. Grounded on the
// other_examples raklaptudirm/mess classical evaluator's pawn-term shape,
// adapted to this repo's magic-bitboard Position and two-key (full/pawn)
// Zobrist scheme.

var (
	doubledPenalty  = Tapered{-5, -15}
	isolatedPenalty = Tapered{-10, -15}
	backwardPenalty = Tapered{-8, -8}
	connectedBonus  = Tapered{5, 5}
	candidateBonus  = Tapered{10, 15}
	passedBonus     = [8]Tapered{{0, 0}, {5, 10}, {10, 20}, {20, 35}, {35, 60}, {60, 100}, {100, 150}, {0, 0}}
	spaceBonusPerSq = Score(1)
)

// PawnEntry is the cached per-pawn-key result: side-relative structural
// score plus each side's passed-pawn bitboard, consumed by the passed-pawn
// king-distance term in passed.go.
type PawnEntry struct {
	Key    board.ZobristHash
	Score  Tapered
	Passed [board.NumColors]board.Bitboard
	Valid  bool
}

// PawnHash is a direct-mapped cache of PawnEntry indexed by the low bits of
// the pawn Zobrist key. Not safe for concurrent use across goroutines that
// share a single instance; each search worker owns its own (see
// pkg/search/pool.go), mirroring the per-worker ownership of killers/history.
type PawnHash struct {
	entries []PawnEntry
	mask    uint64
}

// NewPawnHash allocates a pawn-hash table sized to the next power of two at
// or above sizeMB megabytes of entries.
func NewPawnHash(sizeMB int) *PawnHash {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	n := (sizeMB * 1024 * 1024) / entrySize
	count := 1
	for count < n {
		count <<= 1
	}
	return &PawnHash{entries: make([]PawnEntry, count), mask: uint64(count - 1)}
}

const entrySize = 96 // approximate PawnEntry footprint, for sizing only

func (h *PawnHash) probe(pos *board.Position) (PawnEntry, bool) {
	idx := uint64(pos.PawnKey()) & h.mask
	e := h.entries[idx]
	if e.Valid && e.Key == pos.PawnKey() {
		return e, true
	}
	return PawnEntry{}, false
}

func (h *PawnHash) store(pos *board.Position, e PawnEntry) {
	idx := uint64(pos.PawnKey()) & h.mask
	e.Key = pos.PawnKey()
	e.Valid = true
	h.entries[idx] = e
}

// Evaluate computes (or retrieves from cache) the pawn-structure term.
func (h *PawnHash) Evaluate(pos *board.Position) PawnEntry {
	if h != nil {
		if e, ok := h.probe(pos); ok {
			return e
		}
	}
	e := computePawnEntry(pos)
	if h != nil {
		h.store(pos, e)
	}
	return e
}

func computePawnEntry(pos *board.Position) PawnEntry {
	var e PawnEntry
	e.Score = e.Score.Add(evalPawnsForColor(pos, board.White, &e.Passed[board.White]))
	e.Score = e.Score.Sub(evalPawnsForColor(pos, board.Black, &e.Passed[board.Black]))
	return e
}

func evalPawnsForColor(pos *board.Position, us board.Color, passedOut *board.Bitboard) Tapered {
	them := us.Opponent()
	ownPawns := pos.Piece(us, board.Pawn)
	enemyPawns := pos.Piece(them, board.Pawn)

	var total Tapered
	bb := ownPawns
	for bb != 0 {
		sq := bb.PopLSB()
		f := sq.File()

		fileBB := board.BitFile(f)
		if (ownPawns & fileBB).PopCount() > 1 {
			total = total.Add(doubledPenalty)
		}

		adjacent := adjacentFiles(f)
		if ownPawns&adjacent == 0 {
			total = total.Add(isolatedPenalty)
		} else if isBackward(pos, us, sq, ownPawns, enemyPawns) {
			total = total.Add(backwardPenalty)
		} else if board.PawnCaptureboard(them, board.BitMask(sq))&ownPawns != 0 {
			total = total.Add(connectedBonus)
		}

		if isPassed(us, sq, enemyPawns) {
			*passedOut |= board.BitMask(sq)
			rank := relativeRank(us, sq)
			total = total.Add(passedBonus[rank])
		} else if isCandidate(us, sq, ownPawns, enemyPawns) {
			total = total.Add(candidateBonus)
		}
	}
	return total
}

// adjacentFiles returns the bitboard of the files immediately left/right of f.
func adjacentFiles(f board.File) board.Bitboard {
	var bb board.Bitboard
	if f > board.FileA {
		bb |= board.BitFile(f - 1)
	}
	if f < board.FileH {
		bb |= board.BitFile(f + 1)
	}
	return bb
}

// passedFileSpan returns the bitboard of the pawn's own file plus adjacent
// files, restricted to squares strictly ahead of it (from us's perspective).
func passedFileSpan(us board.Color, sq board.Square) board.Bitboard {
	files := board.BitFile(sq.File()) | adjacentFiles(sq.File())
	var ahead board.Bitboard
	if us == board.White {
		for r := sq.Rank() + 1; ; r++ {
			ahead |= board.BitRank(r)
			if r == board.Rank8 {
				break
			}
		}
	} else {
		for r := sq.Rank(); ; r-- {
			if r == board.Rank1 {
				break
			}
			ahead |= board.BitRank(r - 1)
		}
	}
	return files & ahead
}

func isPassed(us board.Color, sq board.Square, enemyPawns board.Bitboard) bool {
	return passedFileSpan(us, sq)&enemyPawns == 0
}

// isCandidate reports a simplified "candidate passer": no enemy pawn directly
// ahead on its own file, though adjacent files may still carry defenders.
func isCandidate(us board.Color, sq board.Square, ownPawns, enemyPawns board.Bitboard) bool {
	ownFileAhead := passedFileSpan(us, sq) & board.BitFile(sq.File())
	return ownFileAhead&enemyPawns == 0 && passedFileSpan(us, sq)&enemyPawns != 0
}

// isBackward reports whether sq's pawn cannot safely advance: no own pawn on
// an adjacent file is level with or behind it, and its stop square is
// controlled by an enemy pawn.
func isBackward(pos *board.Position, us board.Color, sq board.Square, ownPawns, enemyPawns board.Bitboard) bool {
	stop := pawnStopSquare(us, sq)
	if !stop.IsValid() {
		return false
	}
	if board.PawnCaptureboard(us, board.BitMask(stop))&enemyPawns == 0 {
		return false
	}
	adjacent := adjacentFiles(sq.File())
	behindOrLevel := ownPawns & adjacent
	for behindOrLevel != 0 {
		s := behindOrLevel.PopLSB()
		if relativeRank(us, s) <= relativeRank(us, sq) {
			return false
		}
	}
	return true
}

func pawnStopSquare(us board.Color, sq board.Square) board.Square {
	if us == board.White {
		if sq.Rank() == board.Rank8 {
			return 64
		}
		return board.NewSquare(sq.File(), sq.Rank()+1)
	}
	if sq.Rank() == board.Rank1 {
		return 64
	}
	return board.NewSquare(sq.File(), sq.Rank()-1)
}

// relativeRank returns sq's rank as "ranks advanced" from us's own back rank:
// 0 on the home rank, 7 on the promotion rank.
func relativeRank(us board.Color, sq board.Square) int {
	if us == board.White {
		return int(sq.Rank())
	}
	return int(board.Rank8 - sq.Rank())
}

// spaceBonus rewards squares on ranks 2-4 (from us's perspective) controlled
// by own pawns and free of enemy pawn attacks, a coarse "behind the pawns"
// space metric.
func spaceBonus(pos *board.Position, us board.Color) Tapered {
	them := us.Opponent()
	ownPawns := pos.Piece(us, board.Pawn)
	var zone board.Bitboard
	if us == board.White {
		zone = board.BitRank(board.Rank2) | board.BitRank(board.Rank3) | board.BitRank(board.Rank4)
	} else {
		zone = board.BitRank(board.Rank7) | board.BitRank(board.Rank6) | board.BitRank(board.Rank5)
	}
	controlled := board.PawnCaptureboard(us, ownPawns) & zone &^ board.PawnCaptureboard(them, pos.Piece(them, board.Pawn))
	bonus := Score(controlled.PopCount()) * spaceBonusPerSq
	return Tapered{bonus, 0}
}
