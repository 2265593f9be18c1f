package eval

import (
	"fmt"

	"github.com/corvidchess/corvid/pkg/board"
)

// Score is a signed centipawn evaluation or search score. Positive favors
// the side to move (search contexts) or White (position-level Evaluate).
// Unified from the teacher's three separate Score types (board.Score int16,
// eval.Score float32, and an ad-hoc float used locally in search) into one
// integer type carrying both evaluation and search-score conventions, per
// DESIGN.md divergence #4.
type Score int32

const (
	// MaxPly bounds search recursion depth and the per-ply arrays (PV,
	// killers, eval stack) sized against it.
	MaxPly = 128

	// MateValue is the score assigned to "mate in 0" at the mating node.
	// Scores within MateValue-MaxPly of this are mate scores.
	MateValue Score = 32000

	// MaxScore/MinScore bound the alpha-beta window.
	MaxScore Score = 32767
	MinScore Score = -MaxScore

	// EGTBWin is the score assigned to a tablebase win. It lies below the
	// mate range, so ScoreToTT/ScoreFromTT store and read it unadjusted.
	EGTBWin Score = 25000

	// DrawScore is the contempt-free evaluation of a drawn position.
	DrawScore Score = 0
)

func (s Score) String() string {
	if m, ok := s.MateIn(); ok {
		return fmt.Sprintf("mate %d", m)
	}
	return fmt.Sprintf("%.2f", float64(s)/100)
}

// IsMateScore reports whether s encodes a forced mate (for or against) within
// MaxPly plies, as opposed to an ordinary material/positional evaluation.
func (s Score) IsMateScore() bool {
	return s >= MateValue-MaxPly || s <= -(MateValue-MaxPly)
}

// MateIn returns the number of full moves to mate (positive = side to move
// delivers it, negative = side to move is mated) if s is a mate score.
func (s Score) MateIn() (int, bool) {
	switch {
	case s >= MateValue-MaxPly:
		plies := int(MateValue - s)
		return (plies + 1) / 2, true
	case s <= -(MateValue - MaxPly):
		plies := int(MateValue + s)
		return -(plies + 1) / 2, true
	default:
		return 0, false
	}
}

// ScoreToTT adjusts a node-local score into a root-distance-independent form
// before storing it in the transposition table: mate scores found at a
// non-root node are shifted so that a later probe at a different ply
// reconstructs the correct distance-from-that-node value.
func ScoreToTT(s Score, ply int) Score {
	switch {
	case s >= MateValue-MaxPly:
		return s + Score(ply)
	case s <= -(MateValue - MaxPly):
		return s - Score(ply)
	default:
		return s
	}
}

// ScoreFromTT reverses ScoreToTT when reading a stored value back into the
// context of a node at the given ply.
func ScoreFromTT(s Score, ply int) Score {
	switch {
	case s >= MateValue-MaxPly:
		return s - Score(ply)
	case s <= -(MateValue - MaxPly):
		return s + Score(ply)
	default:
		return s
	}
}

// Unit returns the signed unit for the color: +1 for White, -1 for Black.
func Unit(c board.Color) Score {
	return Score(c.Unit())
}

// Crop clamps s into [MinScore, MaxScore].
func Crop(s Score) Score {
	switch {
	case s > MaxScore:
		return MaxScore
	case s < MinScore:
		return MinScore
	default:
		return s
	}
}

func Max(a, b Score) Score {
	if a > b {
		return a
	}
	return b
}

func Min(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}

// Tapered is a pair of (opening, endgame) weights for an evaluation term,
// interpolated by phase at the end of evaluation (see PhaseOf/Interp).
type Tapered struct {
	MG, EG Score
}

func (t Tapered) Add(o Tapered) Tapered { return Tapered{t.MG + o.MG, t.EG + o.EG} }
func (t Tapered) Sub(o Tapered) Tapered { return Tapered{t.MG - o.MG, t.EG - o.EG} }
func (t Tapered) Neg() Tapered          { return Tapered{-t.MG, -t.EG} }
func (t Tapered) Scale(n int) Tapered   { return Tapered{t.MG * Score(n), t.EG * Score(n)} }

// MaxPhase is the fully-endgame phase value; 0 is the fully-opening value.
// PhaseOf rises from 0 toward MaxPhase as non-pawn material comes off the board.
const MaxPhase = 48

// Weighted so a full complement of non-pawn material (4N+4B at 2, 4R at 4,
// 2Q at 8) sums to exactly MaxPhase.
var phaseWeight = [board.NumPieces]int{
	board.Knight: 2,
	board.Bishop: 2,
	board.Rook:   4,
	board.Queen:  8,
}

// PhaseOf computes the tapering phase in [0, MaxPhase] for pos: 0 at the
// opening with all non-pawn material present, MaxPhase once it is exhausted.
func PhaseOf(pos *board.Position) int {
	phase := MaxPhase
	for _, p := range [...]board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen} {
		count := pos.Piece(board.White, p).PopCount() + pos.Piece(board.Black, p).PopCount()
		phase -= count * phaseWeight[p]
	}
	if phase < 0 {
		phase = 0
	}
	return phase
}

// Interp linearly interpolates t's opening/endgame weights by phase, where
// phase=0 is the opening value and phase=MaxPhase is the endgame value.
func (t Tapered) Interp(phase int) Score {
	mg := int(t.MG) * (MaxPhase - phase)
	eg := int(t.EG) * phase
	return Score((mg + eg) / MaxPhase)
}
