// Package eval contains position evaluation logic and utilities.
package eval

import "github.com/corvidchess/corvid/pkg/board"

// Evaluator is a static position evaluator: given a position and an
// alpha/beta window (for a lazy early-exit once material alone has settled
// the comparison), returns the side-to-move-relative score.
type Evaluator interface {
	Evaluate(pos *board.Position, alpha, beta Score) Score
}

// Classical is the hand-crafted evaluator: material + PST, pawn structure
// (pawn-hash cached), mobility/threats, king safety, passed pawns, phase
// tapering, and draw scaling. Grounded on the teacher's Evaluator interface
// and Material{} seed (pkg/eval/eval.go), built out per the component files
// in this package.
type Classical struct {
	Pawns *PawnHash
}

// NewClassical returns a Classical evaluator with its own pawn-hash table.
func NewClassical(pawnHashMB int) *Classical {
	return &Classical{Pawns: NewPawnHash(pawnHashMB)}
}

// lazyMargin bounds how far a position's material-and-PST score alone can be
// from the window before the remaining (cheaper-to-skip) terms are computed;
// mirrors the classic "lazy eval" early exit.
const lazyMargin = Score(400)

func (c *Classical) Evaluate(pos *board.Position, alpha, beta Score) Score {
	white := materialAndPST(pos).Add(bishopPair(pos))
	phase := PhaseOf(pos)
	turn := pos.Turn()

	sideRelative := white.Interp(phase) * Score(turn.Unit())
	if sideRelative-lazyMargin >= beta || sideRelative+lazyMargin <= alpha {
		// Early exit: even granting every remaining term its maximum
		// plausible swing can't move the score across the window.
		return Crop(drawScale(pos, sideRelative))
	}

	total := white
	total = total.Add(mobilityAndPieceTerms(pos, board.White)).Sub(mobilityAndPieceTerms(pos, board.Black))
	total = total.Add(spaceBonus(pos, board.White)).Sub(spaceBonus(pos, board.Black))

	pe := c.Pawns.Evaluate(pos)
	total = total.Add(pe.Score)
	total = total.Add(passedPawnKingTerms(pos, pe))

	ks := kingSafety(pos, board.White).Sub(kingSafety(pos, board.Black))
	total = total.Add(ks)

	score := total.Interp(phase) * Score(turn.Unit())
	return Crop(drawScale(pos, score))
}

// drawScale multiplies the side-relative score by a factor in [0,64]/64
// reflecting how drawish the material pattern is (opposite-colored bishops
// with few pawns, bare-king-ish endings, etc.), per the reference engine's
// draw-scaling convention.
func drawScale(pos *board.Position, score Score) Score {
	factor := drawFactor(pos)
	if factor == 64 {
		return score
	}
	return score * Score(factor) / 64
}

func drawFactor(pos *board.Position) int {
	wBishops := pos.Piece(board.White, board.Bishop)
	bBishops := pos.Piece(board.Black, board.Bishop)
	totalPawns := pos.Piece(board.White, board.Pawn).PopCount() + pos.Piece(board.Black, board.Pawn).PopCount()

	noMajors := pos.Piece(board.White, board.Rook) == 0 && pos.Piece(board.Black, board.Rook) == 0 &&
		pos.Piece(board.White, board.Queen) == 0 && pos.Piece(board.Black, board.Queen) == 0

	if f, ok := wrongBishopFactor(pos, board.White); ok {
		return f
	}
	if f, ok := wrongBishopFactor(pos, board.Black); ok {
		return f
	}

	if noMajors && wBishops.PopCount() == 1 && bBishops.PopCount() == 1 &&
		pos.Piece(board.White, board.Knight) == 0 && pos.Piece(board.Black, board.Knight) == 0 &&
		squareColor(wBishops.LastPopSquare()) != squareColor(bBishops.LastPopSquare()) &&
		totalPawns <= 4 {
		return 8
	}
	return 64
}

// wrongBishopFactor recognizes the classic dead draw of a bishop plus
// rook-file pawns whose promotion corner the bishop cannot cover, with the
// defending king in reach of that corner. Returns (0, true) when it holds
// for us as the strong side.
func wrongBishopFactor(pos *board.Position, us board.Color) (int, bool) {
	them := us.Opponent()

	if pos.Piece(us, board.Rook) != 0 || pos.Piece(us, board.Queen) != 0 ||
		pos.Piece(us, board.Knight) != 0 || pos.Piece(us, board.Bishop).PopCount() != 1 {
		return 0, false
	}
	if pos.Piece(them, board.Pawn) != 0 || pos.Piece(them, board.Rook) != 0 ||
		pos.Piece(them, board.Queen) != 0 || pos.Piece(them, board.Knight) != 0 ||
		pos.Piece(them, board.Bishop) != 0 {
		return 0, false
	}

	pawns := pos.Piece(us, board.Pawn)
	if pawns == 0 {
		return 0, false
	}

	for _, f := range [...]board.File{board.FileA, board.FileH} {
		if pawns&^board.BitFile(f) != 0 {
			continue // pawns off this rook file
		}
		promo := promotionSquare(us, board.NewSquare(f, board.Rank4))
		bishopSq := pos.Piece(us, board.Bishop).LastPopSquare()
		if squareColor(bishopSq) == squareColor(promo) {
			return 0, false // right-colored bishop controls the corner
		}
		if chebyshevDistance(pos.KingSquare(them), promo) <= 1 {
			return 0, true
		}
	}
	return 0, false
}

func squareColor(sq board.Square) int {
	return (int(sq.File()) + int(sq.Rank())) & 1
}
