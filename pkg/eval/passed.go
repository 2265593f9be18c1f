package eval

import "github.com/corvidchess/corvid/pkg/board"

// Passed-pawn evaluation, refining the flat passedBonus term computed in
// pawns.go with king-distance and blockade adjustments. The base bonus and
// the passed-pawn bitboards themselves come from the pawn-hash entry
// (pawns.go); this file only adds the position-dependent (non-cacheable)
// king-proximity and blockade terms.

var (
	kingDistanceBonus = Score(5)
	blockedPenalty    = Tapered{-10, -20}
)

// passedPawnKingTerms returns the side-relative (white-minus-black) tapered
// adjustment for king distance to each passed pawn's promotion square and
// whether it is directly blockaded by the enemy king/piece.
func passedPawnKingTerms(pos *board.Position, entry PawnEntry) Tapered {
	var total Tapered
	total = total.Add(passedKingTermsForColor(pos, board.White, entry.Passed[board.White]))
	total = total.Sub(passedKingTermsForColor(pos, board.Black, entry.Passed[board.Black]))
	return total
}

func passedKingTermsForColor(pos *board.Position, us board.Color, passed board.Bitboard) Tapered {
	them := us.Opponent()
	ownKing := pos.KingSquare(us)
	enemyKing := pos.KingSquare(them)

	var total Tapered
	for passed != 0 {
		sq := passed.PopLSB()
		promo := promotionSquare(us, sq)

		ownDist := chebyshevDistance(ownKing, promo)
		enemyDist := chebyshevDistance(enemyKing, promo)
		// Endgame-only: the defending king's proximity to the queening
		// square matters far more once major pieces are gone, so this term
		// is scaled entirely into the endgame half of the tapered pair.
		total.EG += Score(enemyDist-ownDist) * kingDistanceBonus

		stop := pawnStopSquare(us, sq)
		if stop.IsValid() {
			if c, _, ok := pos.Square(stop); ok && c == them {
				total = total.Add(blockedPenalty)
			}
		}
	}
	return total
}

func promotionSquare(us board.Color, sq board.Square) board.Square {
	if us == board.White {
		return board.NewSquare(sq.File(), board.Rank8)
	}
	return board.NewSquare(sq.File(), board.Rank1)
}

func chebyshevDistance(a, b board.Square) int {
	df := int(a.File()) - int(b.File())
	dr := int(a.Rank()) - int(b.Rank())
	if df < 0 {
		df = -df
	}
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}
