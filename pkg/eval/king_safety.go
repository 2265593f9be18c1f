package eval

import "github.com/corvidchess/corvid/pkg/board"

// King safety: attacker count x severity x per-attacker weight over the
// king zone, pawn shield, pawn storm, and king-pawn proximity. Grounded on
// the other_examples raklaptudirm/mess classical evaluator's king-safety
// term shape; attacker enumeration reuses capture.go's FindAttackers
// (itself grounded on the teacher's pkg/eval/capture.go).

// attackWeight scales an attacking piece's contribution to the king danger
// index, in the style of the classic "king safety table" construction:
// danger grows super-linearly with attacker count via kingDangerTable.
var attackWeight = [board.NumPieces]int{
	board.Pawn:   0,
	board.Knight: 2,
	board.Bishop: 2,
	board.Rook:   3,
	board.Queen:  5,
}

// kingDangerTable converts a weighted attacker-count index into a
// centipawn penalty, saturating once the king zone is overrun.
var kingDangerTable = [64]Score{
	0, 0, 1, 2, 3, 5, 7, 9, 12, 15, 18, 22, 26, 30, 35, 39,
	44, 50, 56, 62, 68, 75, 82, 85, 89, 97, 105, 113, 122, 131, 140, 150,
	169, 180, 191, 202, 213, 225, 237, 248, 260, 272, 283, 295, 307, 319, 330, 342,
	354, 366, 377, 389, 401, 412, 424, 436, 448, 459, 471, 483, 494, 500, 500, 500,
}

var (
	pawnShieldBonus  = Score(8)
	pawnStormPenalty = Score(-8)
)

func kingZone(kingSq board.Square) board.Bitboard {
	return board.KingAttackboard(kingSq) | board.BitMask(kingSq)
}

// kingSafety returns us's own king-safety term, negative when the king is
// in danger; the caller adds White's and subtracts Black's to form the
// white-relative total.
func kingSafety(pos *board.Position, us board.Color) Tapered {
	them := us.Opponent()
	kingSq := pos.KingSquare(us)
	zone := kingZone(kingSq)

	weighted := 0
	for bb := zone; bb != 0; {
		sq := bb.PopLSB()
		for _, att := range FindAttackers(pos, them, sq) {
			if _, piece, ok := pos.Square(att); ok {
				weighted += attackWeight[piece]
			}
		}
	}
	idx := weighted
	if idx >= len(kingDangerTable) {
		idx = len(kingDangerTable) - 1
	}
	danger := kingDangerTable[idx]

	shield := pawnShield(pos, us, kingSq)
	storm := pawnStorm(pos, us, kingSq)

	return Tapered{MG: -danger + shield*1 + storm, EG: -danger / 4}
}

func pawnShield(pos *board.Position, us board.Color, kingSq board.Square) Score {
	own := pos.Piece(us, board.Pawn)
	f := kingSq.File()
	files := board.BitFile(f)
	if f > board.FileA {
		files |= board.BitFile(f - 1)
	}
	if f < board.FileH {
		files |= board.BitFile(f + 1)
	}
	var homeward board.Bitboard
	if us == board.White {
		if kingSq.Rank() < board.Rank8 {
			homeward = board.BitRank(kingSq.Rank() + 1)
		}
	} else if kingSq.Rank() > board.Rank1 {
		homeward = board.BitRank(kingSq.Rank() - 1)
	}
	n := (own & files & homeward).PopCount()
	return Score(n) * pawnShieldBonus
}

func pawnStorm(pos *board.Position, us board.Color, kingSq board.Square) Score {
	them := us.Opponent()
	enemy := pos.Piece(them, board.Pawn)
	f := kingSq.File()
	files := board.BitFile(f)
	if f > board.FileA {
		files |= board.BitFile(f - 1)
	}
	if f < board.FileH {
		files |= board.BitFile(f + 1)
	}
	advanced := enemy & files
	n := 0
	for advanced != 0 {
		sq := advanced.PopLSB()
		if relativeRank(them, sq) >= 3 {
			n++
		}
	}
	return Score(n) * pawnStormPenalty
}
