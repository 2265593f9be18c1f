package eval

import "github.com/corvidchess/corvid/pkg/board"

// Piece mobility, threats, and piece-specific positional bonuses: rook on
// open/semi-open files and the 7th rank, trapped minor/rook penalties, and a
// minor piece blocking its own pawn. Grounded on the other_examples
// raklaptudirm/mess classical evaluator's term shape; pin-aware mobility
// discount reuses pins.go's X-ray detector, generalized from the teacher's.

var mobilityBonus = map[board.Piece][9]Tapered{
	board.Knight: {{-62, -81}, {-53, -56}, {-12, -31}, {-4, -16}, {3, 5}, {13, 11}, {22, 17}, {28, 20}, {33, 25}},
}

var bishopMobility = [14]Tapered{
	{-48, -59}, {-20, -23}, {16, -3}, {26, 13}, {38, 24}, {51, 42}, {55, 54},
	{63, 57}, {63, 65}, {68, 73}, {81, 78}, {81, 86}, {91, 88}, {98, 97},
}

var rookMobility = [15]Tapered{
	{-60, -78}, {-20, -17}, {2, 23}, {3, 39}, {3, 70}, {11, 99}, {22, 103},
	{31, 121}, {40, 134}, {40, 139}, {41, 158}, {48, 164}, {57, 168}, {57, 169}, {62, 172},
}

var queenMobility = [28]Tapered{
	{-30, -48}, {-12, -30}, {-8, -7}, {-9, 19}, {20, 40}, {23, 55}, {23, 59}, {35, 75},
	{38, 78}, {53, 96}, {64, 96}, {65, 100}, {65, 121}, {66, 127}, {67, 131}, {67, 133},
	{72, 136}, {72, 141}, {77, 144}, {79, 146}, {93, 147}, {108, 149}, {108, 153}, {108, 169},
	{110, 171}, {114, 171}, {114, 178}, {116, 185},
}

var (
	rookSemiOpenFile = Tapered{10, 10}
	rookOpenFile     = Tapered{20, 15}
	rookOn7th        = Tapered{20, 30}
	trappedBishop    = Tapered{-40, -40}
	trappedRook      = Tapered{-40, -20}
	minorBlocksPawn  = Tapered{-5, -2}
	threatBonus      = Tapered{15, 10}
)

func mobilityAndPieceTerms(pos *board.Position, us board.Color) Tapered {
	them := us.Opponent()
	occ := pos.All()
	own := pos.Colored(us)
	enemy := pos.Colored(them)

	pinned := pinnedMask(pos, us)
	pawnSafe := ^board.PawnCaptureboard(them, pos.Piece(them, board.Pawn))

	var total Tapered

	for _, piece := range [...]board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen} {
		bb := pos.Piece(us, piece)
		for bb != 0 {
			sq := bb.PopLSB()
			attacks := board.Attackboard(occ, sq, piece) &^ own & pawnSafe
			if pinned.IsSet(sq) {
				attacks &= pinRay(pos, us, sq)
			}
			n := attacks.PopCount()
			total = total.Add(mobilityTerm(piece, n))

			if attacks&enemy != 0 {
				total = total.Add(threatBonus.Scale((attacks & enemy).PopCount()))
			}

			switch piece {
			case board.Rook:
				file := board.BitFile(sq.File())
				if pos.Piece(us, board.Pawn)&file == 0 {
					if pos.Piece(them, board.Pawn)&file == 0 {
						total = total.Add(rookOpenFile)
					} else {
						total = total.Add(rookSemiOpenFile)
					}
				}
				if relativeRank(us, sq) == 6 {
					total = total.Add(rookOn7th)
				}
			case board.Bishop, board.Knight:
				if n <= 1 && relativeRank(us, sq) <= 1 {
					total = total.Add(trappedBishop)
				}
				stop := pawnStopSquare(us, sq)
				if stop.IsValid() && pos.Piece(us, board.Pawn).IsSet(stop) {
					total = total.Add(minorBlocksPawn)
				}
			}
		}
	}

	rookBB := pos.Piece(us, board.Rook)
	if rookBB != 0 && rookBB.PopCount() >= 1 {
		king := pos.KingSquare(us)
		if relativeRank(us, king) == 0 {
			for bb := rookBB; bb != 0; {
				sq := bb.PopLSB()
				if (board.Attackboard(occ, sq, board.Rook).PopCount()) <= 3 && relativeRank(us, sq) == 0 {
					total = total.Add(trappedRook)
				}
			}
		}
	}

	return total
}

func mobilityTerm(piece board.Piece, n int) Tapered {
	switch piece {
	case board.Knight:
		t := mobilityBonus[board.Knight]
		return t[clampIndex(n, len(t))]
	case board.Bishop:
		return bishopMobility[clampIndex(n, len(bishopMobility))]
	case board.Rook:
		return rookMobility[clampIndex(n, len(rookMobility))]
	case board.Queen:
		return queenMobility[clampIndex(n, len(queenMobility))]
	default:
		return Tapered{}
	}
}

func clampIndex(n, size int) int {
	if n >= size {
		return size - 1
	}
	return n
}

// pinnedMask returns the bitboard of side's pieces pinned against its own king.
func pinnedMask(pos *board.Position, side board.Color) board.Bitboard {
	return board.FindPins(pos, side)
}

// pinRay returns the full line between the king and the pinning attacker
// through sq, used to restrict a pinned piece's mobility to that ray.
func pinRay(pos *board.Position, side board.Color, sq board.Square) board.Bitboard {
	kingSq := pos.KingSquare(side)
	pins := FindPins(pos, side, board.King)
	for _, p := range pins {
		if p.Pinned == sq {
			attacks := board.BishopAttacks
			if kingSq.File() == p.Attacker.File() || kingSq.Rank() == p.Attacker.Rank() {
				attacks = board.RookAttacks
			}
			between := attacks(kingSq, board.BitMask(p.Attacker)) & attacks(p.Attacker, board.BitMask(kingSq))
			return between | board.BitMask(p.Attacker)
		}
	}
	return board.BitMask(kingSq)
}
