package eval

import "github.com/corvidchess/corvid/pkg/board"

// FindAttackers returns the squares holding a piece of the given color that
// attacks sq under the position's current occupancy. Grounded on the
// teacher's pkg/eval/capture.go (FindCapture), re-expressed against the
// magic-bitboard Position/Attackboard API; used here by king-safety
// attacker counting (king_safety.go).
func FindAttackers(pos *board.Position, side board.Color, sq board.Square) []board.Square {
	var ret []board.Square
	occ := pos.All()
	for _, piece := range [...]board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen, board.King} {
		bb := board.Attackboard(occ, sq, piece) & pos.Piece(side, piece)
		for bb != 0 {
			ret = append(ret, bb.PopLSB())
		}
	}
	bb := board.PawnCaptureboard(side.Opponent(), board.BitMask(sq)) & pos.Piece(side, board.Pawn)
	for bb != 0 {
		ret = append(ret, bb.PopLSB())
	}
	return ret
}

