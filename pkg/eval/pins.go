package eval

import "github.com/corvidchess/corvid/pkg/board"

// Pin represents a pinned piece: an enemy slider on Attacker pins Pinned
// against Target (typically the king). A pinned piece's mobility is
// restricted to the pin ray, which mobility.go uses to discount its attack
// count.
//
// Grounded on the teacher's pkg/eval/pins.go X-ray technique (attack from
// target, subtract the candidate's own attack contribution, intersect with
// enemy sliders), re-expressed against the magic-bitboard RookAttacks/
// BishopAttacks API instead of rotated-bitboard attack lookups.
type Pin struct {
	Attacker, Pinned, Target board.Square
}

// FindPins returns all pins against the given piece of side's color.
func FindPins(pos *board.Position, side board.Color, piece board.Piece) []Pin {
	var ret []Pin
	opp := side.Opponent()
	occ := pos.All()
	own := pos.Colored(side)

	bb := pos.Piece(side, piece)
	for bb != 0 {
		target := bb.PopLSB()
		ret = append(ret, xrayPins(target, occ, own, board.RookAttacks,
			pos.Piece(opp, board.Rook)|pos.Piece(opp, board.Queen))...)
		ret = append(ret, xrayPins(target, occ, own, board.BishopAttacks,
			pos.Piece(opp, board.Bishop)|pos.Piece(opp, board.Queen))...)
	}
	return ret
}

func xrayPins(target board.Square, occ, own board.Bitboard, attacks func(board.Square, board.Bitboard) board.Bitboard, sliders board.Bitboard) []Pin {
	var ret []Pin
	rays := attacks(target, occ)
	candidates := rays & own
	for candidates != 0 {
		pinned := candidates.PopLSB()
		behind := attacks(target, occ&^board.BitMask(pinned)) &^ rays & sliders
		if behind != 0 {
			ret = append(ret, Pin{Attacker: behind.LastPopSquare(), Pinned: pinned, Target: target})
		}
	}
	return ret
}
