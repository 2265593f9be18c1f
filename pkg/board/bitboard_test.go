package board_test

import (
	"testing"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/stretchr/testify/assert"
)

func sq(f board.File, r board.Rank) board.Square {
	return board.NewSquare(f, r)
}

func TestBitboard(t *testing.T) {

	t.Run("popcount", func(t *testing.T) {
		tests := []struct {
			bb       board.Bitboard
			expected int
		}{
			{board.EmptyBitboard, 0},
			{board.BitMask(sq(board.FileG, board.Rank4)), 1},
			{board.BitMask(sq(board.FileG, board.Rank3)) | board.BitMask(sq(board.FileG, board.Rank4)), 2},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.expected, tt.bb.PopCount())
		}
	})

	t.Run("string", func(t *testing.T) {
		tests := []struct {
			bb       board.Bitboard
			expected string
		}{
			{board.EmptyBitboard, "--------/--------/--------/--------/--------/--------/--------/--------"},
			{board.BitMask(board.H1), "--------/--------/--------/--------/--------/--------/--------/-------X"},
			{board.BitMask(sq(board.FileG, board.Rank3)) | board.BitMask(sq(board.FileG, board.Rank4)), "--------/--------/--------/--------/------X-/------X-/--------/--------"},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.expected, tt.bb.String())
		}
	})

	t.Run("king", func(t *testing.T) {
		tests := []struct {
			sq       board.Square
			expected string
		}{
			{board.H1, "--------/--------/--------/--------/--------/--------/------XX/------X-"},
			{sq(board.FileD, board.Rank1), "--------/--------/--------/--------/--------/--------/--XXX---/--X-X---"},
			{sq(board.FileD, board.Rank3), "--------/--------/--------/--------/--XXX---/--X-X---/--XXX---/--------"},
			{sq(board.FileA, board.Rank3), "--------/--------/--------/--------/XX------/-X------/XX------/--------"},
			{sq(board.FileB, board.Rank7), "XXX-----/X-X-----/XXX-----/--------/--------/--------/--------/--------"},
			{board.A8, "-X------/XX------/--------/--------/--------/--------/--------/--------"},
			{board.H8, "------X-/------XX/--------/--------/--------/--------/--------/--------"},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.expected, board.KingAttackboard(tt.sq).String())
		}
	})

	t.Run("knight", func(t *testing.T) {
		tests := []struct {
			sq       board.Square
			expected string
		}{
			{board.H1, "--------/--------/--------/--------/--------/------X-/-----X--/--------"},
			{sq(board.FileD, board.Rank1), "--------/--------/--------/--------/--------/--X-X---/-X---X--/--------"},
			{sq(board.FileD, board.Rank3), "--------/--------/--------/--X-X---/-X---X--/--------/-X---X--/--X-X---"},
			{sq(board.FileA, board.Rank3), "--------/--------/--------/-X------/--X-----/--------/--X-----/-X------"},
			{sq(board.FileB, board.Rank7), "---X----/--------/---X----/X-X-----/--------/--------/--------/--------"},
			{board.A8, "--------/--X-----/-X------/--------/--------/--------/--------/--------"},
			{board.H8, "--------/-----X--/------X-/--------/--------/--------/--------/--------"},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.expected, board.KnightAttackboard(tt.sq).String())
		}
	})

	t.Run("rook", func(t *testing.T) {
		tests := []struct {
			occ      board.Bitboard
			sq       board.Square
			expected string
		}{
			{board.EmptyBitboard, board.H1, "-------X/-------X/-------X/-------X/-------X/-------X/-------X/XXXXXXX-"},
			{board.EmptyBitboard, sq(board.FileD, board.Rank3), "---X----/---X----/---X----/---X----/---X----/XXX-XXXX/---X----/---X----"},
			{board.EmptyBitboard, sq(board.FileA, board.Rank6), "X-------/X-------/-XXXXXXX/X-------/X-------/X-------/X-------/X-------"},

			{board.BitMask(sq(board.FileH, board.Rank2)), board.H1, "--------/--------/--------/--------/--------/--------/-------X/XXXXXXX-"},
			{board.BitRank(board.Rank2), board.H1, "--------/--------/--------/--------/--------/--------/-------X/XXXXXXX-"},
			{board.BitMask(sq(board.FileH, board.Rank2)) | board.BitMask(sq(board.FileD, board.Rank1)), board.H1, "--------/--------/--------/--------/--------/--------/-------X/---XXXX-"},
			{board.BitMask(sq(board.FileB, board.Rank4)) | board.BitMask(sq(board.FileG, board.Rank4)), sq(board.FileE, board.Rank4), "----X---/----X---/----X---/----X---/-XXX-XX-/----X---/----X---/----X---"},
			{board.BitMask(sq(board.FileE, board.Rank2)) | board.BitMask(sq(board.FileE, board.Rank7)), sq(board.FileE, board.Rank4), "--------/----X---/----X---/----X---/XXXX-XXX/----X---/----X---/--------"},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.expected, board.RookAttacks(tt.sq, tt.occ).String())
		}
	})

	t.Run("bishop", func(t *testing.T) {
		occ := board.BitMask(sq(board.FileC, board.Rank3)) | board.BitMask(sq(board.FileG, board.Rank7))
		got := board.BishopAttacks(sq(board.FileE, board.Rank5), occ)
		assert.True(t, got.IsSet(sq(board.FileD, board.Rank4)))
		assert.True(t, got.IsSet(sq(board.FileC, board.Rank3)))
		assert.False(t, got.IsSet(sq(board.FileB, board.Rank2)))
		assert.True(t, got.IsSet(sq(board.FileF, board.Rank6)))
		assert.True(t, got.IsSet(sq(board.FileG, board.Rank7)))
		assert.False(t, got.IsSet(sq(board.FileH, board.Rank8)))
	})

	t.Run("pawn captures", func(t *testing.T) {
		pawns := board.BitMask(sq(board.FileD, board.Rank4))
		w := board.PawnCaptureboard(board.White, pawns)
		assert.True(t, w.IsSet(sq(board.FileC, board.Rank5)))
		assert.True(t, w.IsSet(sq(board.FileE, board.Rank5)))

		b := board.PawnCaptureboard(board.Black, pawns)
		assert.True(t, b.IsSet(sq(board.FileC, board.Rank3)))
		assert.True(t, b.IsSet(sq(board.FileE, board.Rank3)))
	})
}
