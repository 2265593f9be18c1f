package board_test

import (
	"testing"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findCapture locates the generated capture from->to, failing the test if
// the position does not contain it.
func findCapture(t *testing.T, pos *board.Position, from, to board.Square) board.Move {
	t.Helper()
	m, ok := board.FindMove(pos, from, to, board.NoPiece)
	require.True(t, ok, "no legal move %v%v", from, to)
	return m
}

func TestSEE(t *testing.T) {
	t.Run("undefended pawn wins a pawn", func(t *testing.T) {
		pos, _, _, _, err := fen.Decode("k7/8/8/4p3/3P4/8/8/K7 w - - 0 1")
		require.NoError(t, err)

		m := findCapture(t, pos, sq(board.FileD, board.Rank4), sq(board.FileE, board.Rank5))
		assert.Equal(t, 100, board.SEE(pos, m))
		assert.False(t, board.SEESign(pos, m))
	})

	t.Run("pawn takes defended pawn is even", func(t *testing.T) {
		pos, _, _, _, err := fen.Decode("k7/8/3p4/4p3/3P4/8/8/K7 w - - 0 1")
		require.NoError(t, err)

		m := findCapture(t, pos, sq(board.FileD, board.Rank4), sq(board.FileE, board.Rank5))
		assert.Equal(t, 0, board.SEE(pos, m))
	})

	t.Run("rook takes defended pawn loses the exchange", func(t *testing.T) {
		pos, _, _, _, err := fen.Decode("k7/8/3p4/4p3/8/8/4R3/K7 w - - 0 1")
		require.NoError(t, err)

		m := findCapture(t, pos, sq(board.FileE, board.Rank2), sq(board.FileE, board.Rank5))
		assert.Equal(t, 100-500, board.SEE(pos, m))
		assert.True(t, board.SEESign(pos, m))
	})

	t.Run("xray recapture is counted through the front rook", func(t *testing.T) {
		// Doubled rooks on the e-file: Rxe5 dxe5 Rxe5 trades rook for two
		// pawns, and the backing rook must be seen through the front one.
		pos, _, _, _, err := fen.Decode("k7/8/3p4/4p3/8/8/4R3/K3R3 w - - 0 1")
		require.NoError(t, err)

		m := findCapture(t, pos, sq(board.FileE, board.Rank2), sq(board.FileE, board.Rank5))
		assert.Equal(t, 100-500+100, board.SEE(pos, m))
	})
}
