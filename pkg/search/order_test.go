package search

import (
	"testing"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, f string) *board.Position {
	t.Helper()
	pos, _, _, _, err := fen.Decode(f)
	require.NoError(t, err)
	return pos
}

func legalMoves(pos *board.Position) []board.Move {
	var list board.MoveList
	board.GenerateLegalMoves(pos, &list)
	return list.Slice()
}

func TestOrderMovesTTMoveFirst(t *testing.T) {
	pos := decode(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	moves := legalMoves(pos)
	require.NotEmpty(t, moves)

	// Pick an arbitrary quiet move as the TT hint; it must surface first.
	var ttMove board.Move
	for _, m := range moves {
		if !m.IsCapture() && !m.IsPromotion() {
			ttMove = m
		}
	}
	require.False(t, ttMove.IsNone())

	var killers Killers
	var history History
	var counters CounterMoves
	orderMoves(pos, moves, ttMove, 0, pos.Turn(), board.NoMove, pos.Turn().Opponent(), &killers, &history, &counters)

	assert.Equal(t, ttMove, moves[0])
}

func TestOrderMovesWinningCapturesBeforeQuiets(t *testing.T) {
	// White can win the undefended d5 queen; that capture must precede
	// every quiet move.
	pos := decode(t, "k7/8/8/3q4/8/8/3R4/K7 w - - 0 1")
	moves := legalMoves(pos)
	require.NotEmpty(t, moves)

	var killers Killers
	var history History
	var counters CounterMoves
	orderMoves(pos, moves, board.NoMove, 0, pos.Turn(), board.NoMove, pos.Turn().Opponent(), &killers, &history, &counters)

	require.True(t, moves[0].IsCapture(), "expected the queen capture first, got %v", moves[0])
	assert.Equal(t, board.Queen, moves[0].Captured())
}

func TestOrderMovesLosingCapturesLast(t *testing.T) {
	// Rxe5 loses the exchange to dxe5: it must sort behind the quiets.
	pos := decode(t, "k7/8/3p4/4p3/8/8/4R3/K7 w - - 0 1")
	moves := legalMoves(pos)
	require.NotEmpty(t, moves)

	var killers Killers
	var history History
	var counters CounterMoves
	orderMoves(pos, moves, board.NoMove, 0, pos.Turn(), board.NoMove, pos.Turn().Opponent(), &killers, &history, &counters)

	last := moves[len(moves)-1]
	assert.True(t, last.IsCapture(), "expected the losing capture last, got %v", last)
}

func TestKillersPromoteAndDemote(t *testing.T) {
	var k Killers
	us := board.White
	m1 := board.NewMove(board.Square(10), board.Square(20), board.Knight, board.Quiet, board.NoPiece, board.NoPiece)
	m2 := board.NewMove(board.Square(11), board.Square(21), board.Bishop, board.Quiet, board.NoPiece, board.NoPiece)

	k.promote(3, us, m1)
	assert.True(t, k.has(3, us, m1))

	k.promote(3, us, m2)
	assert.True(t, k.has(3, us, m2))
	assert.True(t, k.has(3, us, m1), "previous killer demotes to the second slot")

	// Re-promoting the current first killer must not duplicate it.
	k.promote(3, us, m2)
	assert.Equal(t, m2, k[3][us][0])
	assert.Equal(t, m1, k[3][us][1])
}

func TestHistoryCutoffRate(t *testing.T) {
	var h History
	us := board.Black
	m := board.NewMove(board.Square(42), board.Square(34), board.Rook, board.Quiet, board.NoPiece, board.NoPiece)

	assert.Zero(t, h.score(us, m))

	for i := 0; i < 4; i++ {
		h.onSearched(us, m)
	}
	h.onCutoff(us, m)

	assert.Equal(t, int32(1*1024/4), h.score(us, m))
}
