package board_test

import (
	"testing"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// perft walks the legal move tree to the given depth and returns the leaf
// count, using make/undo in place rather than copying positions.
func perft(pos *board.Position, depth int) int {
	if depth == 0 {
		return 1
	}
	var list board.MoveList
	board.GenerateLegalMoves(pos, &list)

	if depth == 1 {
		return list.N
	}

	nodes := 0
	for _, m := range list.Slice() {
		pos.Make(m)
		nodes += perft(pos, depth-1)
		pos.Undo()
	}
	return nodes
}

func TestPerft(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		depth    int
		expected int
	}{
		{"startpos d1", fen.Initial, 1, 20},
		{"startpos d2", fen.Initial, 2, 400},
		{"startpos d3", fen.Initial, 3, 8902},
		{"startpos d4", fen.Initial, 4, 197281},
		{"kiwipete d1", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 1, 48},
		{"kiwipete d2", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
		{"kiwipete d3", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 3, 97862},
		{"position 3 d1", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 1, 14},
		{"position 3 d2", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 2, 191},
		{"position 3 d3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3, 2812},
		{"en passant pin d1", "8/8/8/8/k2Pp2Q/8/8/3K4 b - d3 0 1", 1, 6},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			pos, _, _, _, err := fen.Decode(tt.fen)
			require.NoError(t, err)

			got := perft(pos, tt.depth)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMakeUndoRoundTrip(t *testing.T) {
	pos, _, _, _, err := fen.Decode("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	before := pos.String()
	beforeKey := pos.Key()
	beforePawnKey := pos.PawnKey()

	var list board.MoveList
	board.GenerateLegalMoves(pos, &list)
	require.NotZero(t, list.N)

	for _, m := range list.Slice() {
		pos.Make(m)
		pos.Undo()
		assert.Equal(t, before, pos.String())
		assert.Equal(t, beforeKey, pos.Key())
		assert.Equal(t, beforePawnKey, pos.PawnKey())
	}
}

func TestCastlingRightsClearedOnKingMove(t *testing.T) {
	pos, _, _, _, err := fen.Decode("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	m, ok := board.FindMove(pos, board.E1, sq(board.FileE, board.Rank2), board.NoPiece)
	require.True(t, ok)

	pos.Make(m)
	assert.False(t, pos.Castling().IsAllowed(board.WhiteKingSideCastle))
	assert.False(t, pos.Castling().IsAllowed(board.WhiteQueenSideCastle))
	assert.True(t, pos.Castling().IsAllowed(board.BlackKingSideCastle))
	assert.True(t, pos.Castling().IsAllowed(board.BlackQueenSideCastle))

	pos.Undo()
	assert.True(t, pos.Castling().IsAllowed(board.WhiteKingSideCastle))
	assert.True(t, pos.Castling().IsAllowed(board.WhiteQueenSideCastle))
}

func TestPawnPromotionGeneratesAllFour(t *testing.T) {
	pos, _, _, _, err := fen.Decode("8/P7/8/8/8/8/8/k1K5 w - - 0 1")
	require.NoError(t, err)

	var list board.MoveList
	board.GenerateLegalMoves(pos, &list)

	promos := map[board.Piece]bool{}
	for _, m := range list.Slice() {
		if m.From() == sq(board.FileA, board.Rank7) {
			promos[m.Promotion()] = true
		}
	}
	assert.True(t, promos[board.Queen])
	assert.True(t, promos[board.Rook])
	assert.True(t, promos[board.Bishop])
	assert.True(t, promos[board.Knight])
}

func TestEnPassantCapture(t *testing.T) {
	pos, _, _, _, err := fen.Decode("8/8/8/8/3pP3/8/8/4K2k b - e3 0 1")
	require.NoError(t, err)

	var list board.MoveList
	board.GenerateLegalMoves(pos, &list)

	found := false
	for _, m := range list.Slice() {
		if m.Kind() == board.EnPassantCapture {
			found = true
			assert.Equal(t, sq(board.FileE, board.Rank3), m.To())
		}
	}
	assert.True(t, found)
}

func TestEnPassantPinnedAlongRankIsIllegal(t *testing.T) {
	pos, _, _, _, err := fen.Decode("8/8/8/8/k2Pp2Q/8/8/3K4 b - d3 0 1")
	require.NoError(t, err)

	var list board.MoveList
	board.GenerateLegalMoves(pos, &list)

	for _, m := range list.Slice() {
		assert.NotEqual(t, board.EnPassantCapture, m.Kind(), "en passant capture must be excluded: it would expose the king to the h4 queen along rank 4")
	}
	assert.Equal(t, 6, list.N)
}

func TestIsRepetition(t *testing.T) {
	pos, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	f3 := sq(board.FileF, board.Rank3)
	f6 := sq(board.FileF, board.Rank6)

	g1f3, ok := board.FindMove(pos, board.G1, f3, board.NoPiece)
	require.True(t, ok)
	pos.Make(g1f3)
	g8f6, ok := board.FindMove(pos, board.G8, f6, board.NoPiece)
	require.True(t, ok)
	pos.Make(g8f6)

	f3g1, ok := board.FindMove(pos, f3, board.G1, board.NoPiece)
	require.True(t, ok)
	pos.Make(f3g1)
	f6g8, ok := board.FindMove(pos, f6, board.G8, board.NoPiece)
	require.True(t, ok)
	pos.Make(f6g8)

	assert.True(t, pos.IsRepetition())
}
