package board_test

import (
	"testing"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietChecks(t *testing.T, f string) (*board.Position, []board.Move) {
	t.Helper()
	pos, _, _, _, err := fen.Decode(f)
	require.NoError(t, err)

	pins := board.FindPins(pos, pos.Turn())
	var list board.MoveList
	board.GenerateQuietChecks(pos, pins, &list)
	return pos, list.Slice()
}

func TestGenerateQuietChecksAllGiveCheck(t *testing.T) {
	fixtures := []string{
		"7k/8/8/4N3/8/8/8/K7 w - - 0 1",
		"7k/8/8/8/8/8/6Q1/7K w - - 0 1",
		"4k3/8/8/8/8/8/3P4/4KB2 w - - 0 1",
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	}

	for _, f := range fixtures {
		f := f
		t.Run(f, func(t *testing.T) {
			pos, moves := quietChecks(t, f)
			them := pos.Turn().Opponent()
			for _, m := range moves {
				assert.False(t, m.IsCapture(), "%v must be quiet", m)
				pos.Make(m)
				assert.True(t, pos.IsChecked(them), "%v must give check", m)
				pos.Undo()
			}
		})
	}
}

func TestGenerateQuietChecksFindsKnightChecks(t *testing.T) {
	// The e5 knight checks the h8 king from f7 or g6.
	_, moves := quietChecks(t, "7k/8/8/4N3/8/8/8/K7 w - - 0 1")

	got := map[string]bool{}
	for _, m := range moves {
		got[m.String()] = true
	}
	assert.True(t, got["e5f7"], "knight check from f7 missing: %v", moves)
	assert.True(t, got["e5g6"], "knight check from g6 missing: %v", moves)
}

func TestGenerateQuietChecksIsSubsetOfLegalMoves(t *testing.T) {
	pos, moves := quietChecks(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")

	legal := map[board.Move]bool{}
	var list board.MoveList
	board.GenerateLegalMoves(pos, &list)
	for _, m := range list.Slice() {
		legal[m] = true
	}

	for _, m := range moves {
		assert.True(t, legal[m], "%v is not a legal move", m)
	}
}
