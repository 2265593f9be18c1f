package search_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranspositionTableSizing(t *testing.T) {
	ctx := context.Background()

	tt := search.NewTranspositionTable(ctx, 1<<20)
	assert.LessOrEqual(t, tt.Size(), uint64(1<<20))
	assert.Greater(t, tt.Size(), uint64(0))
}

func TestTranspositionTableReadWrite(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1<<16)

	a := board.ZobristHash(rand.Uint64())

	_, _, _, _, _, ok := tt.Read(a)
	assert.False(t, ok)

	m, found := board.FindMove(mustPos(t, "8/8/8/8/8/8/8/R3K2R w KQ - 0 1"), board.H1, board.H8, board.NoPiece)
	assert.True(t, found)

	tt.Write(a, search.ExactBound, 5, eval.Score(120), eval.Score(80), m)

	bound, depth, score, staticEval, move, ok := tt.Read(a)
	assert.True(t, ok)
	assert.Equal(t, search.ExactBound, bound)
	assert.Equal(t, 5, depth)
	assert.Equal(t, eval.Score(120), score)
	assert.Equal(t, eval.Score(80), staticEval)
	assert.Equal(t, m, move)

	_, _, _, _, _, ok = tt.Read(a ^ 0xff00ff00)
	assert.False(t, ok)
}

func TestTranspositionTableClusterSurvivesCollision(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1<<10) // small table, force collisions

	hashes := make([]board.ZobristHash, 4)
	for i := range hashes {
		hashes[i] = board.ZobristHash(rand.Uint64())
	}

	for _, h := range hashes {
		tt.Write(h, search.ExactBound, 3, eval.Score(1), eval.Score(1), board.NoMove)
	}

	found := 0
	for _, h := range hashes {
		if _, _, _, _, _, ok := tt.Read(h); ok {
			found++
		}
	}
	assert.Greater(t, found, 0)
}

func mustPos(t *testing.T, s string) *board.Position {
	t.Helper()
	pos, _, _, _, err := fen.Decode(s)
	require.NoError(t, err)
	return pos
}
