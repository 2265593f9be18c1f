package engine_test

import (
	"context"
	"testing"

	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook(t *testing.T) {
	ctx := context.Background()

	book, err := engine.NewBook([]engine.Line{
		{"e2e4", "d7d5", "d2d4"},
		{"e2e4", "d7d6"},
		{"d2d4", "d7d6"},
	})
	require.NoError(t, err)

	moves, err := book.Find(ctx, fen.Initial)
	require.NoError(t, err)
	assert.Len(t, moves, 2) // e2e4 and d2d4
}

func TestNoBook(t *testing.T) {
	ctx := context.Background()

	moves, err := engine.NoBook.Find(ctx, fen.Initial)
	require.NoError(t, err)
	assert.Empty(t, moves)
}
