package book_test

import (
	"context"
	"testing"

	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	store, err := book.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(ctx, fen.Initial, []string{"e2e4", "d2d4"}))

	moves, err := store.Find(ctx, fen.Initial)
	require.NoError(t, err)
	require.Len(t, moves, 2)

	got := map[string]bool{}
	for _, m := range moves {
		got[m.String()] = true
	}
	assert.True(t, got["e2e4"])
	assert.True(t, got["d2d4"])
}

func TestStoreKeyIgnoresClockFields(t *testing.T) {
	ctx := context.Background()

	store, err := book.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(ctx, fen.Initial, []string{"g1f3"}))

	// Same placement, different clocks: must hit the same entry.
	moves, err := store.Find(ctx, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 5 40")
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, "g1f3", moves[0].String())
}

func TestStoreUnknownPositionIsEmpty(t *testing.T) {
	ctx := context.Background()

	store, err := book.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	moves, err := store.Find(ctx, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestStoreRejectsIllegalMove(t *testing.T) {
	ctx := context.Background()

	store, err := book.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	assert.Error(t, store.Put(ctx, fen.Initial, []string{"e2e5"}))
}
