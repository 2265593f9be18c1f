// Package book provides an on-disk opening-book store backed by an
// embedded key-value database, persisting book lines across engine
// restarts. It satisfies the engine's Book contract (pkg/engine.Book)
// structurally, so the UCI driver's OwnBook path can consult it in place
// of the in-memory default.
package book

import (
	"context"
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
)

// Store is a persistent opening book: position key -> candidate moves in
// long algebraic notation. Keys normalize away the FEN clock fields so a
// position reached by any move order (or with any counters) maps to the
// same entry.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the book database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open book store %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Find returns the stored candidate moves for the position given in FEN,
// resolved against the position's legal move list. Unknown positions
// return an empty list, not an error.
func (s *Store) Find(ctx context.Context, position string) ([]board.Move, error) {
	pos, turn, _, _, err := fen.Decode(position)
	if err != nil {
		return nil, fmt.Errorf("invalid position: %w", err)
	}

	var raw string
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(pos, turn))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("book lookup: %w", err)
	}

	var moves []board.Move
	for _, str := range strings.Fields(raw) {
		from, to, promo, err := board.ParseMove(str)
		if err != nil {
			continue // tolerate a stale entry rather than fail the lookup
		}
		if m, ok := board.FindMove(pos, from, to, promo); ok {
			moves = append(moves, m)
		}
	}
	return moves, nil
}

// Put records candidate moves (long algebraic notation) for the position
// given in FEN, replacing any previous entry. Moves are validated for
// legality before being written.
func (s *Store) Put(ctx context.Context, position string, moves []string) error {
	pos, turn, _, _, err := fen.Decode(position)
	if err != nil {
		return fmt.Errorf("invalid position: %w", err)
	}

	var valid []string
	for _, str := range moves {
		from, to, promo, err := board.ParseMove(str)
		if err != nil {
			return fmt.Errorf("invalid book move %q: %w", str, err)
		}
		if _, ok := board.FindMove(pos, from, to, promo); !ok {
			return fmt.Errorf("illegal book move %q for %q", str, position)
		}
		valid = append(valid, str)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(storeKey(pos, turn), []byte(strings.Join(valid, " ")))
	})
}

// storeKey normalizes a position to its clock-free FEN rendering, the same
// keying the in-memory book uses.
func storeKey(pos *board.Position, turn board.Color) []byte {
	return []byte(fen.Encode(pos, turn, 0, 1))
}
