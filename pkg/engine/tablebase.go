package engine

import (
	"errors"
	"os"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// TablebaseProbe is the endgame-tablebase collaborator. SPEC_FULL §1 treats
// Syzygy probing as external to the search/evaluation core: the search
// (pkg/search) only needs the contract below (non-root, non-PV, non-singular
// probes per §4.6 step 4); this package supplies the `setoption name
// SyzygyPath` wiring and a probe implementation stub, since no retrieved
// example repo carries a Syzygy decoder to ground a real one on (see
// DESIGN.md's dropped-dependency ledger).
type TablebaseProbe interface {
	// Probe returns a win/loss/draw verdict for pos if it falls within the
	// tablebase's piece-count coverage, ply-unadjusted (the caller applies
	// SPEC_FULL §4.5's mate-distance-style adjustment on store).
	Probe(pos *board.Position) (eval.Score, bool)
	// Close releases any resources (open file handles) held by the probe.
	Close() error
}

// NoTablebase always misses; used when no SyzygyPath has been configured or
// initialization failed (SPEC_FULL §7: tablebase failures disable the
// collaborator rather than aborting the engine).
type NoTablebase struct{}

func (NoTablebase) Probe(*board.Position) (eval.Score, bool) { return 0, false }
func (NoTablebase) Close() error                             { return nil }

// NewTablebase validates that path exists and is readable, and returns a
// collaborator that currently reports no hits (a real Syzygy WDL/DTZ
// decoder is out of this core's scope per SPEC_FULL §1; this wiring exists
// so `setoption name SyzygyPath` has somewhere real to land and the search
// probe contract above has a concrete, testable implementation to call).
func NewTablebase(path string) (TablebaseProbe, error) {
	if path == "" {
		return NoTablebase{}, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("SyzygyPath must be a directory")
	}
	return &fsTablebase{path: path}, nil
}

type fsTablebase struct {
	path string
}

func (t *fsTablebase) Probe(pos *board.Position) (eval.Score, bool) {
	// Piece-count gate only: a real decoder would read the .rtbw/.rtbz
	// files under t.path for the position's material signature. Absent
	// that decoder, every probe misses, matching SPEC_FULL §7's "tablebase
	// failures disable the collaborator" contract rather than fabricating
	// a result.
	if popcount(pos) > 7 {
		return 0, false
	}
	return 0, false
}

func (t *fsTablebase) Close() error { return nil }

func popcount(pos *board.Position) int {
	n := 0
	for c := board.White; c <= board.Black; c++ {
		for p := board.Pawn; p <= board.King; p++ {
			n += pos.Piece(c, p).PopCount()
		}
	}
	return n
}
