package search

import (
	"sync/atomic"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// TablebaseProbe is the endgame-tablebase collaborator consulted by step 4
// of SPEC_FULL §4.6 (non-root, non-PV, non-singular nodes). Defined here
// rather than imported from pkg/engine to avoid a import cycle -- the
// concrete collaborator (pkg/engine.NewTablebase) satisfies this interface
// structurally.
type TablebaseProbe interface {
	Probe(pos *board.Position) (eval.Score, bool)
}

// NoTablebase always misses, the default until `setoption name SyzygyPath`
// installs a real probe via Pool.SetTablebase.
type NoTablebase struct{}

func (NoTablebase) Probe(*board.Position) (eval.Score, bool) { return 0, false }

// atomicTablebase lets Pool.SetTablebase swap the probe while a search is
// in flight without locking every node's read of it.
type atomicTablebase struct {
	v atomic.Value
}

func (a *atomicTablebase) store(tb TablebaseProbe) {
	a.v.Store(&tb)
}

func (a *atomicTablebase) load() TablebaseProbe {
	if p, ok := a.v.Load().(*TablebaseProbe); ok && p != nil {
		return *p
	}
	return NoTablebase{}
}
