package search

import (
	"context"
	"sync"
	"time"

	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"go.uber.org/atomic"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// TimeControl mirrors the teacher's searchctl.TimeControl soft/hard split
// (SPEC_FULL §5): soft inhibits starting a new iterative-deepening depth,
// hard forces immediate abort via time.AfterFunc.
type TimeControl struct {
	White, Black time.Duration
	MovesToGo    int // 0 == rest of game
}

func (t TimeControl) limits(c board.Color) (soft, hard time.Duration) {
	remainder := t.White
	if c == board.Black {
		remainder = t.Black
	}
	moves := time.Duration(40)
	if t.MovesToGo > 0 {
		moves = time.Duration(t.MovesToGo) + 1
	}
	soft = remainder / (2 * moves)
	hard = 3 * soft
	return soft, hard
}

// Limits bounds a single search, derived by the UCI driver from a `go`
// command (SPEC_FULL §6). Optional fields follow the teacher's
// searchctl.Options shape: unset means unbounded.
type Limits struct {
	Depth    lang.Optional[int]
	MoveTime lang.Optional[time.Duration]
	Time     TimeControl
	UseTime  bool
	Infinite bool
	MaxNodes uint64 // 0 = unbounded
}

// Info is the periodic progress report described in SPEC_FULL §4.6 and the
// `info` UCI output line (§6).
type Info struct {
	Depth    int
	SelDepth int
	Score    eval.Score
	Nodes    uint64
	NPS      uint64
	Time     time.Duration
	PV       []board.Move
	Hashfull float64
}

// PostFunc is called after each completed iterative-deepening depth.
type PostFunc func(Info)

// Result is the final outcome of Pool.Search: the move the engine commits
// to, and (if found) a ponder move to consider during the opponent's turn.
type Result struct {
	Best    board.Move
	Ponder  board.Move
	Nodes   uint64
	Depth   int
	PV      []board.Move
	Score   eval.Score
}

// Pool is the lazy-SMP thread pool and search driver (SPEC_FULL §4.11): N
// workers search the root position in parallel sharing only the
// transposition table; the main worker (thread 0) owns time control and
// final reporting. Grounded on the teacher's searchctl.Iterative/Handle
// shape, fanned out across goroutines instead of a single search thread.
type Pool struct {
	TT        TranspositionTable
	Evaluator eval.Evaluator
	Threads   int

	tb      atomicTablebase
	abort   *atomic.Bool
	threads []*Thread  // created on first Search, reused per game
	mu      sync.Mutex // serializes concurrent Search calls; one search at a time
}

// NewPool creates a driver with the given transposition table, evaluator,
// and worker count (clamped to >= 1 by the caller per SPEC_FULL §6's
// Threads option). The tablebase probe defaults to NoTablebase and can be
// changed at any time (even mid-search) via SetTablebase.
func NewPool(tt TranspositionTable, evaluator eval.Evaluator, threads int) *Pool {
	if threads < 1 {
		threads = 1
	}
	p := &Pool{TT: tt, Evaluator: evaluator, Threads: threads, abort: atomic.NewBool(false)}
	p.tb.store(NoTablebase{})
	return p
}

// SetTablebase installs the tablebase-probe collaborator consulted by step
// 4 of SPEC_FULL §4.6, e.g. in response to `setoption name SyzygyPath`.
func (p *Pool) SetTablebase(tb TablebaseProbe) {
	p.tb.store(tb)
}

// Halt requests the current search to stop as soon as its workers observe
// the flag, per the node-count cadence of SPEC_FULL §5.
func (p *Pool) Halt() {
	p.abort.Store(true)
}

// Search runs a lazy-SMP iterative-deepening search from pos under limits,
// invoking post after every completed main-thread depth, and returns once
// every worker has unwound. The caller must not mutate pos while a search
// is in flight (Pool clones it once per worker, up front).
func (p *Pool) Search(ctx context.Context, pos *board.Position, limits Limits, post PostFunc) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.abort.Store(false)
	defer p.abort.Store(false)

	soft, hard, useSoft := p.deadlines(pos.Turn(), limits)
	if useSoft {
		timer := time.AfterFunc(hard, p.Halt)
		defer timer.Stop()
	}

	start := time.Now()

	if len(p.threads) != p.Threads {
		p.threads = make([]*Thread, p.Threads)
		for i := range p.threads {
			p.threads[i] = NewThread(i, pos, p.TT, p.Evaluator, &p.tb, p.abort)
		}
	}
	threads := p.threads
	for _, th := range threads {
		th.BeginSearch(pos)
	}
	main := threads[0]

	var wg sync.WaitGroup
	for i := 1; i < len(threads); i++ {
		wg.Add(1)
		go func(th *Thread) {
			defer wg.Done()
			defer th.PublishNodes()
			// Helper workers skew their depth schedule to encourage search
			// diversity, per SPEC_FULL §4.11: odd-indexed helpers start one
			// ply deeper.
			skew := th.ID % 2
			depth := 1 + skew
			for !p.abort.Load() {
				if d, ok := limits.Depth.V(); ok && depth > d+3 {
					return
				}
				th.pv.clear(0)
				th.node(0, depth, eval.MinScore, eval.MaxScore, true, false, board.NoMove)
				th.PublishNodes()
				depth++
			}
		}(threads[i])
	}

	var result Result
	depth := 1
	for {
		if d, ok := limits.Depth.V(); ok && depth > d {
			break
		}
		if p.abort.Load() || contextx.IsCancelled(ctx) {
			break
		}

		iterStart := time.Now()
		main.SelDepth = 0
		main.pv.clear(0)
		score := main.node(0, depth, eval.MinScore, eval.MaxScore, true, false, board.NoMove)

		if p.abort.Load() && depth > 1 {
			break // partial iteration; keep the previous depth's result
		}

		pv := main.pv.moves(0)
		if len(pv) == 0 {
			// No PV recorded (e.g. immediate mate/stalemate at root); fall
			// back to any legal move so bestmove is never empty, per
			// SPEC_FULL §7's error-handling contract.
			pv = anyLegalMove(pos)
		}

		result = Result{
			Best:  firstOr(pv, board.NoMove),
			Nodes: totalNodes(threads),
			Depth: depth,
			PV:    pv,
			Score: score,
		}
		if len(pv) > 1 {
			result.Ponder = pv[1]
		}

		elapsed := time.Since(start)
		iterElapsed := time.Since(iterStart)
		nps := uint64(0)
		if elapsed > 0 {
			nps = uint64(float64(result.Nodes) / elapsed.Seconds())
		}
		if post != nil {
			post(Info{
				Depth:    depth,
				SelDepth: main.SelDepth,
				Score:    score,
				Nodes:    result.Nodes,
				NPS:      nps,
				Time:     elapsed,
				PV:       pv,
				Hashfull: p.TT.Used(),
			})
		}

		if limits.MaxNodes > 0 && result.Nodes >= limits.MaxNodes {
			break
		}
		if md, ok := score.MateIn(); ok && md != 0 && abs(md)*2 <= depth {
			break // exact forced mate found within full-width search
		}
		if useSoft && soft > 0 && iterElapsed > 0 && time.Since(start)+iterElapsed*2 > soft {
			break
		}
		depth++
	}

	p.abort.Store(true)
	wg.Wait()
	result.Nodes = totalNodes(threads)

	return result
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (p *Pool) deadlines(turn board.Color, limits Limits) (soft, hard time.Duration, use bool) {
	if limits.Infinite {
		return 0, 0, false
	}
	if mt, ok := limits.MoveTime.V(); ok {
		return mt, mt, true
	}
	if limits.UseTime {
		soft, hard = limits.Time.limits(turn)
		return soft, hard, true
	}
	return 0, 0, false
}

// totalNodes sums the main worker's exact count with each helper's
// last-published count; helpers publish at the abort-check cadence and at
// iteration boundaries, so this never races their hot counters.
func totalNodes(threads []*Thread) uint64 {
	n := threads[0].Nodes
	for _, th := range threads[1:] {
		n += th.PublishedNodes()
	}
	return n
}

func firstOr(moves []board.Move, fallback board.Move) board.Move {
	if len(moves) == 0 {
		return fallback
	}
	return moves[0]
}

// anyLegalMove falls back to reporting any legal move when search produced
// no PV at all, so the engine always emits a bestmove (SPEC_FULL §7).
func anyLegalMove(pos *board.Position) []board.Move {
	var list board.MoveList
	board.GenerateLegalMoves(pos, &list)
	if list.N == 0 {
		return nil
	}
	return []board.Move{list.Moves[0]}
}
