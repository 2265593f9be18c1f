// Package uci contains a driver for using the engine under the UCI text
// protocol (SPEC_FULL §6).
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
package uci

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"go.uber.org/atomic"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/search"
)

const ProtocolName = "uci"

// Option is a UCI driver option.
type Option func(*options)

type options struct {
	useBook bool
	rand    *rand.Rand
}

// UseBook instructs the driver to consult the engine's opening book before
// searching.
func UseBook(seed int64) Option {
	return func(opt *options) {
		opt.useBook = true
		opt.rand = rand.New(rand.NewSource(seed))
	}
}

// Driver implements the UCI driver for an Engine. Grounded on the teacher's
// channel-plus-atomic.Bool shape (pkg/engine/uci/uci.go): a single
// goroutine reads lines from `in`, and a background goroutine per active
// search streams search.Info onto `out` as they arrive.
type Driver struct {
	e   *engine.Engine
	opt options

	out chan<- string

	active       atomic.Bool // true while a bestmove is owed to the GUI
	lastPosition string      // last "position" line seen, for incremental replay

	quit iox.AsyncCloser
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string, opts ...Option) (*Driver, <-chan string) {
	var opt options
	for _, fn := range opts {
		fn(&opt)
	}

	out := make(chan string, 100)
	d := &Driver{
		e:    e,
		opt:  opt,
		out:  out,
		quit: iox.NewAsyncCloser(),
	}
	go d.process(ctx, in)
	return d, out
}

func (d *Driver) Close() {
	d.quit.Close()
}

// Closed returns a channel closed once the driver has exited its process
// loop (on "quit" or end of input), for callers waiting on session end.
func (d *Driver) Closed() <-chan struct{} {
	return d.quit.Closed()
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())
	d.out <- "option name Hash type spin default 16 min 8 max 65536"
	d.out <- "option name Threads type spin default 1 min 1 max 256"
	d.out <- "option name SyzygyPath type string default <empty>"
	d.out <- "option name OwnBook type check default false"
	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				d.ensureInactive()
				logw.Infof(ctx, "Input stream closed, exiting")
				return
			}
			if !d.dispatch(ctx, line) {
				return
			}

		case <-d.quit.Closed():
			d.ensureInactive()
			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

// dispatch handles a single protocol line. Returns false to end the
// session (on "quit"); parse/protocol errors are logged and otherwise
// ignored, per SPEC_FULL §7's error taxonomy -- the affected command is
// dropped, the driver keeps reading.
func (d *Driver) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "uci":
		// Already greeted at startup; GUIs may resend. Re-acknowledge.
		d.out <- "uciok"

	case "isready":
		d.out <- "readyok"

	case "debug":
		// No additional debug-mode output implemented; accepted and ignored.

	case "setoption":
		d.setoption(ctx, args, line)

	case "ucinewgame":
		d.ensureInactive()
		d.lastPosition = ""
		if err := d.e.Reset(ctx, fen.Initial); err != nil {
			logw.Errorf(ctx, "ucinewgame reset failed: %v", err)
		}

	case "position":
		d.position(ctx, args, line)

	case "go":
		d.search(ctx, args)

	case "stop":
		d.e.Halt()

	case "ponderhit":
		// Pondering is not distinguished from normal search in this driver;
		// nothing to convert.

	case "quit":
		// Halt and join any in-flight search before process closes the
		// output channel, so a late info/bestmove post cannot hit it.
		d.ensureInactive()
		return false

	default:
		logw.Warningf(ctx, "Unknown command %q: %v", cmd, args)
	}
	return true
}

func (d *Driver) setoption(ctx context.Context, args []string, line string) {
	var name, value string
	if i := indexOf(args, "name"); i >= 0 && i+1 < len(args) {
		end := len(args)
		if v := indexOf(args, "value"); v > i {
			end = v
		}
		name = strings.Join(args[i+1:end], " ")
	}
	if v := indexOf(args, "value"); v >= 0 && v+1 < len(args) {
		value = strings.Join(args[v+1:], " ")
	}

	switch name {
	case "Hash":
		n, err := strconv.Atoi(value)
		if err != nil {
			logw.Errorf(ctx, "Invalid Hash value %q: %v", value, err)
			return
		}
		if err := d.e.SetHash(ctx, uint(n)); err != nil {
			// Resize rejected (search active): revert to previous size,
			// emit an info string, per SPEC_FULL §7's resource-error
			// handling. The previous size is simply left untouched.
			d.out <- fmt.Sprintf("info string Hash resize to %v rejected: %v", n, err)
		}

	case "Threads":
		n, err := strconv.Atoi(value)
		if err != nil {
			logw.Errorf(ctx, "Invalid Threads value %q: %v", value, err)
			return
		}
		d.e.SetThreads(uint(n))

	case "SyzygyPath":
		d.e.SetSyzygyPath(ctx, value)

	case "OwnBook":
		d.opt.useBook, _ = strconv.ParseBool(value)
		if d.opt.useBook && d.opt.rand == nil {
			d.opt.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
		}

	default:
		logw.Warningf(ctx, "Unknown option %q: %v", name, line)
	}
}

// defaultFENField fills in an omitted trailing FEN field by index: side to
// move, castling, en passant, halfmove clock, fullmove number.
func defaultFENField(i int) string {
	switch i {
	case 1:
		return "w"
	case 2, 3:
		return "-"
	case 4:
		return "0"
	default:
		return "1"
	}
}

func indexOf(args []string, tok string) int {
	for i, a := range args {
		if a == tok {
			return i
		}
	}
	return -1
}

func (d *Driver) position(ctx context.Context, args []string, line string) {
	d.ensureInactive()

	if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
		moves := strings.TrimSpace(strings.TrimPrefix(line, d.lastPosition))
		for _, arg := range strings.Fields(moves) {
			if arg == "moves" {
				continue
			}
			if err := d.e.Move(ctx, arg); err != nil {
				logw.Errorf(ctx, "Invalid position move %q: %v: %v", arg, line, err)
				return
			}
		}
		d.lastPosition = line
		return
	}

	position := fen.Initial
	if len(args) > 1 && args[0] == "fen" {
		// Collect the FEN fields up to the "moves" keyword. GUIs commonly
		// omit the trailing clock fields; pad them so fen.Decode always
		// sees the full six.
		fields := args[1:]
		if i := indexOf(fields, "moves"); i >= 0 {
			fields = fields[:i]
		}
		if len(fields) > 6 {
			fields = fields[:6]
		}
		fields = append([]string(nil), fields...)
		for len(fields) < 6 {
			fields = append(fields, defaultFENField(len(fields)))
		}
		position = strings.Join(fields, " ")
	}
	if err := d.e.Reset(ctx, position); err != nil {
		logw.Errorf(ctx, "Invalid position %q: %v", line, err)
		return
	}

	move := false
	for _, arg := range args {
		if arg == "moves" {
			move = true
			continue
		}
		if !move {
			continue
		}
		if err := d.e.Move(ctx, arg); err != nil {
			logw.Errorf(ctx, "Invalid position move %q: %v: %v", arg, line, err)
			return
		}
	}
	d.lastPosition = line
}

func (d *Driver) search(ctx context.Context, args []string) {
	d.ensureInactive()

	var limits search.Limits
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "wtime", "btime", "movestogo", "depth", "movetime", "nodes":
			i++
			if i == len(args) {
				logw.Errorf(ctx, "No argument for %v", args[i-1])
				return
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				logw.Errorf(ctx, "Invalid argument for %v: %v", args[i-1], err)
				return
			}
			switch args[i-1] {
			case "depth":
				limits.Depth = lang.Some(n)
			case "nodes":
				limits.MaxNodes = uint64(n)
			case "wtime":
				limits.Time.White = time.Duration(n) * time.Millisecond
				limits.UseTime = true
			case "btime":
				limits.Time.Black = time.Duration(n) * time.Millisecond
				limits.UseTime = true
			case "movestogo":
				limits.Time.MovesToGo = n
			case "movetime":
				limits.MoveTime = lang.Some(time.Duration(n) * time.Millisecond)
			}
		case "infinite":
			limits.Infinite = true
		default:
			// searchmoves/ponder/winc/binc/mate: accepted, not specially
			// handled by this driver.
		}
	}

	if d.opt.useBook {
		if moves, err := d.e.Book().Find(ctx, d.e.Position()); err == nil && len(moves) > 0 {
			winner := moves[d.opt.rand.Intn(len(moves))]
			d.active.Store(true)
			d.out <- fmt.Sprintf("bestmove %v", winner)
			d.active.Store(false)
			return
		}
	}

	d.active.Store(true)
	go func() {
		result := d.e.Search(ctx, limits, func(info search.Info) {
			d.out <- printInfo(info)
		})
		if d.active.CAS(true, false) {
			d.out <- printBestMove(result)
		}
	}()
}

func (d *Driver) ensureInactive() {
	if d.active.CAS(true, false) {
		d.e.Halt()
	}
}

func printInfo(info search.Info) string {
	parts := []string{"info", fmt.Sprintf("depth %v", info.Depth)}
	if info.SelDepth > 0 {
		parts = append(parts, fmt.Sprintf("seldepth %v", info.SelDepth))
	}
	if m, ok := info.Score.MateIn(); ok {
		parts = append(parts, fmt.Sprintf("score mate %v", m))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", int(info.Score)))
	}
	parts = append(parts, fmt.Sprintf("nodes %v", info.Nodes))
	parts = append(parts, fmt.Sprintf("nps %v", info.NPS))
	parts = append(parts, fmt.Sprintf("time %v", info.Time.Milliseconds()))
	parts = append(parts, fmt.Sprintf("hashfull %v", int(info.Hashfull*1000)))
	if len(info.PV) > 0 {
		parts = append(parts, "pv")
		parts = append(parts, formatMoves(info.PV))
	}
	return strings.Join(parts, " ")
}

func printBestMove(result search.Result) string {
	if result.Best.IsNone() {
		return "bestmove 0000"
	}
	if !result.Ponder.IsNone() {
		return fmt.Sprintf("bestmove %v ponder %v", result.Best, result.Ponder)
	}
	return fmt.Sprintf("bestmove %v", result.Best)
}

func formatMoves(moves []board.Move) string {
	strs := make([]string, len(moves))
	for i, m := range moves {
		strs[i] = m.String()
	}
	return strings.Join(strs, " ")
}

