package uci_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/engine/uci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// session drives a scripted UCI exchange: each input line is sent in order,
// and all output until (and including) the terminating predicate line is
// collected. Mirrors how a GUI host exercises the engine over stdin/stdout.
func session(t *testing.T, inputs []string, done func(string) bool) []string {
	t.Helper()
	ctx := context.Background()

	e := engine.New(ctx, "corvid-test", "test")
	in := make(chan string, len(inputs))
	driver, out := uci.NewDriver(ctx, e, in)
	defer driver.Close()

	for _, line := range inputs {
		in <- line
	}

	var lines []string
	deadline := time.After(30 * time.Second)
	for {
		select {
		case line, ok := <-out:
			if !ok {
				return lines
			}
			lines = append(lines, line)
			if done(line) {
				return lines
			}
		case <-deadline:
			t.Fatalf("timed out waiting for output; got %v", lines)
		}
	}
}

func isBestMove(line string) bool {
	return strings.HasPrefix(line, "bestmove")
}

func TestDriverHandshake(t *testing.T) {
	lines := session(t, []string{"isready"}, func(s string) bool { return s == "readyok" })

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "id name")
	assert.Contains(t, joined, "option name Hash")
	assert.Contains(t, joined, "option name Threads")
	assert.Contains(t, joined, "uciok")
	assert.Contains(t, joined, "readyok")
}

func TestDriverFindsMateInOne(t *testing.T) {
	lines := session(t, []string{
		"position fen 7k/8/8/8/8/8/6Q1/7K w - -",
		"go depth 3",
	}, isBestMove)

	var sawMate bool
	for _, line := range lines {
		if strings.Contains(line, "score mate 1") {
			sawMate = true
		}
	}
	assert.True(t, sawMate, "expected an info line reporting mate 1: %v", lines)

	last := lines[len(lines)-1]
	require.True(t, isBestMove(last))
	assert.NotEqual(t, "bestmove 0000", last)
}

func TestDriverSearchAfterMoves(t *testing.T) {
	lines := session(t, []string{
		"position startpos moves e2e4",
		"go depth 4",
	}, isBestMove)

	last := lines[len(lines)-1]
	require.True(t, isBestMove(last))

	fields := strings.Fields(last)
	require.GreaterOrEqual(t, len(fields), 2)
	move := fields[1]
	assert.Len(t, move, 4, "expected a long-algebraic reply move, got %q", move)
}

func TestDriverHashResizeAndNewGame(t *testing.T) {
	lines := session(t, []string{
		"setoption name Hash value 32",
		"ucinewgame",
		"position startpos",
		"go depth 3",
	}, isBestMove)

	last := lines[len(lines)-1]
	assert.True(t, isBestMove(last))
}

func TestDriverIgnoresUnknownCommands(t *testing.T) {
	lines := session(t, []string{
		"xyzzy",
		"isready",
	}, func(s string) bool { return s == "readyok" })

	assert.Equal(t, "readyok", lines[len(lines)-1])
}
