package eval

import (
	"math/rand"

	"github.com/corvidchess/corvid/pkg/board"
)

// Noisy wraps another Evaluator and adds a small amount of centipawn noise
// to its output, configurable as the engine's "contempt/noise" option (see
// pkg/engine/config.go). A zero-value limit disables it entirely (the
// common case), matching the teacher's Random{} default-returns-zero
// behavior.
type Noisy struct {
	Evaluator
	rand  *rand.Rand
	limit int
}

// NewNoisy wraps eval with up to limit centipawns of symmetric noise, seeded
// by seed for reproducible test runs.
func NewNoisy(e Evaluator, limit int, seed int64) *Noisy {
	return &Noisy{Evaluator: e, rand: rand.New(rand.NewSource(seed)), limit: limit}
}

func (n *Noisy) Evaluate(pos *board.Position, alpha, beta Score) Score {
	score := n.Evaluator.Evaluate(pos, alpha, beta)
	if n.limit <= 0 {
		return score
	}
	return Crop(score + Score(n.rand.Intn(n.limit)-n.limit/2))
}
