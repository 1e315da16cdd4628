package services

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const maxGoals = 5

// scoreSimulator produces random scorelines. Stands in until roster-based
// simulation lands; behind the MatchSimulator interface the swap is local.
type scoreSimulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewScoreSimulator() MatchSimulator {
	return &scoreSimulator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *scoreSimulator) Simulate(ctx context.Context, homeTeamID, awayTeamID int) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(maxGoals + 1), s.rng.Intn(maxGoals + 1), nil
}
