package batch

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"battlesim/internal/combat"
	"battlesim/internal/util"
)

type Summary struct {
	Runs                 int     `json:"runs"`
	Seed                 int64   `json:"seed"`
	AttackerWins         int     `json:"attacker_wins"`
	DefenderWins         int     `json:"defender_wins"`
	Draws                int     `json:"draws"`
	AttackerWinRate      float64 `json:"attacker_win_rate"`
	AvgRounds            float64 `json:"avg_rounds"`
	AvgAttackerRemaining float64 `json:"avg_attacker_remaining"`
	AvgDefenderRemaining float64 `json:"avg_defender_remaining"`
}

type result struct {
	winner   combat.Side
	rounds   int
	attacker int
	defender int
}

// Run simulates in n times on up to workers goroutines. Run i uses the seed
// util.Derive(seed, i), so the summary does not depend on workers.
func Run(ctx context.Context, in combat.Input, n int, seed int64, workers int, opts ...combat.Option) (Summary, error) {
	if n <= 0 {
		return Summary{}, fmt.Errorf("batch: run count must be positive, got %d", n)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]result, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	opts = append([]combat.Option{combat.WithRecord(false)}, opts...)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := combat.Simulate(in, util.New(util.Derive(seed, i)), opts...)
			results[i] = result{
				winner:   out.Winner,
				rounds:   out.Rounds,
				attacker: out.AttackerRemaining,
				defender: out.DefenderRemaining,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	return summarize(results, seed), nil
}

func summarize(results []result, seed int64) Summary {
	s := Summary{Runs: len(results), Seed: seed}
	var rounds, att, def int
	for _, r := range results {
		switch r.winner {
		case combat.SideAttacker:
			s.AttackerWins++
		case combat.SideDefender:
			s.DefenderWins++
		default:
			s.Draws++
		}
		rounds += r.rounds
		att += r.attacker
		def += r.defender
	}
	n := float64(len(results))
	s.AttackerWinRate = float64(s.AttackerWins) / n
	s.AvgRounds = float64(rounds) / n
	s.AvgAttackerRemaining = float64(att) / n
	s.AvgDefenderRemaining = float64(def) / n
	return s
}
