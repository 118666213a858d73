package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"battlesim/internal/batch"
	"battlesim/internal/combat"
	"battlesim/internal/config"
	"battlesim/internal/logging"
	"battlesim/internal/util"
)

func main() {
	var cfgPath, out, logLevel, logFormat string
	var seed int64
	var n, workers int
	var saveLog bool
	flag.StringVar(&cfgPath, "config", "assets/scenario.yaml", "scenario file")
	flag.StringVar(&out, "out", "out.json", "output file (single) or summary file (batch)")
	flag.Int64Var(&seed, "seed", 0, "seed, overrides the scenario seed when non-zero")
	flag.IntVar(&n, "n", 1, "number of simulations")
	flag.IntVar(&workers, "workers", 8, "parallel simulations in batch mode")
	flag.BoolVar(&saveLog, "log", true, "save full event log when n==1")
	flag.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	flag.StringVar(&logFormat, "log-format", "console", "console or json")
	flag.Parse()

	log, err := logging.New(logLevel, logFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	if err := run(log, cfgPath, out, seed, n, workers, saveLog); err != nil {
		log.Error("simulation failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.Logger, cfgPath, out string, seed int64, n, workers int, saveLog bool) error {
	sc, err := config.LoadScenario(cfgPath)
	if err != nil {
		return err
	}
	if seed != 0 {
		sc.Seed = seed
	}
	in, err := sc.BattleInput()
	if err != nil {
		return err
	}

	if n <= 1 {
		res := combat.Simulate(in, util.New(sc.Seed), combat.WithLogger(log), combat.WithRecord(saveLog))
		if err := os.WriteFile(out, combat.MarshalPretty(res), 0644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		log.Info("single simulation finished",
			zap.String("winner", winnerName(res.Winner)),
			zap.Int("rounds", res.Rounds),
			zap.Int64("seed", sc.Seed),
			zap.String("out", out))
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	sum, err := batch.Run(ctx, in, n, sc.Seed, workers)
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	if err := os.WriteFile(out, combat.MarshalPretty(sum), 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	log.Info("batch finished",
		zap.Int("runs", sum.Runs),
		zap.Float64("attacker_win_rate", sum.AttackerWinRate),
		zap.Float64("avg_rounds", sum.AvgRounds),
		zap.String("out", filepath.Base(out)))
	return nil
}

func winnerName(s combat.Side) string {
	if s == "" {
		return "draw"
	}
	return string(s)
}
