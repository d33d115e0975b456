package experiments

import (
	"context"
	"fmt"

	"connect4/agent"
	"connect4/communication/local"
	"connect4/engine"
	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/gamemaster"
	"connect4/meta"
	"connect4/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Config describes a speedup run: every worker count plays the same seeded
// games, so only the time per turn differs between them.
type Config struct {
	Dir        string
	Workers    []int // Worker counts, 0 evaluates on the coordinator
	Games      int   // Per worker count
	Seed       uint64
	StartDepth int
	MaxDepth   int
}

func DefaultConfig(dir string) Config {
	return Config{
		Dir:        dir,
		Workers:    []int{0, 1, 2, 4, 8},
		Games:      3,
		Seed:       1,
		StartDepth: meta.WORKER_START_DEPTH,
		MaxDepth:   meta.WORKER_MAX_DEPTH,
	}
}

// RunSpeedupExperiment plays every configured game and stores the game and
// turn records as csv. It returns the directory the records were written to.
func RunSpeedupExperiment(ctx context.Context, config Config) (string, error) {
	gameRecords := []metrics.GameRecord{}
	turnRecords := []metrics.TurnRecord{}

	log.Info().Msgf("starting speedup experiment with worker counts %v...", config.Workers)

	for _, workers := range config.Workers {
		for i := 0; i < config.Games; i++ {
			log.Info().Msgf("starting game %d of %d with %d workers...", i+1, config.Games, workers)

			gameMetric, turnMetrics, err := runGame(ctx, config, workers, config.Seed+uint64(i))
			if err != nil {
				return "", fmt.Errorf("game %d with %d workers: %w", i+1, workers, err)
			}
			gameRecords = append(gameRecords, metrics.GameRecord{GameMetric: gameMetric})
			for _, tm := range turnMetrics {
				turnRecords = append(turnRecords, metrics.TurnRecord{
					Game:       gameMetric.ID,
					TurnMetric: tm,
				})
			}

			log.Info().Msgf("completed game %d with winner: %s in %s", i+1, gameMetric.Winner, gameMetric.Duration)
		}
	}

	log.Info().Msg("completed speedup experiment")

	writer, err := metrics.NewWriter(config.Dir, "speedup")
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	err = writer.WriteGameRecords(gameRecords)
	if err != nil {
		return "", err
	}
	log.Info().Msg("stored game records")

	err = writer.WriteTurnRecords(turnRecords)
	if err != nil {
		return "", err
	}
	log.Info().Msg("stored turn records")
	return writer.Dir(), nil
}

// runGame plays one game against a seeded random opponent on an in-process
// group of workers+1 ranks.
func runGame(ctx context.Context, config Config, workers int, seed uint64) (metrics.GameMetric, []metrics.TurnMetric, error) {
	endpoints, err := local.NewGroup(workers + 1)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	defer endpoints[meta.MASTER_RANK].Close()

	cpu, player := game.Red, game.Yellow
	master := gamemaster.NewMaster(endpoints[meta.MASTER_RANK],
		gamemaster.WithColors(cpu, player),
		gamemaster.WithMetrics(metrics.NewCollector()),
		gamemaster.WithLocalEvaluator(func(task searcher.Task) searcher.Task {
			return agent.Evaluate(task, config.StartDepth, config.MaxDepth, cpu, player)
		}),
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, endpoint := range endpoints[1:] {
		worker := agent.NewWorker(endpoint,
			agent.WithColors(cpu, player),
			agent.WithDepth(config.StartDepth, config.MaxDepth))
		g.Go(func() error { return worker.Run(ctx) })
	}

	var gameMetric metrics.GameMetric
	var turnMetrics []metrics.TurnMetric
	g.Go(func() error {
		defer master.Shutdown(context.WithoutCancel(ctx))
		var err error
		_, gameMetric, turnMetrics, err = engine.NewLocalEngine(master, engine.NewRandomOpponent(seed)).Run(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return gameMetric, turnMetrics, err
	}

	gameMetric.Size = workers + 1
	return gameMetric, turnMetrics, nil
}
