package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connect4/agent"
	"connect4/communication"
	"connect4/communication/client"
	"connect4/communication/local"
	"connect4/communication/server"
	"connect4/experiments"
	"connect4/gamemaster"
	"connect4/meta"
	"connect4/player"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type config struct {
	role       string
	workers    int
	addr       string
	url        string
	rank       int
	size       int
	metricsDir string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.role, "role", "local", "Process role: local, coordinator, worker or speedup")
	flag.IntVar(&cfg.workers, "workers", 3, "Number of in-process workers for the local role")
	flag.StringVar(&cfg.addr, "addr", ":8080", "Listen address of the coordinator")
	flag.StringVar(&cfg.url, "url", "ws://localhost:8080", "Coordinator url a worker joins")
	flag.IntVar(&cfg.rank, "rank", 1, "Rank of a worker")
	flag.IntVar(&cfg.size, "size", 4, "Process group size, coordinator included")
	flag.StringVar(&cfg.metricsDir, "metrics-dir", "experiments", "Directory the speedup role writes csv records to")
	logLevel := flag.String("log-level", "info", "Log level: trace, debug, info, warn or error")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", *logLevel)
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.role {
	case "local":
		err = runLocal(ctx, cfg)
	case "coordinator":
		err = runCoordinator(ctx, cfg)
	case "worker":
		err = runWorker(ctx, cfg)
	case "speedup":
		var dir string
		dir, err = experiments.RunSpeedupExperiment(ctx, experiments.DefaultConfig(cfg.metricsDir))
		if err == nil {
			log.Info().Str("dir", dir).Msg("speedup records written")
		}
	default:
		err = fmt.Errorf("unknown role %q", cfg.role)
	}

	if err != nil && !errors.Is(err, io.EOF) {
		log.Fatal().Err(err).Str("role", cfg.role).Msg("exiting")
	}
}

// runLocal runs the coordinator and its workers as goroutines of one process.
func runLocal(ctx context.Context, cfg config) error {
	if cfg.workers < 0 {
		return fmt.Errorf("invalid worker count %d", cfg.workers)
	}
	endpoints, err := local.NewGroup(cfg.workers + 1)
	if err != nil {
		return err
	}
	defer endpoints[meta.MASTER_RANK].Close()

	g, ctx := errgroup.WithContext(ctx)
	for _, endpoint := range endpoints[1:] {
		worker := agent.NewWorker(endpoint)
		g.Go(func() error { return worker.Run(ctx) })
	}
	g.Go(func() error {
		return play(ctx, endpoints[meta.MASTER_RANK])
	})
	return g.Wait()
}

func runCoordinator(ctx context.Context, cfg config) error {
	sc, err := server.NewServerCommunicator(cfg.size)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.addr,
		Handler:           sc.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.addr).Int("size", cfg.size).Msg("coordinator listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sc.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http server shutdown")
		}
	}()

	log.Info().Msgf("waiting for %d workers...", cfg.size-1)
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := <-serveErr; err != nil {
			log.Error().Err(err).Msg("http server failed")
			cancel()
		}
	}()
	if err := sc.WaitForWorkers(waitCtx); err != nil {
		return err
	}
	return play(ctx, sc)
}

func runWorker(ctx context.Context, cfg config) error {
	cc, err := client.Dial(ctx, cfg.url, cfg.rank)
	if err != nil {
		return err
	}
	defer cc.Close()
	log.Info().Int("rank", cc.Rank()).Int("size", cc.Size()).Msg("joined process group")

	return agent.NewWorker(cc).Run(ctx)
}

func play(ctx context.Context, comm communication.Communicator) error {
	master := gamemaster.NewMaster(comm)
	return master.Run(ctx, player.NewConsole(os.Stdin, os.Stdout))
}
