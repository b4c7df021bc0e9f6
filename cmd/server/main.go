package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/scorekeeper/pkg/api"
	"github.com/cbodonnell/scorekeeper/pkg/config"
	"github.com/cbodonnell/scorekeeper/pkg/game"
	"github.com/cbodonnell/scorekeeper/pkg/game/types"
	"github.com/cbodonnell/scorekeeper/pkg/log"
	"github.com/cbodonnell/scorekeeper/pkg/network"
	"github.com/cbodonnell/scorekeeper/pkg/persistence"
	"github.com/cbodonnell/scorekeeper/pkg/repositories"
	"github.com/cbodonnell/scorekeeper/pkg/state"
	"github.com/cbodonnell/scorekeeper/pkg/tutorial"
	"github.com/cbodonnell/scorekeeper/pkg/version"
	"github.com/cbodonnell/scorekeeper/pkg/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	addr := flag.String("addr", cfg.Addr, "Address for the API to listen on")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting server version %s", version.Get())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// storage is optional, the scoreboard keeps working in memory without it
	store, err := repositories.NewStoreFromURL(ctx, cfg.StoreURL, cfg.RedisPrefix)
	if err != nil {
		log.Warn("Storage unavailable, game state will not be persisted: %v", err)
	} else {
		defer store.Close(context.Background())
	}

	updateChan := make(chan *types.GameState, workers.BroadcastChannelSize)
	adapter := persistence.NewAdapter(persistence.NewAdapterOptions{Store: store})
	controller := game.NewController(game.NewControllerOptions{
		Persister: adapter,
		Observers: []game.Observer{workers.NewChannelObserver(updateChan)},
	})
	if gameState, ok := adapter.Load(ctx); ok {
		log.Info("Restored game state at round %d", gameState.CurrentRound+1)
		controller.Restore(gameState)
	}

	stateManager := state.NewControllerStateManager(controller)
	subscribers := network.NewSubscriberManager()

	broadcastWorker := workers.NewBroadcastWorker(workers.NewBroadcastWorkerOptions{
		Broadcaster: subscribers,
		UpdateChan:  updateChan,
	})
	go broadcastWorker.Start(ctx)

	saveGameStateWorker := workers.NewSaveGameStateWorker(workers.NewSaveGameStateWorkerOptions{
		StateManager: stateManager,
	})
	go saveGameStateWorker.Start(ctx)

	var tlsConfig *api.TLSConfig
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		tlsConfig = &api.TLSConfig{
			CertFile: cfg.TLSCertFile,
			KeyFile:  cfg.TLSKeyFile,
		}
	}
	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Addr:         *addr,
		TLS:          tlsConfig,
		StateManager: stateManager,
		Tracker:      tutorial.NewTracker(tutorial.NewTrackerOptions{Store: store}),
		Subscribers:  subscribers,

		AllowedOrigins: cfg.AllowedOrigins,
	})
	go apiServer.Start()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
	log.Info("Shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := apiServer.Stop(stopCtx); err != nil {
		log.Error("Failed to stop API server: %v", err)
	}

	cancel()
	<-saveGameStateWorker.Done()
}
