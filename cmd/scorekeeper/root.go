package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cbodonnell/scorekeeper/pkg/config"
	"github.com/cbodonnell/scorekeeper/pkg/game"
	"github.com/cbodonnell/scorekeeper/pkg/log"
	"github.com/cbodonnell/scorekeeper/pkg/persistence"
	"github.com/cbodonnell/scorekeeper/pkg/repositories"
	"github.com/cbodonnell/scorekeeper/pkg/scoreboard"
	"github.com/cbodonnell/scorekeeper/pkg/tutorial"
	"github.com/cbodonnell/scorekeeper/pkg/version"
	"github.com/spf13/cobra"
)

const defaultStoreURL = "sqlite://scorekeeper.db"

// session is the scoreboard loaded from the store for a single command.
type session struct {
	store      repositories.Store
	controller *game.Controller
	tracker    *tutorial.Tracker
	now        func() time.Time
}

type rootOptions struct {
	storeURL  string
	logLevel  string
	now       func() time.Time
	openStore func(ctx context.Context, storeURL string) (repositories.Store, error)
}

func defaultRootOptions() *rootOptions {
	return &rootOptions{
		now: time.Now,
		openStore: func(ctx context.Context, storeURL string) (repositories.Store, error) {
			return repositories.NewStoreFromURL(ctx, storeURL, "")
		},
	}
}

// newRootCmd builds the command tree. The returned func releases the store opened
// by whichever command ran and must be called after Execute, even when it fails.
func newRootCmd(opts *rootOptions) (*cobra.Command, func()) {
	var s *session

	cmd := &cobra.Command{
		Use:          "scorekeeper",
		Short:        "Keep score for a four round party game",
		Version:      version.Get(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			s, err = openSession(cmd.Context(), opts, cmd.ErrOrStderr())
			return err
		},
	}

	storeURL := defaultStoreURL
	if cfg, err := config.Load(); err == nil {
		storeURL = cfg.StoreURL
	}
	cmd.PersistentFlags().StringVar(&opts.storeURL, "store", storeURL, "Store connection URL")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level")

	get := func() *session { return s }
	cmd.AddCommand(
		newShowCmd(get),
		newRoundCmd(get),
		newScoreCmd(get),
		newStatusCmd(get),
		newResetCmd(get),
		newModeCmd(get),
		newTutorialCmd(get),
	)
	return cmd, func() { s.close() }
}

func openSession(ctx context.Context, opts *rootOptions, logOut io.Writer) (*session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parsedLogLevel, err := log.ParseLogLevel(opts.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %v", err)
	}
	log.SetDefaultLogger(log.New(logOut, "", log.DefaultLoggerFlag, parsedLogLevel).WithComponent("cli"))

	store, err := opts.openStore(ctx, opts.storeURL)
	if err != nil {
		log.Warn("Storage unavailable, changes will not be saved: %v", err)
	}

	adapter := persistence.NewAdapter(persistence.NewAdapterOptions{Store: store})
	controller := game.NewController(game.NewControllerOptions{Persister: adapter})
	if gameState, ok := adapter.Load(ctx); ok {
		controller.Restore(gameState)
	}

	return &session{
		store:      store,
		controller: controller,
		tracker:    tutorial.NewTracker(tutorial.NewTrackerOptions{Store: store}),
		now:        opts.now,
	}, nil
}

func (s *session) close() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(context.Background()); err != nil {
		log.Warn("Failed to close store: %v", err)
	}
}

func (s *session) print(cmd *cobra.Command) {
	fmt.Fprintln(cmd.OutOrStdout(), scoreboard.Render(s.controller.State()))
}
