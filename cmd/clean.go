package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"riptide/internal/advisor"
	"riptide/internal/engine"
	"riptide/internal/log"
	"riptide/internal/raindrop"
	"riptide/internal/state"
	"riptide/internal/ui/app"
	"riptide/internal/ui/sessionpicker"
	"riptide/internal/watcher"
)

func runClean(_ *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup, err := initLogging("riptide")
	if err != nil {
		return err
	}
	defer cleanup()

	client, err := raindrop.NewClient(cfg.Raindrop.Token,
		raindrop.WithBaseURL(cfg.Raindrop.BaseURL),
		raindrop.WithPageSize(cfg.Raindrop.PageSize),
	)
	if err != nil {
		return err
	}

	adv, err := advisor.NewClient(cfg.Advisor.APIKey,
		advisor.WithBaseURL(cfg.Advisor.BaseURL),
		advisor.WithModel(cfg.Advisor.Model),
		advisor.WithMaxTokens(cfg.Advisor.MaxTokens),
		advisor.WithMinInterval(time.Duration(cfg.Advisor.RequestInterval)*time.Millisecond),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collections, err := client.Collections(ctx)
	if err != nil {
		return fmt.Errorf("fetching collections: %w", err)
	}

	if err := ensureStateDir(cfg.StateDir); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	store := state.NewStore(cfg.StateDir)
	entries, err := store.List()
	if err != nil {
		return fmt.Errorf("reading state directory: %w", err)
	}

	executor := raindrop.NewExecutor(client, cfg.ArchiveCollection)

	start := func(ctx context.Context, item sessionpicker.Item, fresh bool, reviewer engine.Reviewer) (*engine.Engine, <-chan error, error) {
		session, err := sessionFor(store, item, fresh)
		if err != nil {
			return nil, nil, err
		}

		eng, err := engine.New(client, adv, executor, reviewer, store, session, collections, engine.Options{
			BatchSize:           cfg.BatchSize,
			DryRun:              cfg.DryRun,
			MilestoneInterval:   cfg.MilestoneInterval,
			CheckpointPerRecord: cfg.CheckpointPerRecord,
			RetainState:         cfg.RetainState,
		})
		if err != nil {
			return nil, nil, err
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- eng.Run(ctx)
		}()
		return eng, errCh, nil
	}

	// Watch the state directory so the picker reflects checkpoints written by
	// other riptide processes.
	var watchCh <-chan struct{}
	w, err := watcher.New(watcher.DefaultConfig(cfg.StateDir))
	if err == nil {
		if ch, startErr := w.Start(); startErr == nil {
			watchCh = ch
			defer func() { _ = w.Stop() }()
		}
	} else {
		log.Warn(log.CatWatcher, "state watcher unavailable", "error", err)
	}

	model := app.New(ctx, app.Options{
		Collections:    collections,
		Entries:        entries,
		Store:          store,
		Start:          start,
		WatchCh:        watchCh,
		ShowReasonings: cfg.UI.ShowReasonings,
		DryRun:         cfg.DryRun,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	if m, ok := final.(app.Model); ok {
		fmt.Print(m.View())
		if runErr := m.Err(); runErr != nil && !errors.Is(runErr, engine.ErrInterrupted) {
			return runErr
		}
	}
	return nil
}

// sessionFor picks the session to run: a fresh one, or the resumable
// checkpoint the user chose. Fresh runs discard any existing file first so an
// old checkpoint cannot shadow the new session.
func sessionFor(store *state.Store, item sessionpicker.Item, fresh bool) (*state.Session, error) {
	if fresh {
		if item.Path != "" {
			if err := store.Delete(item.Path); err != nil {
				return nil, err
			}
		}
		return state.NewSession(item.Collection.ID, item.Collection.Title), nil
	}
	if item.Resume != nil {
		return item.Resume, nil
	}
	return state.NewSession(item.Collection.ID, item.Collection.Title), nil
}

// ensureStateDir creates the state directory ahead of the first checkpoint so
// the watcher has something to watch.
func ensureStateDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
