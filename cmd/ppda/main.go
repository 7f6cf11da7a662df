// Command ppda analyzes match event logs: PPDA for both teams and the game
// state of every event. Configuration comes from defaults, an optional YAML
// file named by PPDA_CONFIG, and PPDA_ environment variables.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/okian/ppda/internal/adapters/repository"
	"github.com/okian/ppda/internal/adapters/source"
	service "github.com/okian/ppda/internal/app"
	"github.com/okian/ppda/internal/config"
	"github.com/okian/ppda/internal/domain/defensive"
	"github.com/okian/ppda/internal/domain/model"
	"github.com/okian/ppda/internal/domain/ppda"
	"github.com/okian/ppda/pkg/logger"
	"github.com/okian/ppda/pkg/metrics"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsAddr != "" {
		go func() {
			log.Info(ctx, "serving metrics", logger.String("addr", cfg.MetricsAddr))
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error(ctx, "metrics server failed", logger.Error(err))
			}
		}()
	}

	out := io.Writer(os.Stdout)
	if cfg.OutputPath != "" {
		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			log.Error(ctx, "cannot create output", logger.String("path", cfg.OutputPath), logger.Error(err))
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := run(ctx, cfg, out); err != nil {
		log.Error(ctx, "analysis failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run loads matches from the configured source, analyzes them, writes the
// JSON report to out and persists annotations when enabled.
func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	log := logger.Get()

	geo, err := cfg.Geometry()
	if err != nil {
		return err
	}
	svc := service.New(
		service.WithLogger(log.Named("analysis")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithCalculator(ppda.NewCalculator(
			ppda.WithGeometry(geo),
			ppda.WithClassifier(defensive.NewRuleClassifier(defensive.WithFoulSubEvents(cfg.FoulSubEvents))),
		)),
	)

	var store *repository.SQLiteStore
	if cfg.Source == config.SourceSQLite || cfg.Persist {
		store, err = repository.Open(ctx, cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	matches, err := loadMatches(ctx, cfg, store)
	if err != nil {
		return err
	}
	log.Info(ctx, "matches loaded", logger.String("source", cfg.Source), logger.Int("matches", len(matches)))

	reports, analyzeErr := svc.AnalyzeAll(ctx, matches)
	if reports == nil && analyzeErr != nil {
		return analyzeErr
	}
	if analyzeErr != nil {
		log.Warn(ctx, "some matches were rejected", logger.Error(analyzeErr))
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if cfg.Persist {
		if cfg.Source == config.SourceJSONL {
			if err := importMatches(ctx, store, matches); err != nil {
				return err
			}
		}
		if err := persist(ctx, store, reports); err != nil {
			return err
		}
		log.Info(ctx, "annotations persisted", logger.String("database", cfg.DatabasePath))
	}
	return nil
}

func loadMatches(ctx context.Context, cfg *config.Config, store repository.Store) ([]model.Match, error) {
	switch cfg.Source {
	case config.SourceSQLite:
		ids, err := store.MatchIDs(ctx)
		if err != nil {
			return nil, err
		}
		matches := make([]model.Match, 0, len(ids))
		for _, id := range ids {
			m, err := store.LoadMatch(ctx, id)
			if err != nil {
				return nil, err
			}
			matches = append(matches, m)
		}
		return matches, nil
	default:
		f, err := os.Open(cfg.InputPath)
		if err != nil {
			return nil, fmt.Errorf("open events: %w", err)
		}
		defer f.Close()
		events, err := source.ReadJSONLines(f)
		if err != nil {
			return nil, err
		}
		return model.GroupByMatch(events), nil
	}
}

// importMatches makes the stored events of every match equal to the input,
// so annotations computed from the input line up with stored rows. Matches
// whose stored events differ are replaced along with their old annotations.
func importMatches(ctx context.Context, store repository.Store, matches []model.Match) error {
	for _, m := range matches {
		stored, err := store.LoadMatch(ctx, m.ID)
		switch {
		case err == nil && sameEvents(stored.Events, m.Events):
			continue
		case err != nil && !errors.Is(err, repository.ErrMatchNotFound):
			return err
		}
		if err := store.ReplaceMatch(ctx, m); err != nil {
			return fmt.Errorf("import match %s: %w", m.ID, err)
		}
	}
	return nil
}

func sameEvents(a, b []model.Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.EventID != y.EventID || x.TeamID != y.TeamID || x.EventType != y.EventType ||
			x.SubEventType != y.SubEventType || x.StartX != y.StartX || x.StartY != y.StartY ||
			!slices.Equal(x.Tags.Sorted(), y.Tags.Sorted()) {
			return false
		}
	}
	return true
}

func persist(ctx context.Context, store repository.Store, reports []service.Report) error {
	for _, r := range reports {
		if r.Error != "" {
			continue
		}
		if err := store.SavePPDA(ctx, r.MatchID, r.Result); err != nil {
			return fmt.Errorf("save ppda %s: %w", r.MatchID, err)
		}
		for _, seq := range r.GameStates {
			if err := store.SaveGameStates(ctx, r.MatchID, seq); err != nil {
				return fmt.Errorf("save game states %s/%d: %w", r.MatchID, seq.TeamID, err)
			}
		}
	}
	return nil
}
