// Package service runs match analysis: PPDA for both teams and the game
// state of every event from each team's point of view.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ppda/internal/adapters/mq/queue"
	"github.com/okian/ppda/internal/adapters/mq/worker"
	"github.com/okian/ppda/internal/domain/gamestate"
	"github.com/okian/ppda/internal/domain/model"
	"github.com/okian/ppda/internal/domain/ppda"
	"github.com/okian/ppda/pkg/logger"
	"github.com/okian/ppda/pkg/metrics"
)

// Failure reasons used as metric labels.
const (
	reasonEmpty        = "empty_match"
	reasonPrecondition = "precondition"
)

// Report is the analysis of one match.
type Report struct {
	RunID   string `json:"run_id"`
	MatchID string `json:"match_id"`
	Events  int    `json:"events"`
	// Teams are in first-seen order.
	Teams      []int                      `json:"teams,omitempty"`
	PPDA       []ppda.Breakdown           `json:"ppda,omitempty"`
	GameStates []gamestate.Sequence       `json:"game_states,omitempty"`
	Goals      map[gamestate.GoalKind]int `json:"goals,omitempty"`
	Error      string                     `json:"error,omitempty"`

	// Result is the raw PPDA result, kept for persistence.
	Result ppda.Result `json:"-"`
}

// GameState returns the label sequence for team.
func (r Report) GameState(team int) (gamestate.Sequence, bool) {
	for _, seq := range r.GameStates {
		if seq.TeamID == team {
			return seq, true
		}
	}
	return gamestate.Sequence{}, false
}

// Service analyzes matches.
type Service struct {
	calculator  *ppda.Calculator
	workerCount int
	metrics     *metrics.Manager
	logger      logger.Logger

	analyzed atomic.Int64
	failed   atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of matches analyzed concurrently.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records analysis metrics on m instead of the process-wide manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithCalculator sets the PPDA calculator, which carries the pitch geometry
// and defensive action classifier.
func WithCalculator(c *ppda.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.calculator = c
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		calculator:  ppda.NewCalculator(),
		workerCount: runtime.NumCPU(),
		metrics:     metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("analysis")
	}
	return s
}

// Analyze computes the report of one match.
func (s *Service) Analyze(ctx context.Context, match model.Match) (Report, error) {
	return s.analyze(ctx, uuid.NewString(), match)
}

// AnalyzeAll analyzes matches concurrently and returns their reports in input
// order. A failed match keeps its slot with Report.Error set and its error is
// joined into the returned error.
func (s *Service) AnalyzeAll(ctx context.Context, matches []model.Match) ([]Report, error) {
	if len(matches) == 0 {
		return nil, nil
	}
	runID := uuid.NewString()

	q := queue.NewInMemoryQueue(queue.WithCapacity(len(matches)), queue.WithMetrics(s.metrics))
	for i, m := range matches {
		if err := q.Enqueue(ctx, queue.Job{Seq: i, Match: m}); err != nil {
			return nil, err
		}
	}
	_ = q.Close()

	reports := make([]Report, len(matches))
	errs := make([]error, len(matches))
	handler := worker.HandlerFunc(func(ctx context.Context, j worker.Job) error { //nolint:gocritic // hugeParam
		reports[j.Seq], errs[j.Seq] = s.analyze(ctx, runID, j.Match)
		return nil
	})

	pool := worker.NewPool(min(s.workerCount, len(matches)), q, handler, worker.WithPoolMetrics(s.metrics))
	s.logger.Info(ctx, "analyzing matches",
		logger.String("run_id", runID),
		logger.Int("matches", len(matches)),
		logger.Int("workers", pool.Size()),
	)
	pool.Start(ctx)
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis run %s: %w", runID, err)
	}
	return reports, errors.Join(errs...)
}

func (s *Service) analyze(ctx context.Context, runID string, match model.Match) (Report, error) {
	rep := Report{RunID: runID, MatchID: match.ID, Events: len(match.Events)}
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	start := time.Now()
	s.logger.Debug(ctx, "analyzing match",
		logger.String("match_id", match.ID),
		logger.Int("events", len(match.Events)),
	)

	res, err := s.calculator.Calculate(match.Events)
	if err != nil {
		reason := reasonPrecondition
		if errors.Is(err, model.ErrEmptyMatch) {
			reason = reasonEmpty
		}
		s.failed.Add(1)
		s.metrics.RecordMatchFailed(reason)
		s.logger.Warn(ctx, "match rejected",
			logger.String("match_id", match.ID),
			logger.Error(err),
		)
		rep.Error = err.Error()
		return rep, fmt.Errorf("match %s: %w", match.ID, err)
	}

	rep.Result = res
	for _, team := range []int{res.Teams.First, res.Teams.Second} {
		b := res.ByTeam[team]
		rep.Teams = append(rep.Teams, team)
		rep.PPDA = append(rep.PPDA, b)
		rep.GameStates = append(rep.GameStates, gamestate.Track(match.Events, team))

		v, defined := b.Ratio.Value()
		s.metrics.RecordPPDA(b.OpponentPasses, b.DefensiveActions, v, defined)
		if !defined {
			s.logger.Info(ctx, "ppda undefined, no defensive actions in pressing zone",
				logger.String("match_id", match.ID),
				logger.Int("team_id", team),
				logger.Int("opponent_passes", b.OpponentPasses),
			)
		}
	}

	rep.Goals = countGoals(match.Events)
	for kind, n := range rep.Goals {
		for i := 0; i < n; i++ {
			s.metrics.RecordGoal(string(kind))
		}
	}

	elapsed := time.Since(start)
	s.analyzed.Add(1)
	s.metrics.RecordMatchAnalyzed(len(match.Events), float64(elapsed.Microseconds())/1000)
	s.logger.Debug(ctx, "match analyzed",
		logger.String("match_id", match.ID),
		logger.Any("ppda", rep.PPDA),
		logger.Any("final", rep.GameStates[0].Final),
	)
	return rep, nil
}

func countGoals(events []model.Event) map[gamestate.GoalKind]int {
	goals := make(map[gamestate.GoalKind]int)
	for _, e := range events {
		for _, k := range gamestate.GoalKinds(e) {
			goals[k]++
		}
	}
	return goals
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	return map[string]any{
		"workerCount": s.workerCount,
		"analyzed":    s.analyzed.Load(),
		"failed":      s.failed.Load(),
	}
}
