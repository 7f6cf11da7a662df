package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/ppda/internal/domain/gamestate"
	"github.com/okian/ppda/internal/domain/model"
	"github.com/okian/ppda/internal/domain/ppda"
	"github.com/okian/ppda/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "events.db"), WithMetrics(m))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleEvents() []model.Event {
	return []model.Event{
		{MatchID: "m2", EventID: "a", TeamID: 1, EventType: model.EventPass, StartX: 30, Tags: model.NewTagSet("Accurate")},
		{MatchID: "m1", EventID: "b", TeamID: 5, EventType: model.EventPass, StartX: 10, Tags: model.NewTagSet()},
		{MatchID: "m2", EventID: "c", TeamID: 2, EventType: model.EventFoul, SubEventType: model.SubFoul, StartX: 70, StartY: 12.5, Tags: model.NewTagSet()},
		{MatchID: "m2", EventID: "d", TeamID: 1, EventType: model.EventShot, StartX: 95, Tags: model.NewTagSet(model.TagGoal, "Accurate")},
	}
}

func TestSQLiteStore_InsertAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.InsertEvents(ctx, sampleEvents()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ids, err := s.MatchIDs(ctx)
	if err != nil {
		t.Fatalf("match ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "m2" || ids[1] != "m1" {
		t.Fatalf("expected [m2 m1], got %v", ids)
	}

	m, err := s.LoadMatch(ctx, "m2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(m.Events))
	}
	if m.Events[0].EventID != "a" || m.Events[1].EventID != "c" || m.Events[2].EventID != "d" {
		t.Errorf("events out of order: %+v", m.Events)
	}
	if !m.Events[2].HasTag(model.TagGoal) || !m.Events[2].HasTag("Accurate") {
		t.Errorf("tags not restored: %v", m.Events[2].Tags)
	}
	if m.Events[1].SubEventType != model.SubFoul || m.Events[1].StartY != 12.5 {
		t.Errorf("fields not restored: %+v", m.Events[1])
	}
}

func TestSQLiteStore_AppendContinuesSequence(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first := []model.Event{{MatchID: "m", EventID: "1", TeamID: 1, EventType: model.EventPass}}
	second := []model.Event{{MatchID: "m", EventID: "2", TeamID: 2, EventType: model.EventPass}}
	if err := s.InsertEvents(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertEvents(ctx, second); err != nil {
		t.Fatal(err)
	}

	m, err := s.LoadMatch(ctx, "m")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Events) != 2 || m.Events[0].EventID != "1" || m.Events[1].EventID != "2" {
		t.Errorf("unexpected events: %+v", m.Events)
	}
	ids, _ := s.MatchIDs(ctx)
	if len(ids) != 1 {
		t.Errorf("expected one match id, got %v", ids)
	}
}

func TestSQLiteStore_MatchNotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.LoadMatch(context.Background(), "missing"); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("expected ErrMatchNotFound, got %v", err)
	}
	if _, err := s.LoadPPDA(context.Background(), "missing"); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestSQLiteStore_GameStates(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.InsertEvents(ctx, sampleEvents()); err != nil {
		t.Fatal(err)
	}
	m, err := s.LoadMatch(ctx, "m2")
	if err != nil {
		t.Fatal(err)
	}

	seq := gamestate.Track(m.Events, 1)
	if err := s.SaveGameStates(ctx, "m2", seq); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Saving again replaces rather than duplicates.
	if err := s.SaveGameStates(ctx, "m2", seq); err != nil {
		t.Fatalf("save again: %v", err)
	}

	labels, err := s.GameStates(ctx, "m2", 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []gamestate.Label{gamestate.Drawing, gamestate.Drawing, gamestate.Drawing}
	if len(labels) != len(want) {
		t.Fatalf("expected %d labels, got %d", len(want), len(labels))
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d: expected %s, got %s", i, want[i], labels[i])
		}
	}

	short := gamestate.Sequence{TeamID: 1, Labels: []gamestate.Label{gamestate.Drawing}}
	if err := s.SaveGameStates(ctx, "m2", short); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
	if err := s.SaveGameStates(ctx, "nope", short); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestSQLiteStore_PPDA(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	res := ppda.Result{
		Teams: model.TeamPair{First: 1, Second: 2},
		ByTeam: map[int]ppda.Breakdown{
			1: {TeamID: 1, OpponentID: 2, OpponentPasses: 4, DefensiveActions: 0, Ratio: ppda.Undefined()},
			2: {TeamID: 2, OpponentID: 1, OpponentPasses: 9, DefensiveActions: 2, Ratio: ppda.Defined(4.5)},
		},
	}
	if err := s.SavePPDA(ctx, "m", res); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadPPDA(ctx, "m")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got[1].Ratio.IsDefined() {
		t.Errorf("expected undefined ratio to stay undefined, got %s", got[1].Ratio)
	}
	if v, ok := got[2].Ratio.Value(); !ok || v != 4.5 {
		t.Errorf("expected 4.5, got %s", got[2].Ratio)
	}
	if got[2].OpponentPasses != 9 || got[2].DefensiveActions != 2 || got[2].OpponentID != 1 {
		t.Errorf("unexpected breakdown: %+v", got[2])
	}
}

func TestSQLiteStore_ReplaceMatch(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.InsertEvents(ctx, sampleEvents()); err != nil {
		t.Fatal(err)
	}
	old, err := s.LoadMatch(ctx, "m2")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveGameStates(ctx, "m2", gamestate.Track(old.Events, 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.SavePPDA(ctx, "m2", ppda.Result{
		Teams:  model.TeamPair{First: 1, Second: 2},
		ByTeam: map[int]ppda.Breakdown{1: {TeamID: 1, OpponentID: 2}, 2: {TeamID: 2, OpponentID: 1}},
	}); err != nil {
		t.Fatal(err)
	}

	// MatchID on the events is taken from the match.
	replacement := model.Match{ID: "m2", Events: []model.Event{
		{EventID: "x", TeamID: 3, EventType: model.EventPass, StartX: 5, Tags: model.NewTagSet()},
		{EventID: "y", TeamID: 4, EventType: model.EventPass, StartX: 6, Tags: model.NewTagSet()},
	}}
	if err := s.ReplaceMatch(ctx, replacement); err != nil {
		t.Fatalf("replace: %v", err)
	}

	m, err := s.LoadMatch(ctx, "m2")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Events) != 2 || m.Events[0].EventID != "x" || m.Events[1].EventID != "y" {
		t.Fatalf("expected replaced events [x y], got %+v", m.Events)
	}
	if labels, err := Store(s).GameStates(ctx, "m2", 1); err != nil || len(labels) != 0 {
		t.Errorf("expected stale game states dropped, got %v (err %v)", labels, err)
	}
	if _, err := s.LoadPPDA(ctx, "m2"); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("expected stale ppda dropped, got %v", err)
	}
	if err := s.SaveGameStates(ctx, "m2", gamestate.Track(m.Events, 3)); err != nil {
		t.Errorf("expected annotations to line up with replaced events: %v", err)
	}

	ids, _ := s.MatchIDs(ctx)
	if len(ids) != 2 || ids[0] != "m2" || ids[1] != "m1" {
		t.Errorf("expected match order [m2 m1] kept, got %v", ids)
	}
	other, err := s.LoadMatch(ctx, "m1")
	if err != nil || len(other.Events) != 1 {
		t.Errorf("expected other match untouched, got %+v (err %v)", other, err)
	}
}

func TestSQLiteStore_Closed(t *testing.T) {
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "closed.db"),
		WithMetrics(metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed on second close, got %v", err)
	}
	if _, err := s.MatchIDs(context.Background()); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got %v", err)
	}
}
