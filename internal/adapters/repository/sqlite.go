package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/ppda/internal/domain/gamestate"
	"github.com/okian/ppda/internal/domain/model"
	"github.com/okian/ppda/internal/domain/ppda"
	"github.com/okian/ppda/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	match_id       TEXT    NOT NULL,
	seq            INTEGER NOT NULL,
	event_id       TEXT    NOT NULL DEFAULT '',
	team_id        INTEGER NOT NULL,
	event_type     TEXT    NOT NULL,
	sub_event_type TEXT    NOT NULL DEFAULT '',
	start_x        REAL    NOT NULL,
	start_y        REAL    NOT NULL DEFAULT 0,
	tags           TEXT    NOT NULL DEFAULT '[]',
	PRIMARY KEY (match_id, seq)
);

CREATE TABLE IF NOT EXISTS matches (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	match_id TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS game_states (
	match_id TEXT    NOT NULL,
	seq      INTEGER NOT NULL,
	team_id  INTEGER NOT NULL,
	label    TEXT    NOT NULL,
	PRIMARY KEY (match_id, seq, team_id)
);

CREATE TABLE IF NOT EXISTS ppda_results (
	match_id          TEXT    NOT NULL,
	team_id           INTEGER NOT NULL,
	opponent_id       INTEGER NOT NULL,
	opponent_passes   INTEGER NOT NULL,
	defensive_actions INTEGER NOT NULL,
	ratio             REAL,
	PRIMARY KEY (match_id, team_id)
);
`

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db           *sql.DB
	metrics      *metrics.Manager
	maxOpenConns int
	closed       atomic.Bool
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		metrics:      metrics.Default(),
		maxOpenConns: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	s.db = db
	return s, nil
}

// Close releases the database handle. Further calls return ErrStoreClosed.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrStoreClosed
	}
	return s.db.Close()
}

func (s *SQLiteStore) observe(op string, start time.Time) {
	s.metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

func (s *SQLiteStore) check() error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return nil
}

// InsertEvents implements Store.
func (s *SQLiteStore) InsertEvents(ctx context.Context, events []model.Event) error {
	if err := s.check(); err != nil {
		return err
	}
	defer s.observe("insert_events", time.Now())

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertEvents(ctx, tx, events)
	})
}

// ReplaceMatch implements Store.
func (s *SQLiteStore) ReplaceMatch(ctx context.Context, m model.Match) error {
	if err := s.check(); err != nil {
		return err
	}
	defer s.observe("replace_match", time.Now())

	events := make([]model.Event, len(m.Events))
	for i, e := range m.Events {
		e.MatchID = m.ID
		events[i] = e
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"events", "game_states", "ppda_results"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE match_id = ?`, m.ID); err != nil {
				return fmt.Errorf("clear %s of %s: %w", table, m.ID, err)
			}
		}
		return insertEvents(ctx, tx, events)
	})
}

func insertEvents(ctx context.Context, tx *sql.Tx, events []model.Event) error {
	next := make(map[string]int)
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO events
		(match_id, seq, event_id, team_id, event_type, sub_event_type, start_x, start_y, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		seq, ok := next[e.MatchID]
		if !ok {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO matches (match_id) VALUES (?)`, e.MatchID); err != nil {
				return err
			}
			if err := tx.QueryRowContext(ctx,
				`SELECT COALESCE(MAX(seq) + 1, 0) FROM events WHERE match_id = ?`, e.MatchID).Scan(&seq); err != nil {
				return err
			}
		}
		tags, err := json.Marshal(e.Tags.Sorted())
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, e.MatchID, seq, e.EventID, e.TeamID, e.EventType,
			e.SubEventType, e.StartX, e.StartY, string(tags)); err != nil {
			return fmt.Errorf("insert event %s/%d: %w", e.MatchID, seq, err)
		}
		next[e.MatchID] = seq + 1
	}
	return nil
}

// MatchIDs implements Store.
func (s *SQLiteStore) MatchIDs(ctx context.Context) ([]string, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	defer s.observe("match_ids", time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT match_id FROM matches ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LoadMatch implements Store.
func (s *SQLiteStore) LoadMatch(ctx context.Context, matchID string) (model.Match, error) {
	if err := s.check(); err != nil {
		return model.Match{}, err
	}
	defer s.observe("load_match", time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT event_id, team_id, event_type, sub_event_type, start_x, start_y, tags
		FROM events WHERE match_id = ? ORDER BY seq`, matchID)
	if err != nil {
		return model.Match{}, err
	}
	defer rows.Close()

	m := model.Match{ID: matchID}
	for rows.Next() {
		e := model.Event{MatchID: matchID}
		var tags string
		if err := rows.Scan(&e.EventID, &e.TeamID, &e.EventType, &e.SubEventType, &e.StartX, &e.StartY, &tags); err != nil {
			return model.Match{}, err
		}
		var list []string
		if err := json.Unmarshal([]byte(tags), &list); err != nil {
			return model.Match{}, fmt.Errorf("decode tags of %s: %w", matchID, err)
		}
		e.Tags = model.NewTagSet(list...)
		m.Events = append(m.Events, e)
	}
	if err := rows.Err(); err != nil {
		return model.Match{}, err
	}
	if len(m.Events) == 0 {
		return model.Match{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return m, nil
}

// SaveGameStates implements Store.
func (s *SQLiteStore) SaveGameStates(ctx context.Context, matchID string, seq gamestate.Sequence) error {
	if err := s.check(); err != nil {
		return err
	}
	defer s.observe("save_game_states", time.Now())

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE match_id = ?`, matchID).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		if n != len(seq.Labels) {
			return fmt.Errorf("%w: %s has %d events, got %d labels", ErrLengthMismatch, matchID, n, len(seq.Labels))
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO game_states (match_id, seq, team_id, label) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, l := range seq.Labels {
			if _, err := stmt.ExecContext(ctx, matchID, i, seq.TeamID, string(l)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GameStates implements Store.
func (s *SQLiteStore) GameStates(ctx context.Context, matchID string, teamID int) ([]gamestate.Label, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT label FROM game_states WHERE match_id = ? AND team_id = ? ORDER BY seq`, matchID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []gamestate.Label
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		out = append(out, gamestate.Label(l))
	}
	return out, rows.Err()
}

// SavePPDA implements Store.
func (s *SQLiteStore) SavePPDA(ctx context.Context, matchID string, res ppda.Result) error {
	if err := s.check(); err != nil {
		return err
	}
	defer s.observe("save_ppda", time.Now())

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, team := range []int{res.Teams.First, res.Teams.Second} {
			b := res.ByTeam[team]
			var ratio sql.NullFloat64
			if v, ok := b.Ratio.Value(); ok {
				ratio = sql.NullFloat64{Float64: v, Valid: true}
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO ppda_results
				(match_id, team_id, opponent_id, opponent_passes, defensive_actions, ratio)
				VALUES (?, ?, ?, ?, ?, ?)`,
				matchID, b.TeamID, b.OpponentID, b.OpponentPasses, b.DefensiveActions, ratio); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadPPDA implements Store.
func (s *SQLiteStore) LoadPPDA(ctx context.Context, matchID string) (map[int]ppda.Breakdown, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT team_id, opponent_id, opponent_passes, defensive_actions, ratio
		FROM ppda_results WHERE match_id = ?`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]ppda.Breakdown)
	for rows.Next() {
		var b ppda.Breakdown
		var ratio sql.NullFloat64
		if err := rows.Scan(&b.TeamID, &b.OpponentID, &b.OpponentPasses, &b.DefensiveActions, &ratio); err != nil {
			return nil, err
		}
		if ratio.Valid {
			b.Ratio = ppda.Defined(ratio.Float64)
		}
		out[b.TeamID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return out, nil
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
