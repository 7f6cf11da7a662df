// Package repository stores match events and derived annotations.
package repository

import (
	"context"

	"github.com/okian/ppda/internal/domain/gamestate"
	"github.com/okian/ppda/internal/domain/model"
	"github.com/okian/ppda/internal/domain/ppda"
)

// Store provides read/write access to match events and analysis results.
type Store interface {
	// InsertEvents appends events to their matches, keeping input order.
	InsertEvents(ctx context.Context, events []model.Event) error

	// ReplaceMatch swaps a match's stored events for m.Events and drops the
	// annotations derived from the old events. The match keeps its position
	// in MatchIDs.
	ReplaceMatch(ctx context.Context, m model.Match) error

	// MatchIDs lists stored matches in insertion order.
	MatchIDs(ctx context.Context) ([]string, error)

	// LoadMatch returns a match's events in chronological order.
	// Returns ErrMatchNotFound if the match has no events.
	LoadMatch(ctx context.Context, matchID string) (model.Match, error)

	// SaveGameStates stores one label per event for a team perspective,
	// replacing any earlier annotation.
	SaveGameStates(ctx context.Context, matchID string, seq gamestate.Sequence) error

	// GameStates reads back the labels stored for one team perspective, in
	// event order.
	GameStates(ctx context.Context, matchID string, teamID int) ([]gamestate.Label, error)

	// SavePPDA stores both team breakdowns of a match. Undefined ratios are NULL.
	SavePPDA(ctx context.Context, matchID string, res ppda.Result) error

	// LoadPPDA reads back the stored breakdowns keyed by team.
	LoadPPDA(ctx context.Context, matchID string) (map[int]ppda.Breakdown, error)

	Close() error
}
