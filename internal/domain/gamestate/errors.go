package gamestate

import "errors"

// ErrUnknownTeam is returned when the observing team does not play in the match.
var ErrUnknownTeam = errors.New("team not in match")
