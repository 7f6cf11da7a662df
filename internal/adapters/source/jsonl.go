// Package source reads and writes match event logs as JSON lines.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/ppda/internal/domain/model"
)

const maxLineBytes = 1 << 20

// Record is the wire shape of one event line.
type Record struct {
	MatchID      flexString `json:"match_id"`
	EventID      flexString `json:"event_id,omitempty"`
	TeamID       int        `json:"team_id"`
	EventType    string     `json:"event_type"`
	SubEventType string     `json:"sub_event_type,omitempty"`
	StartX       float64    `json:"start_x"`
	StartY       float64    `json:"start_y"`
	Tags         []string   `json:"tags,omitempty"`
}

// flexString accepts either a JSON string or a number, since event exports
// disagree on id types.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// ToEvent converts the wire record into a domain event.
func (r Record) ToEvent() model.Event {
	return model.Event{
		MatchID:      string(r.MatchID),
		EventID:      string(r.EventID),
		TeamID:       r.TeamID,
		EventType:    r.EventType,
		SubEventType: r.SubEventType,
		StartX:       r.StartX,
		StartY:       r.StartY,
		Tags:         model.NewTagSet(r.Tags...),
	}
}

// FromEvent converts a domain event into its wire record.
func FromEvent(e model.Event) Record {
	return Record{
		MatchID:      flexString(e.MatchID),
		EventID:      flexString(e.EventID),
		TeamID:       e.TeamID,
		EventType:    e.EventType,
		SubEventType: e.SubEventType,
		StartX:       e.StartX,
		StartY:       e.StartY,
		Tags:         e.Tags.Sorted(),
	}
}

// ReadJSONLines decodes one event per non-blank line, keeping input order.
func ReadJSONLines(r io.Reader) ([]model.Event, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var events []model.Event
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrDecode, line, err)
		}
		if rec.EventType == "" {
			return nil, fmt.Errorf("%w: line %d: missing event_type", ErrDecode, line)
		}
		events = append(events, rec.ToEvent())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: after line %d: %w", ErrDecode, line, err)
	}
	return events, nil
}

// WriteJSONLines encodes events one per line.
func WriteJSONLines(w io.Writer, events []model.Event) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, e := range events {
		if err := enc.Encode(FromEvent(e)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
