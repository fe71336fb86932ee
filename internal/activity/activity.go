// Package activity holds the human-readable history of mutating actions and
// the typed payloads that reverse them.
package activity

import (
	"encoding/json"
	"time"
)

// DefaultMaxEntries bounds how much history a store keeps.
const DefaultMaxEntries = 500

type Entry struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Undo        Undo      `json:"-"`
}

type entryJSON struct {
	ID          string          `json:"id"`
	Action      string          `json:"action"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
	UndoData    json.RawMessage `json:"undoData,omitempty"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		ID:          e.ID,
		Action:      e.Action,
		Description: e.Description,
		Timestamp:   e.Timestamp,
	}
	if e.Undo != nil {
		b, err := marshalUndo(e.Undo)
		if err != nil {
			return nil, err
		}
		out.UndoData = b
	}
	return json.Marshal(out)
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var in entryJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	e.ID = in.ID
	e.Action = in.Action
	e.Description = in.Description
	e.Timestamp = in.Timestamp
	e.Undo = nil
	if len(in.UndoData) > 0 && string(in.UndoData) != "null" {
		u, err := unmarshalUndo(in.UndoData)
		if err != nil {
			return err
		}
		e.Undo = u
	}
	return nil
}

// Undoable reports whether the entry carries a payload that can reverse it.
func (e Entry) Undoable() bool {
	return e.Undo != nil
}

// Log is newest-first.
type Log []Entry

// Prepend returns a new log with e in front; the receiver is not modified.
func (l Log) Prepend(e Entry) Log {
	out := make(Log, 0, len(l)+1)
	out = append(out, e)
	return append(out, l...)
}

func (l Log) Find(id string) (Entry, bool) {
	for _, e := range l {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Remove returns a new log without the entry id.
func (l Log) Remove(id string) Log {
	out := make(Log, 0, len(l))
	for _, e := range l {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// Trim drops the oldest entries beyond max. max <= 0 keeps everything.
func (l Log) Trim(max int) Log {
	if max <= 0 || len(l) <= max {
		return l
	}
	return append(Log{}, l[:max]...)
}

// Newest returns a copy of at most the first n entries.
func (l Log) Newest(n int) Log {
	if n <= 0 || len(l) <= n {
		return append(Log{}, l...)
	}
	return append(Log{}, l[:n]...)
}
