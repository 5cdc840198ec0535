package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Item is the domain model for a todo entry.
// CompletedAt is non-nil exactly when Completed is true.
type Item struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// UnmarshalJSON accepts both the current format (string ids, RFC 3339
// timestamps) and the browser export format (numeric ids, epoch milliseconds).
func (it *Item) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID          json.RawMessage `json:"id"`
		Text        string          `json:"text"`
		Completed   bool            `json:"completed"`
		CreatedAt   json.RawMessage `json:"created_at"`
		CompletedAt json.RawMessage `json:"completed_at"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return fmt.Errorf("id: %w", err)
	}
	created, err := decodeTime(raw.CreatedAt)
	if err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	completed, err := decodeTime(raw.CompletedAt)
	if err != nil {
		return fmt.Errorf("completed_at: %w", err)
	}
	*it = Item{
		ID:          id,
		Text:        raw.Text,
		Completed:   raw.Completed,
		CreatedAt:   created,
		CompletedAt: completed,
	}
	return nil
}

func isNull(b json.RawMessage) bool {
	return len(b) == 0 || string(b) == "null"
}

func decodeID(b json.RawMessage) (string, error) {
	if isNull(b) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", fmt.Errorf("want string or number, got %s", b)
	}
	return n.String(), nil
}

func decodeTime(b json.RawMessage) (*time.Time, error) {
	if isNull(b) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return nil, fmt.Errorf("want timestamp string or epoch millis, got %s", b)
	}
	ms, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return nil, ferr
		}
		ms = int64(f)
	}
	t := time.UnixMilli(ms).UTC()
	return &t, nil
}
