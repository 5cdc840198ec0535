package todo

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/todo/internal/model"
)

//go:embed todos.schema.json
var schemaText string

var collectionSchema = jsonschema.MustCompileString("todos.schema.json", schemaText)

// encode serializes the whole collection. An empty collection is "[]", never "null".
func encode(items []model.Item) (string, error) {
	if items == nil {
		items = []model.Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}
	return string(b), nil
}

// decode validates blob against the collection schema and parses it.
func decode(blob string) ([]model.Item, error) {
	var doc any
	if err := json.Unmarshal([]byte(blob), &doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := collectionSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	var items []model.Item
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return items, nil
}

// repair enforces the collection invariants on loaded data: trimmed non-empty
// text, non-empty unique ids, and completed_at only on completed items.
// Timestamps that cannot be re-encoded are cleared so the next write succeeds.
// A completed item without completed_at is kept as is; it sorts first among
// completed items. It returns the kept items and how many were dropped.
func repair(items []model.Item) ([]model.Item, int) {
	out := make([]model.Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		it.Text = strings.TrimSpace(it.Text)
		if it.ID == "" || it.Text == "" {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		it.CreatedAt = encodable(it.CreatedAt)
		it.CompletedAt = encodable(it.CompletedAt)
		if !it.Completed {
			it.CompletedAt = nil
		}
		out = append(out, it)
	}
	return out, len(items) - len(out)
}

// encodable returns nil for times outside the years RFC 3339 can represent.
func encodable(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	if y := t.Year(); y < 0 || y > 9999 {
		return nil
	}
	return t
}
