// Package todo holds the todo list state and keeps it in sync with a
// key/value persistence collaborator.
//
// Every mutating call writes the whole collection under a single key before
// it returns. Invalid input (blank text, unknown ids) is a silent no-op
// reported through the boolean/count results; only write failures surface
// as errors, and a failed write leaves the in-memory state untouched.
package todo

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Makepad-fr/todo/internal/model"
	"github.com/Makepad-fr/todo/internal/store"
)

// Key is the persistence key the collection lives under.
const Key = "todos"

// Store is the todo list. It is not safe for concurrent use; one caller
// drives it at a time.
type Store struct {
	kv    store.KV
	items []model.Item

	now   func() time.Time
	newID func() string
	log   *zap.Logger

	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func([]model.Item)
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for created_at/completed_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs overrides the id generator. Generated ids must be unique.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New loads the persisted collection from kv. A missing, unreadable or
// malformed value yields an empty list.
func New(kv store.KV, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("todo: kv is nil")
	}
	s := &Store{
		kv:    kv,
		now:   time.Now,
		newID: uuid.NewString,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = s.load()
	return s, nil
}

func (s *Store) load() []model.Item {
	blob, ok, err := s.kv.Get(Key)
	if err != nil {
		s.log.Warn("read todos failed, starting empty", zap.Error(err))
		return []model.Item{}
	}
	if !ok {
		s.log.Debug("no persisted todos")
		return []model.Item{}
	}
	items, err := decode(blob)
	if err != nil {
		s.log.Warn("persisted todos are malformed, starting empty", zap.Error(err))
		return []model.Item{}
	}
	items, dropped := repair(items)
	if dropped > 0 {
		s.log.Warn("dropped invalid persisted todos", zap.Int("dropped", dropped))
	}
	s.log.Debug("loaded todos", zap.Int("items", len(items)))
	return items
}

// commit persists next and only then makes it the current state.
func (s *Store) commit(op string, next []model.Item) error {
	blob, err := encode(next)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.kv.Set(Key, blob); err != nil {
		s.log.Error("persist todos failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: persist: %w", op, err)
	}
	s.items = next
	s.log.Debug("persisted todos", zap.String("op", op), zap.Int("items", len(next)))
	s.notify()
	return nil
}

// Add appends a new incomplete item with the trimmed text. Blank text is
// ignored: no item, no write, added=false.
func (s *Store) Add(text string) (item model.Item, added bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Item{}, false, nil
	}
	now := s.now()
	item = model.Item{
		ID:        s.newID(),
		Text:      text,
		CreatedAt: &now,
	}
	next := append(slices.Clone(s.items), item)
	if err := s.commit("add", next); err != nil {
		return model.Item{}, false, err
	}
	return item, true, nil
}

// Toggle flips the completed flag of the item with id, stamping or clearing
// completed_at. An unknown id changes nothing but the collection is still
// written back.
func (s *Store) Toggle(id string) (bool, error) {
	next := slices.Clone(s.items)
	i := indexOf(next, id)
	if i >= 0 {
		it := &next[i]
		it.Completed = !it.Completed
		if it.Completed {
			now := s.now()
			it.CompletedAt = &now
		} else {
			it.CompletedAt = nil
		}
	}
	if err := s.commit("toggle", next); err != nil {
		return false, err
	}
	return i >= 0, nil
}

// Delete removes the item with id. An unknown id changes nothing but the
// collection is still written back.
func (s *Store) Delete(id string) (bool, error) {
	next := slices.Clone(s.items)
	i := indexOf(next, id)
	if i >= 0 {
		next = slices.Delete(next, i, i+1)
	}
	if err := s.commit("delete", next); err != nil {
		return false, err
	}
	return i >= 0, nil
}

// ClearCompleted removes every completed item and returns how many were
// removed. The collection is written back even when nothing was removed.
func (s *Store) ClearCompleted() (int, error) {
	next := slices.DeleteFunc(slices.Clone(s.items), func(it model.Item) bool {
		return it.Completed
	})
	removed := len(s.items) - len(next)
	if err := s.commit("clear completed", next); err != nil {
		return 0, err
	}
	return removed, nil
}

// DisplayOrder returns a freshly sorted copy of the collection for rendering.
func (s *Store) DisplayOrder() []model.Item {
	out := slices.Clone(s.items)
	if out == nil {
		out = []model.Item{}
	}
	sortForDisplay(out)
	return out
}

// Items returns a copy of the collection in insertion (persisted) order.
func (s *Store) Items() []model.Item {
	out := slices.Clone(s.items)
	if out == nil {
		out = []model.Item{}
	}
	return out
}

// Len returns the number of items.
func (s *Store) Len() int { return len(s.items) }

// Get returns the item with id.
func (s *Store) Get(id string) (model.Item, bool) {
	if i := indexOf(s.items, id); i >= 0 {
		return s.items[i], true
	}
	return model.Item{}, false
}

// Subscribe registers fn to receive the display order after every
// successful mutating call. The returned func unregisters it.
func (s *Store) Subscribe(fn func([]model.Item)) (cancel func()) {
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

func (s *Store) notify() {
	if len(s.subs) == 0 {
		return
	}
	for _, sub := range slices.Clone(s.subs) {
		sub.fn(s.DisplayOrder())
	}
}

func indexOf(items []model.Item, id string) int {
	return slices.IndexFunc(items, func(it model.Item) bool { return it.ID == id })
}
