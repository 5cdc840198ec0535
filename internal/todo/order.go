package todo

import (
	"slices"
	"time"

	"github.com/Makepad-fr/todo/internal/model"
)

// sortForDisplay orders items in place: incomplete first, newest created
// first; then completed, earliest completed first. The sort is stable so
// equal or missing timestamps keep insertion order.
func sortForDisplay(items []model.Item) {
	slices.SortStableFunc(items, compareDisplay)
}

func compareDisplay(a, b model.Item) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}
		return -1
	}
	if a.Completed {
		return stamp(a.CompletedAt).Compare(stamp(b.CompletedAt))
	}
	return stamp(b.CreatedAt).Compare(stamp(a.CreatedAt))
}

// stamp treats a missing timestamp as the zero time.
func stamp(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
