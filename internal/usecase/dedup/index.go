package dedup

import (
	"time"

	"github.com/kailas-cloud/feedradar/internal/domain/item"
	"github.com/kailas-cloud/feedradar/internal/text"
)

// Window indexes the recent items a candidate is compared against: by
// normalized URL for the exact check, and by publication day so similarity
// scans touch only the buckets near the candidate's own day, keeping the
// check sub-linear in total corpus size.
type Window struct {
	byURL map[string]string
	byDay map[int64][]entry
}

type entry struct {
	id    string
	title string
	txt   string
}

// NewWindow builds the index over a snapshot of recent items. nil is a valid
// empty snapshot.
func NewWindow(items []item.Item) *Window {
	w := &Window{
		byURL: make(map[string]string, len(items)),
		byDay: make(map[int64][]entry, 8),
	}
	for i := range items {
		w.Add(items[i])
	}
	return w
}

// Add indexes one more item. The pipeline writer calls this on every
// admission, so in-flight near-duplicates meet the just-inserted set.
func (w *Window) Add(it item.Item) {
	id := it.ID()
	if u := text.NormalizeURL(it.URL()); u != "" {
		if _, taken := w.byURL[u]; !taken {
			w.byURL[u] = id
		}
	}
	day := dayIndex(it.PublishedAt())
	w.byDay[day] = append(w.byDay[day], entry{id: id, title: it.Title(), txt: it.Text()})
}

// Len returns the number of indexed items.
func (w *Window) Len() int {
	n := 0
	for _, entries := range w.byDay {
		n += len(entries)
	}
	return n
}

func dayIndex(t time.Time) int64 {
	return t.UTC().Unix() / 86400
}
