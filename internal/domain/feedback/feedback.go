package feedback

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/feedradar/internal/domain"
)

// Type is a user reaction category.
type Type string

// Recognized feedback types.
const (
	TypeLike    Type = "like"
	TypeDislike Type = "dislike"
	TypeSave    Type = "save"
)

// ParseType validates a raw feedback type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeLike, TypeDislike, TypeSave:
		return Type(s), nil
	}
	return "", fmt.Errorf("%w: unknown type %q", domain.ErrInvalidFeedback, s)
}

// DefaultWeight returns the weight applied when the caller does not set one.
// Saves signal stronger interest than likes; dislikes subtract.
func (t Type) DefaultWeight() float64 {
	switch t {
	case TypeLike:
		return 1
	case TypeSave:
		return 2
	case TypeDislike:
		return -1
	}
	return 0
}

// Record is one stored user reaction (immutable value object).
type Record struct {
	id        string
	itemID    string
	ftype     Type
	weight    float64
	createdAt time.Time
}

// New validates and creates a Record. A zero weight takes the type default.
func New(id, itemID string, t Type, weight float64, createdAt time.Time) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("%w: record ID is required", domain.ErrInvalidFeedback)
	}
	if itemID == "" {
		return Record{}, fmt.Errorf("%w: item ID is required", domain.ErrInvalidFeedback)
	}
	if _, err := ParseType(string(t)); err != nil {
		return Record{}, err
	}
	if weight == 0 {
		weight = t.DefaultWeight()
	}
	return Record{id: id, itemID: itemID, ftype: t, weight: weight, createdAt: createdAt.UTC()}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(id, itemID string, t Type, weight float64, createdAt time.Time) Record {
	return Record{id: id, itemID: itemID, ftype: t, weight: weight, createdAt: createdAt}
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// ItemID returns the target item identifier.
func (r *Record) ItemID() string { return r.itemID }

// Type returns the reaction category.
func (r *Record) Type() Type { return r.ftype }

// Weight returns the signed reaction weight.
func (r *Record) Weight() float64 { return r.weight }

// CreatedAt returns the record creation time in UTC.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// Aggregate is the summarized reaction signal for one item, the only feedback
// shape the scoring engine consumes.
type Aggregate struct {
	WeightedSum float64
	Counts      map[Type]int
}

// Aggregated folds records into an Aggregate.
func Aggregated(records []Record) Aggregate {
	agg := Aggregate{Counts: make(map[Type]int, 3)}
	for i := range records {
		agg.WeightedSum += records[i].weight
		agg.Counts[records[i].ftype]++
	}
	return agg
}
