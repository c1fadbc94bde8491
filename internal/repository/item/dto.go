package item

import (
	"time"

	"github.com/kailas-cloud/feedradar/internal/db"
	domitem "github.com/kailas-cloud/feedradar/internal/domain/item"
	"github.com/kailas-cloud/feedradar/internal/text"
)

// Breakdown map keys shared with stored records.
const (
	fieldEngagement  = "engagement"
	fieldAuthority   = "authority"
	fieldSourceBonus = "source_bonus"
	fieldTagBonus    = "tag_bonus"
	fieldFeedback    = "feedback"
	fieldRecency     = "recency_factor"
)

// toRecord flattens a scored item for storage. The normalized URL is
// precomputed at write time so duplicate checks never re-parse it.
func toRecord(scored domitem.ScoredItem, fetchedAt time.Time) db.ItemRecord {
	e := scored.Engagement()
	return db.ItemRecord{
		ID:                scored.ID(),
		ExternalID:        scored.ExternalID(),
		Kind:              string(scored.Kind()),
		SourceName:        scored.SourceName(),
		Title:             scored.Title(),
		Body:              scored.Body(),
		URL:               scored.URL(),
		NormalizedURL:     text.NormalizeURL(scored.URL()),
		AuthorID:          scored.AuthorID(),
		AuthorName:        scored.AuthorName(),
		AuthorFollowers:   scored.AuthorFollowers(),
		Likes:             e.Likes,
		Shares:            e.Shares,
		Replies:           e.Replies,
		PublishedAt:       scored.PublishedAt(),
		TimestampInferred: scored.TimestampInferred(),
		Language:          scored.Language(),
		Tags:              scored.Tags(),
		Score:             scored.Score(),
		Breakdown:         breakdownToMap(scored.Breakdown()),
		FetchedAt:         fetchedAt,
	}
}

func toDomainItem(rec db.ItemRecord) domitem.Item {
	return domitem.Reconstruct(domitem.Params{
		ExternalID:        rec.ExternalID,
		Kind:              domitem.Kind(rec.Kind),
		SourceName:        rec.SourceName,
		Title:             rec.Title,
		Body:              rec.Body,
		URL:               rec.URL,
		AuthorID:          rec.AuthorID,
		AuthorName:        rec.AuthorName,
		AuthorFollowers:   rec.AuthorFollowers,
		Engagement:        domitem.Engagement{Likes: rec.Likes, Shares: rec.Shares, Replies: rec.Replies},
		PublishedAt:       rec.PublishedAt,
		TimestampInferred: rec.TimestampInferred,
		Language:          rec.Language,
		Tags:              rec.Tags,
	})
}

func toDomainScored(rec db.ItemRecord) domitem.ScoredItem {
	return domitem.ReconstructScored(toDomainItem(rec), rec.Score, breakdownFromMap(rec.Breakdown))
}

func breakdownToMap(b domitem.Breakdown) map[string]float64 {
	return map[string]float64{
		fieldEngagement:  b.Engagement,
		fieldAuthority:   b.Authority,
		fieldSourceBonus: b.SourceBonus,
		fieldTagBonus:    b.TagBonus,
		fieldFeedback:    b.Feedback,
		fieldRecency:     b.Recency,
	}
}

func breakdownFromMap(m map[string]float64) domitem.Breakdown {
	return domitem.Breakdown{
		Engagement:  m[fieldEngagement],
		Authority:   m[fieldAuthority],
		SourceBonus: m[fieldSourceBonus],
		TagBonus:    m[fieldTagBonus],
		Feedback:    m[fieldFeedback],
		Recency:     m[fieldRecency],
	}
}
