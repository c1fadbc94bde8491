package item

import (
	"strings"
	"testing"
	"time"
)

func validParams() Params {
	return Params{
		ExternalID:  "rss-abc123",
		Kind:        KindRSS,
		SourceName:  "example-feed",
		Title:       "New actuator design released",
		Body:        "A longer body describing the actuator design in detail.",
		URL:         "https://example.com/actuator",
		AuthorName:  "jdoe",
		PublishedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600)),
	}
}

func TestNew_Valid(t *testing.T) {
	p := validParams()
	p.Engagement = Engagement{Likes: 10, Shares: 2, Replies: 3}
	p.Tags = []string{"Robotics", "hardware", "robotics", " "}

	it, err := New(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.ExternalID() != "rss-abc123" {
		t.Errorf("ExternalID() = %q", it.ExternalID())
	}
	if it.Kind() != KindRSS {
		t.Errorf("Kind() = %q", it.Kind())
	}
	if it.Engagement().Likes != 10 {
		t.Errorf("Engagement().Likes = %d", it.Engagement().Likes)
	}
	if got := it.Tags(); len(got) != 2 || got[0] != "hardware" || got[1] != "robotics" {
		t.Errorf("Tags() = %v, want deduplicated sorted lowercase", got)
	}
}

func TestNew_NormalizesToUTC(t *testing.T) {
	it, err := New(validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.PublishedAt().Location() != time.UTC {
		t.Errorf("PublishedAt() location = %v, want UTC", it.PublishedAt().Location())
	}
	if it.PublishedAt().Hour() != 10 {
		t.Errorf("PublishedAt() hour = %d, want 10 (12:00 CEST)", it.PublishedAt().Hour())
	}
}

func TestNew_ClampsNegativeCounts(t *testing.T) {
	p := validParams()
	p.Engagement = Engagement{Likes: -5, Shares: -1, Replies: 7}
	p.AuthorFollowers = -100

	it, err := New(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e := it.Engagement(); e.Likes != 0 || e.Shares != 0 || e.Replies != 7 {
		t.Errorf("Engagement() = %+v, want negatives clamped", e)
	}
	if it.AuthorFollowers() != 0 {
		t.Errorf("AuthorFollowers() = %d, want 0", it.AuthorFollowers())
	}
}

func TestNew_RequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"empty external ID", func(p *Params) { p.ExternalID = "" }},
		{"empty kind", func(p *Params) { p.Kind = "" }},
		{"no text", func(p *Params) { p.Title = " "; p.Body = "\t\n" }},
		{"zero timestamp", func(p *Params) { p.PublishedAt = time.Time{} }},
	}
	for _, tc := range cases {
		p := validParams()
		tc.mutate(&p)
		if _, err := New(p); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestNew_BodyTooLarge(t *testing.T) {
	p := validParams()
	p.Body = strings.Repeat("x", MaxBodySize+1)
	if _, err := New(p); err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestText_Concatenation(t *testing.T) {
	p := validParams()
	it, _ := New(p)
	want := p.Title + "\n\n" + p.Body
	if it.Text() != want {
		t.Errorf("Text() = %q, want title and body joined", it.Text())
	}

	p.Body = ""
	titleOnly, _ := New(p)
	if titleOnly.Text() != p.Title {
		t.Errorf("Text() = %q, want title only", titleOnly.Text())
	}
}

func TestWithTags_DoesNotMutateOriginal(t *testing.T) {
	it, _ := New(validParams())
	tagged := it.WithTags([]string{"ros", "simulation"})

	if len(it.Tags()) != 0 {
		t.Errorf("original Tags() = %v, want empty", it.Tags())
	}
	if got := tagged.Tags(); len(got) != 2 || got[0] != "ros" {
		t.Errorf("tagged Tags() = %v", got)
	}
}

func TestReconstruct_SkipsValidation(t *testing.T) {
	// Hydration from storage must not re-validate.
	it := Reconstruct(Params{ExternalID: "x", Kind: KindReddit})
	if it.ExternalID() != "x" {
		t.Errorf("ExternalID() = %q", it.ExternalID())
	}
	if !it.PublishedAt().IsZero() {
		t.Errorf("PublishedAt() = %v, want zero", it.PublishedAt())
	}
}

func TestStorageID_Deterministic(t *testing.T) {
	a := StorageID(KindRSS, "rss-abc123")
	b := StorageID(KindRSS, "rss-abc123")
	if a != b {
		t.Errorf("same identity produced %q and %q", a, b)
	}
	if !strings.HasPrefix(a, "rss_") {
		t.Errorf("expected kind prefix, got %q", a)
	}
	if len(a) != len("rss_")+16 {
		t.Errorf("unexpected id length: %q", a)
	}

	if StorageID(KindRSS, "other") == a {
		t.Error("different external ids must not collide")
	}
	if StorageID(KindReddit, "rss-abc123") == a {
		t.Error("different kinds must not collide")
	}

	it, _ := New(validParams())
	if it.ID() != a {
		t.Errorf("Item.ID() = %q, want %q", it.ID(), a)
	}
}
