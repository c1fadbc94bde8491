package item

// Kind identifies the adapter family that produced an item. The set is open:
// adapters register under a Kind at startup, and binding a configured source
// to an unregistered kind fails startup.
type Kind string

// Built-in source kinds.
const (
	KindRSS        Kind = "rss"
	KindReddit     Kind = "reddit"
	KindHackerNews Kind = "hackernews"
	KindGitHub     Kind = "github"
)

func (k Kind) String() string { return string(k) }
