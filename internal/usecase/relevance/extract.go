package relevance

import (
	"sort"

	"github.com/kailas-cloud/feedradar/internal/text"
)

// Extract returns the top-K ranked keywords of the text plus the matched
// vocabulary topics. Keywords are stemmed so inflected forms count together.
func (s *Service) Extract(raw string) (keywords, topics []string) {
	return rankKeywords(raw, s.topK), s.matchTopics(raw)
}

type candidate struct {
	stem   string
	weight float64
	first  int
}

// rankKeywords tokenizes, drops stopwords and single-character noise, stems,
// and ranks stems by frequency weighted by position: the factor decays from
// 2 at the head of the text to 1 at the tail, so title terms lead.
func rankKeywords(raw string, topK int) []string {
	tokens := text.Tokenize(raw)
	n := len(tokens)
	if n == 0 || topK <= 0 {
		return nil
	}

	byStem := make(map[string]*candidate)
	order := make([]*candidate, 0, 16)
	for i, tok := range tokens {
		if len(tok) < 2 || text.IsStopword(tok) {
			continue
		}
		stem := text.Stem(tok)
		c := byStem[stem]
		if c == nil {
			c = &candidate{stem: stem, first: i}
			byStem[stem] = c
			order = append(order, c)
		}
		c.weight += 1 + float64(n-i)/float64(n)
	}

	sort.SliceStable(order, func(a, b int) bool {
		if order[a].weight != order[b].weight {
			return order[a].weight > order[b].weight
		}
		return order[a].first < order[b].first
	})
	if len(order) > topK {
		order = order[:topK]
	}

	out := make([]string, len(order))
	for i, c := range order {
		out[i] = c.stem
	}
	return out
}
