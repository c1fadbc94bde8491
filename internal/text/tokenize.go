package text

import (
	"regexp"
	"strings"
)

var tokenRegex = regexp.MustCompile(`[a-z0-9]+(?:['-][a-z0-9]+)*`)

// Tokenize lower-cases the input and returns its word tokens in order.
// Tokens keep internal hyphens and apostrophes ("self-driving", "don't").
func Tokenize(s string) []string {
	return tokenRegex.FindAllString(strings.ToLower(s), -1)
}

// stopwords is the filter set for keyword extraction. Function words only;
// domain terms are never stopwords.
var stopwords = map[string]bool{
	"a": true, "about": true, "after": true, "all": true, "also": true,
	"an": true, "and": true, "any": true, "are": true, "as": true, "at": true,
	"be": true, "because": true, "been": true, "but": true, "by": true,
	"can": true, "could": true, "did": true, "do": true, "does": true,
	"for": true, "from": true, "had": true, "has": true, "have": true,
	"he": true, "her": true, "here": true, "his": true, "how": true,
	"i": true, "if": true, "in": true, "into": true, "is": true, "it": true,
	"its": true, "just": true, "like": true, "more": true, "most": true,
	"my": true, "new": true, "no": true, "not": true, "now": true, "of": true,
	"on": true, "one": true, "only": true, "or": true, "other": true,
	"our": true, "out": true, "over": true, "say": true, "she": true,
	"so": true, "some": true, "than": true, "that": true, "the": true,
	"their": true, "them": true, "then": true, "there": true, "these": true,
	"they": true, "this": true, "to": true, "up": true, "us": true,
	"was": true, "we": true, "were": true, "what": true, "when": true,
	"where": true, "which": true, "who": true, "will": true, "with": true,
	"would": true, "you": true, "your": true,
}

// IsStopword reports whether a token is a function word.
func IsStopword(token string) bool { return stopwords[token] }

// Stem applies light suffix stripping so plural/inflected forms of a term
// count together ("robots"→"robot", "grasping"→"grasp"). Deliberately
// conservative: short stems are left alone rather than mangled.
func Stem(token string) string {
	switch {
	case strings.HasSuffix(token, "ies") && len(token) > 4:
		return token[:len(token)-3] + "y"
	case strings.HasSuffix(token, "sses"):
		return token[:len(token)-2]
	case strings.HasSuffix(token, "ing") && len(token) > 5:
		return token[:len(token)-3]
	case strings.HasSuffix(token, "ed") && len(token) > 4:
		return token[:len(token)-2]
	case strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") && len(token) > 3:
		return token[:len(token)-1]
	}
	return token
}

// ContainsWord reports whether needle appears in haystack as a whole word,
// case-insensitive. Multi-word needles match as a whole token sequence.
func ContainsWord(haystack, needle string) bool {
	needleTokens := Tokenize(needle)
	if len(needleTokens) == 0 {
		return false
	}
	hayTokens := Tokenize(haystack)
	if len(hayTokens) < len(needleTokens) {
		return false
	}
outer:
	for i := 0; i+len(needleTokens) <= len(hayTokens); i++ {
		for j, nt := range needleTokens {
			if hayTokens[i+j] != nt {
				continue outer
			}
		}
		return true
	}
	return false
}
