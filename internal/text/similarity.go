package text

// TokenSetRatio measures overlap between the unique token sets of two
// strings (Dice coefficient): 2*|A∩B| / (|A|+|B|). Symmetric, order- and
// repetition-insensitive, in [0,1]. Inputs are folded before tokenizing.
func TokenSetRatio(a, b string) float64 {
	ta := tokenSet(Fold(a))
	tb := tokenSet(Fold(b))
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	common := 0
	for tok := range ta {
		if tb[tok] {
			common++
		}
	}
	return 2 * float64(common) / float64(len(ta)+len(tb))
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range Tokenize(s) {
		set[tok] = true
	}
	return set
}

// SequenceRatio measures character-level similarity of two folded strings:
// 2*M / (len(a)+len(b)), where M is the total length of the matching blocks
// found by recursing around the longest common substring. Symmetric, in
// [0,1]; two empty strings are identical (ratio 1).
func SequenceRatio(a, b string) float64 {
	ra := []rune(Fold(a))
	rb := []rune(Fold(b))
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	m := matchingChars(ra, rb)
	return 2 * float64(m) / float64(len(ra)+len(rb))
}

// matchingChars sums matching-block lengths: longest common substring, then
// recurse on the pieces to its left and right.
func matchingChars(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingChars(a[:ai], b[:bi])
	total += matchingChars(a[ai+size:], b[bi+size:])
	return total
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	// lengths[j] holds the common suffix length ending at a[i-1], b[j-1].
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > size {
					size = lengths[j]
					ai = i - size
					bi = j - size
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return ai, bi, size
}
