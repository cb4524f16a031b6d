package sqlschema

import "sort"

// Ratio returns the Ratcliff/Obershelp similarity of a and b: twice the
// number of matched runes over the combined length. The longest common
// block is matched first, then the pieces either side of it recursively.
// Two empty strings are identical.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchedRunes(ra, rb)) / float64(total)
}

// CloseMatches returns up to n of possibilities whose Ratio against word is
// at least cutoff, best first. Ties are ordered by descending string.
func CloseMatches(word string, possibilities []string, n int, cutoff float64) []string {
	if n <= 0 {
		return nil
	}

	type scored struct {
		score float64
		s     string
	}
	var hits []scored
	for _, p := range possibilities {
		if r := Ratio(p, word); r >= cutoff {
			hits = append(hits, scored{score: r, s: p})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].s > hits[j].s
	})

	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.s
	}
	return out
}

func matchedRunes(a, b []rune) int {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	var count func(alo, ahi, blo, bhi int) int
	count = func(alo, ahi, blo, bhi int) int {
		i, j, k := longestMatch(a, b2j, alo, ahi, blo, bhi)
		if k == 0 {
			return 0
		}
		n := k
		if alo < i && blo < j {
			n += count(alo, i, blo, j)
		}
		if i+k < ahi && j+k < bhi {
			n += count(i+k, ahi, j+k, bhi)
		}
		return n
	}
	return count(0, len(a), 0, len(b))
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside the
// given bounds. Among equally long blocks the one starting earliest in a,
// then earliest in b, wins.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, bestk
}
