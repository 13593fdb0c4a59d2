package evaluation

import (
	"fmt"
	"strings"
)

// autojunkMin is the sequence length from which very frequent runes are
// ignored when searching for matches
const autojunkMin = 200

// Similarity scores how alike two LaTeX strings are, from 0 to 1, after
// trimming and lower-casing both. It is the Ratcliff/Obershelp ratio:
// twice the number of matched runes over the total number of runes.
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(strings.TrimSpace(a)))
	rb := []rune(strings.ToLower(strings.TrimSpace(b)))

	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingRunes(ra, rb)) / float64(total)
}

// Percent renders a 0..1 score the way the console displays it
func Percent(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}

type span struct {
	alo, ahi, blo, bhi int
}

// matchingRunes sums the sizes of the matching blocks of a and b
func matchingRunes(a, b []rune) int {
	b2j := indexRunes(b)

	matched := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, b2j, s)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// indexRunes maps each rune of b to its ascending positions, dropping
// popular runes in long sequences
func indexRunes(b []rune) map[rune][]int {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	if n := len(b); n >= autojunkMin {
		limit := n/100 + 1
		for r, positions := range b2j {
			if len(positions) > limit {
				delete(b2j, r)
			}
		}
	}
	return b2j
}

// longestMatch finds the longest common block inside s. Ties go to the
// block starting earliest in a, then earliest in b. The block found through
// the index is then grown over neighbouring runes the index dropped.
func longestMatch(a, b []rune, b2j map[rune][]int, s span) (int, int, int) {
	besti, bestj, bestsize := s.alo, s.blo, 0

	j2len := map[int]int{}
	for i := s.alo; i < s.ahi; i++ {
		next := map[int]int{}
		for _, j := range b2j[a[i]] {
			if j < s.blo {
				continue
			}
			if j >= s.bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	for besti > s.alo && bestj > s.blo && a[besti-1] == b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < s.ahi && bestj+bestsize < s.bhi && a[besti+bestsize] == b[bestj+bestsize] {
		bestsize++
	}
	return besti, bestj, bestsize
}
