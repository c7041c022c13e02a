// Package similarity provides string distance and phonetic matching used to
// compare candidate names against registered marks.
package similarity

import "strings"

// soundexCodes maps consonants to their Soundex digit class.
var soundexCodes = map[rune]byte{
	'B': '1', 'F': '1', 'P': '1', 'V': '1',
	'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
	'D': '3', 'T': '3',
	'L': '4',
	'M': '5', 'N': '5',
	'R': '6',
}

// EditDistance returns the Levenshtein distance between a and b with unit
// costs for insertion, deletion and substitution.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j], curr[j-1], prev[j-1])
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// NormalizedSimilarity compares a and b case-insensitively and returns a value
// in [0, 1], where 1 means identical. Two empty strings are identical.
func NormalizedSimilarity(a, b string) float64 {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	maxLen := max(len([]rune(la)), len([]rune(lb)))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(EditDistance(la, lb))/float64(maxLen)
}

// PhoneticCode returns the four character Soundex code of s. Input with no
// ASCII letters encodes as "0000".
func PhoneticCode(s string) string {
	letters := make([]rune, 0, len(s))
	for _, r := range strings.ToUpper(s) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return "0000"
	}

	code := []byte{byte(letters[0])}
	last := soundexCodes[letters[0]]
	for _, r := range letters[1:] {
		if len(code) == 4 {
			break
		}
		digit, ok := soundexCodes[r]
		if !ok {
			// vowels and H/W/Y keep the previous code
			continue
		}
		if digit != last {
			code = append(code, digit)
		}
		last = digit
	}

	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code)
}

// PhoneticSimilarity blends a Soundex match bonus with edit similarity:
// 0.3 when the codes are equal plus 0.7 times NormalizedSimilarity.
func PhoneticSimilarity(a, b string) float64 {
	score := 0.7 * NormalizedSimilarity(a, b)
	if PhoneticCode(a) == PhoneticCode(b) {
		score += 0.3
	}
	return score
}

// Combined returns the larger of the phonetic and normalized similarity.
func Combined(a, b string) float64 {
	return max(PhoneticSimilarity(a, b), NormalizedSimilarity(a, b))
}
