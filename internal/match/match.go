// Package match provides the fuzzy-matching primitives used by the search
// orchestrator: a Soundex-style phonetic code, Levenshtein edit distance, and
// the 0-100 relevance scoring built on both. All functions are pure and
// total; matching happens in the application layer, never in the database.
package match

import (
	"strings"
	"unicode"
)

const (
	baseScore          = 50
	prefixBonus        = 20
	phoneticBonus      = 15
	groupMatchBonus    = 10
	regionMatchBonus   = 5
	editPenaltyPerStep = 5
)

// PhoneticCode returns the 4-character Soundex code for s. Empty or
// non-alphabetic-leading input yields "0000". The code keeps the first
// letter, maps the rest to digit classes, and suppresses a digit equal to
// the last emitted class even when separated by dropped letters.
func PhoneticCode(s string) string {
	str := strings.ToUpper(strings.TrimSpace(s))
	if str == "" {
		return "0000"
	}

	runes := []rune(str)
	var b strings.Builder
	b.WriteRune(runes[0])
	// Count emitted characters, not bytes: the first letter may be
	// multi-byte and the code is four characters long, not four bytes.
	length := 1

	lastCode := phoneticClass(runes[0])
	for i := 1; i < len(runes) && length < 4; i++ {
		code := phoneticClass(runes[i])
		if code != '0' && code != lastCode {
			b.WriteByte(code)
			length++
		}
		// Track the last class even when nothing was emitted so repeats
		// across dropped letters stay suppressed.
		if code != '0' {
			lastCode = code
		}
	}

	for ; length < 4; length++ {
		b.WriteByte('0')
	}
	return b.String()
}

func phoneticClass(r rune) byte {
	switch unicode.ToUpper(r) {
	case 'B', 'F', 'P', 'V':
		return '1'
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return '2'
	case 'D', 'T':
		return '3'
	case 'L':
		return '4'
	case 'M', 'N':
		return '5'
	case 'R':
		return '6'
	default:
		// Vowels, H, W, Y and anything non-alphabetic are dropped.
		return '0'
	}
}

// PhoneticMatch reports whether two strings share a phonetic code.
func PhoneticMatch(a, b string) bool {
	return PhoneticCode(a) == PhoneticCode(b)
}

// FullNamePhonetic returns the combined phonetic code for a first and last
// name, space-separated. This is precomputed and stored with each record.
func FullNamePhonetic(firstName, lastName string) string {
	return PhoneticCode(firstName) + " " + PhoneticCode(lastName)
}

// QueryPhonetic encodes each whitespace-separated token of a query,
// space-joined, for phonetic substring matching against stored codes.
func QueryPhonetic(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	codes := make([]string, len(fields))
	for i, f := range fields {
		codes[i] = PhoneticCode(f)
	}
	return strings.Join(codes, " ")
}

// EditDistance computes the Levenshtein distance between a and b,
// case-insensitively, after trimming surrounding whitespace.
func EditDistance(a, b string) int {
	ra := []rune(strings.ToLower(strings.TrimSpace(a)))
	rb := []rune(strings.ToLower(strings.TrimSpace(b)))

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
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// NameRelevance scores how well a search query matches a candidate's name,
// 0 to 100. A blank query is neutral (50); an exact full-name match is 100.
// Otherwise each query token earns a prefix bonus, pays an edit-distance
// penalty against the closer name part, and earns a phonetic bonus when its
// code appears in the candidate's precomputed code. The clamp happens once
// at the end, not per token.
func NameRelevance(query, candidateFirst, candidateLast, candidatePhonetic string) int {
	search := NormalizeName(query)
	if search == "" {
		return baseScore
	}

	first := strings.ToLower(candidateFirst)
	last := strings.ToLower(candidateLast)
	fullName := strings.TrimSpace(first + " " + last)

	if fullName == search {
		return 100
	}

	score := baseScore
	for _, part := range strings.Fields(search) {
		if strings.HasPrefix(first, part) || strings.HasPrefix(last, part) {
			score += prefixBonus
		}

		score -= min(EditDistance(part, first), EditDistance(part, last)) * editPenaltyPerStep

		if candidatePhonetic != "" && strings.Contains(candidatePhonetic, PhoneticCode(part)) {
			score += phoneticBonus
		}
	}

	return clamp(score)
}

// CombinedRelevance folds location agreement into a name score: +10 when the
// group matches, +5 when the region matches, clamped to [0,100].
func CombinedRelevance(nameScore int, regionMatch, groupMatch bool) int {
	score := nameScore
	if groupMatch {
		score += groupMatchBonus
	}
	if regionMatch {
		score += regionMatchBonus
	}
	return clamp(score)
}

// NormalizePhone strips everything but digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeName lowercases, trims, and collapses internal whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
