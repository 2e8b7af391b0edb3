package match

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPhoneticCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Robert", "R163"},
		{"Rupert", "R163"},
		{"Mohapi", "M100"},
		{"Mohape", "M100"},
		{"Thabo", "T100"},
		{"Lerato", "L630"},
		{"", "0000"},
		{"   ", "0000"},
		{"A", "A000"},
		{"mokoena", "M250"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PhoneticCode(tc.in), "input %q", tc.in)
	}
}

func TestPhoneticCodeAlwaysFourChars(t *testing.T) {
	inputs := []string{
		"", "x", "Nthabiseng", "Makhoabenyane", "O'Neil", "van der Merwe", "123",
		// Multi-byte first letters: the code is four characters, not bytes.
		"Émile", "Øyvind", "Ñato",
	}
	for _, in := range inputs {
		assert.Equal(t, 4, utf8.RuneCountInString(PhoneticCode(in)), "input %q", in)
	}
}

func TestPhoneticCodeNonASCIIFirstLetter(t *testing.T) {
	assert.Equal(t, "É540", PhoneticCode("Émile"))
	assert.Equal(t, "Ø153", PhoneticCode("Øyvind"))
	assert.Equal(t, "Ñ300", PhoneticCode("Ñato"))
}

func TestPhoneticCodeSuppressesRepeatsAcrossDroppedLetters(t *testing.T) {
	// c and k share class 2 with an intervening vowel; the second class is
	// suppressed because the last emitted class is tracked past dropped runes.
	assert.Equal(t, PhoneticCode("Tymczak"), "T520")
}

func TestPhoneticMatch(t *testing.T) {
	assert.True(t, PhoneticMatch("Robert", "Rupert"))
	assert.False(t, PhoneticMatch("Robert", "Thabo"))
}

func TestFullNamePhonetic(t *testing.T) {
	assert.Equal(t, "T100 M100", FullNamePhonetic("Thabo", "Mohapi"))
}

func TestQueryPhonetic(t *testing.T) {
	assert.Equal(t, "T100 M100", QueryPhonetic("  Thabo   Mohapi "))
	assert.Equal(t, "", QueryPhonetic("   "))
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"mohapi", "mohapi", 0},
		{"mohape", "mohapi", 1},
		{"thabo", "thabo ", 0},
		{"THABO", "thabo", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EditDistance(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
	}
}

func TestNameRelevanceExactMatch(t *testing.T) {
	score := NameRelevance("Thabo Mohapi", "Thabo", "Mohapi", FullNamePhonetic("Thabo", "Mohapi"))
	assert.Equal(t, 100, score)

	// Case and surrounding whitespace do not break the exact-match path.
	score = NameRelevance("  thabo   MOHAPI ", "Thabo", "Mohapi", FullNamePhonetic("Thabo", "Mohapi"))
	assert.Equal(t, 100, score)
}

func TestNameRelevanceBlankQueryIsNeutral(t *testing.T) {
	assert.Equal(t, 50, NameRelevance("", "Thabo", "Mohapi", "T100 M100"))
	assert.Equal(t, 50, NameRelevance("   ", "Thabo", "Mohapi", "T100 M100"))
}

func TestNameRelevanceFuzzy(t *testing.T) {
	// One substitution from the stored surname: -5 edit penalty, +15
	// phonetic bonus, no prefix bonus.
	score := NameRelevance("Mohape", "Thabo", "Mohapi", FullNamePhonetic("Thabo", "Mohapi"))
	assert.Equal(t, 60, score)
	assert.GreaterOrEqual(t, score, 50)
	assert.LessOrEqual(t, score, 90)
}

func TestNameRelevancePrefix(t *testing.T) {
	// "moha" is a prefix of "mohapi": +20, minus 2 trailing-character edits.
	score := NameRelevance("moha", "Thabo", "Mohapi", FullNamePhonetic("Thabo", "Mohapi"))
	assert.Greater(t, score, 50)
}

func TestNameRelevanceHandlesEmptyNameParts(t *testing.T) {
	// Missing candidate parts degrade the score but never panic.
	score := NameRelevance("Mohapi", "", "", "")
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}

func TestNameRelevanceClampedAtEnd(t *testing.T) {
	// A gibberish token far from both parts drives the raw score below zero;
	// the final clamp holds the result at 0.
	score := NameRelevance("zzzzzzzzzzzzzzzzzzzz", "Thabo", "Mohapi", "T100 M100")
	assert.Equal(t, 0, score)
}

func TestCombinedRelevance(t *testing.T) {
	assert.Equal(t, 65, CombinedRelevance(50, true, true))
	assert.Equal(t, 60, CombinedRelevance(50, false, true))
	assert.Equal(t, 55, CombinedRelevance(50, true, false))
	assert.Equal(t, 100, CombinedRelevance(95, true, true))
	assert.Equal(t, 0, CombinedRelevance(-10, false, false))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "26612345678", NormalizePhone("+266 1234-5678"))
	assert.Equal(t, "", NormalizePhone("n/a"))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "thabo mohapi", NormalizeName("  Thabo   MOHAPI "))
	assert.Equal(t, "", NormalizeName("   "))
}
