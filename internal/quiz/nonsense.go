package quiz

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Nonsense filter thresholds
const (
	maxDistinctRunes = 2 // answers with this many distinct characters or fewer are rejected
	minRepeatRun     = 5 // a single character repeated this many times is rejected
	minWordLength    = 3 // at least one alphabetic word must be this long
)

// IsNonsense reports whether an answer is too low-effort to be worth classifying.
// An answer is nonsense when it has at most two distinct characters, when it is one
// character repeated five or more times, or when it has no alphabetic word of three
// letters or more.
func IsNonsense(answer string) bool {
	answer = strings.ToLower(norm.NFC.String(answer))

	distinct := make(map[rune]struct{})
	for _, r := range answer {
		distinct[r] = struct{}{}
	}
	if len(distinct) <= maxDistinctRunes {
		return true
	}

	if isRepeatedRune(answer, minRepeatRun) {
		return true
	}

	return !hasAlphabeticWord(answer, minWordLength)
}

// isRepeatedRune reports whether s is made of one rune repeated at least n times
func isRepeatedRune(s string, n int) bool {
	if utf8.RuneCountInString(s) < n {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	for _, r := range s {
		if r != first {
			return false
		}
	}
	return true
}

// hasAlphabeticWord reports whether s holds a word made only of letters with at least
// minLen letters. Words are maximal runs of letters, digits and underscores, so "abc1"
// does not count as an alphabetic word.
func hasAlphabeticWord(s string, minLen int) bool {
	letters := 0
	alphabetic := true

	flush := func() bool {
		ok := alphabetic && letters >= minLen
		letters = 0
		alphabetic = true
		return ok
	}

	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.Is(unicode.Mn, r):
			// Combining accent with no precomposed form; part of the letter before it
		case unicode.IsDigit(r) || r == '_':
			alphabetic = false
		default:
			if flush() {
				return true
			}
		}
	}
	return flush()
}
