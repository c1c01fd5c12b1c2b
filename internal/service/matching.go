package service

import (
	"math/rand"
	"strings"
	"unicode/utf8"
)

// typedAnswerToleranceFloor is the correct-answer length (in runes) above
// which one edit of slack is allowed. Short answers must match exactly,
// one edit in a two-character word is a different word.
const typedAnswerToleranceFloor = 5

// guessOptionCount is the fixed number of multiple-choice options.
const guessOptionCount = 4

// guessOptionPlaceholders pad the option list when the scope holds too few
// distinct answers to fill it.
var guessOptionPlaceholders = []string{"—", "— —", "— — —"}

// MatchTypedAnswer reports whether a typed answer matches the correct one.
// Matching is case-insensitive and ignores surrounding whitespace; answers
// longer than five runes tolerate a Levenshtein distance of one.
func MatchTypedAnswer(correct, answer string) bool {
	correct = strings.ToLower(strings.TrimSpace(correct))
	answer = strings.ToLower(strings.TrimSpace(answer))

	if correct == answer {
		return true
	}
	if utf8.RuneCountInString(correct) <= typedAnswerToleranceFloor {
		return false
	}
	return levenshtein([]rune(correct), []rune(answer)) <= 1
}

// levenshtein computes the edit distance between two rune slices with the
// classic two-row dynamic program.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// generateGuessOptions builds the shuffled multiple-choice option list for
// one card: the correct answer plus up to three distinct distractors drawn
// from the other in-scope answers, padded with placeholders when the scope
// is too small.
func generateGuessOptions(correct string, pool []string, rng *rand.Rand) []string {
	seen := map[string]bool{correct: true}
	distractors := make([]string, 0, len(pool))
	for _, back := range pool {
		if seen[back] {
			continue
		}
		seen[back] = true
		distractors = append(distractors, back)
	}

	rng.Shuffle(len(distractors), func(i, j int) {
		distractors[i], distractors[j] = distractors[j], distractors[i]
	})
	if len(distractors) > guessOptionCount-1 {
		distractors = distractors[:guessOptionCount-1]
	}

	options := append([]string{correct}, distractors...)
	for i := 0; len(options) < guessOptionCount; i++ {
		options = append(options, guessOptionPlaceholders[i%len(guessOptionPlaceholders)])
	}

	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
