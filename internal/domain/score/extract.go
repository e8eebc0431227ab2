package score

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxScoreGap      = 4
	maxScoreSum      = 100
	maxIntegerDigits = 3
	scoreSeparator   = "-"
)

// Integer is an integer token found in text. Start and End are byte offsets,
// End exclusive.
type Integer struct {
	Value int
	Start int
	End   int
}

// FindScoreIndices returns the first adjacent pair (i, i+1) of integers that
// reads as a score: close together, a plausible total and a '-' between them.
// Text reporting more than one score only yields its first pair.
func FindScoreIndices(integers []Integer, text string) (int, int, bool) {
	for i := 0; i+1 < len(integers); i++ {
		first, second := integers[i], integers[i+1]
		if second.Start-first.End > maxScoreGap {
			continue
		}
		if first.Value+second.Value > maxScoreSum {
			continue
		}
		if first.End < 0 || second.Start > len(text) || first.End > second.Start {
			continue
		}
		if strings.Contains(text[first.End:second.Start], scoreSeparator) {
			return i, i + 1, true
		}
	}
	return -1, -1, false
}

// ExtractIntegers tokenizes standalone integers. Decimals, money amounts,
// clock times and digits attached to letters are skipped. A run too long to
// be a score also drops every run chained to it by '-' or '/', so dates such
// as 2015-08-29 yield nothing.
func ExtractIntegers(text string) []Integer {
	runs := digitRuns(text)
	dropped := make([]bool, len(runs))
	for i, run := range runs {
		if run.End-run.Start <= maxIntegerDigits {
			continue
		}
		dropped[i] = true
		for j := i; j > 0 && chained(text, runs[j-1], runs[j]); j-- {
			dropped[j-1] = true
		}
		for j := i; j+1 < len(runs) && chained(text, runs[j], runs[j+1]); j++ {
			dropped[j+1] = true
		}
	}

	out := make([]Integer, 0, len(runs))
	for i, run := range runs {
		if dropped[i] || !standalone(text, run.Start, run.End) {
			continue
		}
		out = append(out, run)
	}
	return out
}

// digitRuns returns every maximal run of ASCII digits. Value is only set for
// runs short enough to be a score.
func digitRuns(text string) []Integer {
	var runs []Integer
	for i := 0; i < len(text); {
		if !isDigit(text[i]) {
			i++
			continue
		}

		start := i
		for i < len(text) && isDigit(text[i]) {
			i++
		}
		run := Integer{Start: start, End: i}
		if i-start <= maxIntegerDigits {
			for _, c := range text[start:i] {
				run.Value = run.Value*10 + int(c-'0')
			}
		}
		runs = append(runs, run)
	}
	return runs
}

func chained(text string, left, right Integer) bool {
	if right.Start-left.End != 1 {
		return false
	}
	sep := text[left.End]
	return sep == '-' || sep == '/'
}

// HasScoreCandidates reports whether text carries at least two integers.
func HasScoreCandidates(integers []Integer) bool {
	return len(integers) >= 2
}

func standalone(text string, start, end int) bool {
	if start > 0 {
		prev, size := utf8.DecodeLastRuneInString(text[:start])
		switch {
		case unicode.IsLetter(prev), prev == '$', prev == '€', prev == '£', prev == '_':
			return false
		case prev == '.' || prev == ',' || prev == ':':
			if start-size > 0 && isDigit(text[start-size-1]) {
				return false
			}
		}
	}
	if end < len(text) {
		next, size := utf8.DecodeRuneInString(text[end:])
		switch {
		case unicode.IsLetter(next), next == '%', next == '_':
			return false
		case next == '.' || next == ',' || next == ':':
			if end+size < len(text) && isDigit(text[end+size]) {
				return false
			}
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
