// Package moderation screens chat text against a banned-word list. Matching
// runs over a normalized form of the text (lowercased, leet speak mapped
// back, punctuation and spacing stripped) so trivial evasion like "b.a.d"
// or "b4d" is still caught. Flagged messages are rejected outright, never
// rewritten.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// DefaultWords seeds the filter when no list is configured. Entries are
// deliberately long enough not to appear inside everyday words, since
// matching ignores word boundaries.
var DefaultWords = []string{
	"asshole",
	"bastard",
	"bitch",
	"bollocks",
	"bullshit",
	"dickhead",
	"motherfucker",
	"fuck",
	"shit",
	"wanker",
}

// Filter is a stateless predicate over message text, safe for concurrent
// use once built.
type Filter struct {
	matcher *goahocorasick.Machine
}

// NewFilter builds the Aho-Corasick automaton from the normalized word
// list. Words that normalize to nothing are skipped; an empty list yields a
// filter that never matches.
func NewFilter(words []string) (*Filter, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if norm := normalize(word); len(norm) > 0 {
			patterns = append(patterns, norm)
		}
	}
	if len(patterns) == 0 {
		return &Filter{}, nil
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Filter{matcher: machine}, nil
}

// IsProfane reports whether the text contains any banned word.
func (f *Filter) IsProfane(text string) bool {
	if f.matcher == nil {
		return false
	}
	norm := normalize(text)
	if len(norm) == 0 {
		return false
	}
	return len(f.matcher.MultiPatternSearch(norm, true)) > 0
}

// normalize lowercases the input, maps common leet-speak substitutions back
// to letters, and drops punctuation, spacing, and symbols.
func normalize(input string) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		r = simplifyRune(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
