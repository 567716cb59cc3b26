package catalog

import (
	"sort"
	"strings"
)

// MaxResults caps how many options a ranked filter returns.
const MaxResults = 20

// Rank filters and orders options against a search term. It is a pure
// function of its inputs: the same options and term always produce the same
// ordered result.
//
// An empty (after trimming) term returns the first MaxResults options in
// their given order. Otherwise each option is scored against a haystack
// built from its searchable fields; zero-scored options are dropped, the
// rest sort by score descending with ties broken alphabetically by label.
func Rank(options []Option, term string) []Option {
	term = strings.ToLower(strings.TrimSpace(term))

	if term == "" {
		if len(options) <= MaxResults {
			return append([]Option(nil), options...)
		}
		return append([]Option(nil), options[:MaxResults]...)
	}

	words := strings.Fields(term)

	type scored struct {
		opt   Option
		score int
	}

	matches := make([]scored, 0, len(options))
	for _, opt := range options {
		if s := score(haystack(opt), term, words); s > 0 {
			matches = append(matches, scored{opt: opt, score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return strings.ToLower(matches[i].opt.Label) < strings.ToLower(matches[j].opt.Label)
	})

	if len(matches) > MaxResults {
		matches = matches[:MaxResults]
	}

	out := make([]Option, len(matches))
	for i, m := range matches {
		out[i] = m.opt
	}
	return out
}

// haystack concatenates an option's searchable fields, lower-cased.
func haystack(o Option) string {
	parts := make([]string, 0, 6)
	for _, f := range []string{o.Label, o.Value, o.Name, o.Category, o.SpecimenType, o.Description} {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// score combines a whole-phrase score band (exactly one of 100/50/25 fires,
// in that priority order) with independent per-word bonuses.
func score(hay, term string, words []string) int {
	var s int

	switch {
	case strings.HasPrefix(hay, term):
		s += 100
	case tokenHasPrefix(hay, term):
		s += 50
	case strings.Contains(hay, term):
		s += 25
	}

	for _, w := range words {
		switch {
		case strings.HasPrefix(hay, w):
			s += 10
		case strings.Contains(hay, " "+w):
			s += 5
		case strings.Contains(hay, w):
			s += 1
		}
	}

	return s
}

func tokenHasPrefix(hay, term string) bool {
	for _, tok := range strings.Fields(hay) {
		if strings.HasPrefix(tok, term) {
			return true
		}
	}
	return false
}
