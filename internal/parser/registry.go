package parser

import (
	"cmp"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// phrase is one spelling of a verb, either its canonical name or an alias.
type phrase struct {
	verb  string
	text  string
	words []string
}

// Registry maps typed words onto known verbs.
type Registry struct {
	defs    map[string]CommandDef
	phrases []phrase
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]CommandDef)}
}

// RegisterCommand adds or replaces a verb and its aliases.
func (r *Registry) RegisterCommand(c CommandDef) {
	c.Canonical = normaliseInput(c.Canonical)
	if c.Canonical == "" {
		return
	}
	if c.HandlerKey == "" {
		c.HandlerKey = c.Canonical
	}
	r.defs[c.Canonical] = c

	for _, spelling := range append([]string{c.Canonical}, c.Aliases...) {
		text := normaliseInput(spelling)
		if text == "" {
			continue
		}
		r.phrases = append(r.phrases, phrase{verb: c.Canonical, text: text, words: tokenise(text)})
	}
}

func (r *Registry) command(verb string) (CommandDef, bool) {
	def, ok := r.defs[normaliseInput(verb)]
	return def, ok
}

// verbMatch is a scored reading of the leading words as a verb. consumed
// counts the words that belong to the verb rather than its arguments.
type verbMatch struct {
	verb     string
	consumed int
	score    float64
}

// matchCommand returns the best reading of tokens and up to four runners-up
// naming other verbs.
func (r *Registry) matchCommand(tokens []string) (verbMatch, []verbMatch) {
	if len(tokens) == 0 {
		return verbMatch{}, nil
	}
	line := strings.Join(tokens, " ")
	var found []verbMatch
	for _, ph := range r.phrases {
		if m, ok := ph.score(tokens, line); ok {
			found = append(found, m)
		}
	}
	if len(found) == 0 {
		return verbMatch{}, nil
	}

	slices.SortStableFunc(found, func(a, b verbMatch) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.consumed, a.consumed); c != 0 {
			return c
		}
		return strings.Compare(a.verb, b.verb)
	})

	best := found[0]
	var runners []verbMatch
	seen := map[string]bool{best.verb: true}
	for _, m := range found[1:] {
		if seen[m.verb] || len(runners) == 4 {
			continue
		}
		seen[m.verb] = true
		runners = append(runners, m)
	}
	return best, runners
}

// score rates how well the start of tokens spells this phrase. Exact
// spellings beat prefixes, which beat small typos.
func (ph phrase) score(tokens []string, line string) (verbMatch, bool) {
	n := len(ph.words)
	if n == 0 {
		return verbMatch{}, false
	}
	alias := ph.text != ph.verb

	head := strings.Join(tokens[:min(n, len(tokens))], " ")
	if len(tokens) >= n && head == ph.text {
		if alias {
			return verbMatch{verb: ph.verb, consumed: n, score: 0.97}, true
		}
		return verbMatch{verb: ph.verb, consumed: n, score: 1}, true
	}
	if n == 1 && len(tokens[0]) >= 2 && strings.HasPrefix(ph.text, tokens[0]) {
		return verbMatch{verb: ph.verb, consumed: 1, score: 0.9}, true
	}

	if len(head) < 3 {
		return verbMatch{}, false
	}
	d := levenshtein.ComputeDistance(head, ph.text)
	if d > levenshteinLimit(len(ph.text)) {
		return verbMatch{}, false
	}
	s := 0.72 - 0.08*float64(d)
	if strings.Contains(line, ph.text) {
		s += 0.04
	}
	if alias {
		s += 0.03
	}
	return verbMatch{verb: ph.verb, consumed: min(n, len(tokens)), score: s}, true
}

// levenshteinLimit is the largest edit distance accepted for a word of the
// given length.
func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func DefaultRegistry() *Registry {
	r := NewRegistry()
	commands := []CommandDef{
		{Canonical: "help", Aliases: []string{"h", "commands", "?"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "help"},
		{Canonical: "status", Aliases: []string{"stat", "info", "look", "me"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "status"},
		{Canonical: "meditate", Aliases: []string{"med", "breathe", "cultivate", "sit"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "meditate"},
		{Canonical: "upgrade", Aliases: []string{"array", "upgrade array", "raise array"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "upgrade"},
		{Canonical: "break", Aliases: []string{"breakthrough", "break through", "ascend", "advance realm"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "break"},
		{Canonical: "skills", Aliases: []string{"skill tree", "tree"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "skills"},
		{Canonical: "learn", Aliases: []string{"comprehend", "study"}, MinArgs: 1, MaxArgs: 1, HandlerKey: "learn"},
		{Canonical: "craft", Aliases: []string{"refine", "forge", "make", "recipes"}, MinArgs: 0, MaxArgs: 1, HandlerKey: "craft"},
		{Canonical: "enter", Aliases: []string{"start run", "delve", "dive", "enter abyss"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "enter"},
		{Canonical: "step", Aliases: []string{"next", "onward", "proceed"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "step"},
		{Canonical: "rest", Aliases: []string{"recover", "heal"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "rest"},
		{Canonical: "exit", Aliases: []string{"abandon", "flee", "leave run", "quit run"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "exit"},
		{Canonical: "stance", Aliases: []string{"posture"}, MinArgs: 1, MaxArgs: 1, HandlerKey: "stance"},
		{Canonical: "choose", Aliases: []string{"pick", "select", "option"}, MinArgs: 1, MaxArgs: 1, HandlerKey: "choose"},
		{Canonical: "achievements", Aliases: []string{"ach", "feats", "trophies"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "achievements"},
		{Canonical: "cues", Aliases: []string{"sound", "audio"}, MinArgs: 1, MaxArgs: 1, HandlerKey: "cues"},

		// Storage verbs are handled outside the session.
		{Canonical: "save", MinArgs: 0, MaxArgs: 0, HandlerKey: "save"},
		{Canonical: "load", MinArgs: 0, MaxArgs: 0, HandlerKey: "load"},
		{Canonical: "export", MinArgs: 1, MaxArgs: 1, HandlerKey: "export", RawArgs: true},
		{Canonical: "import", MinArgs: 1, MaxArgs: 1, HandlerKey: "import", RawArgs: true},
		{Canonical: "archives", Aliases: []string{"archive", "history"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "archives"},
		{Canonical: "restore", MinArgs: 1, MaxArgs: 1, HandlerKey: "restore", RawArgs: true},
		{Canonical: "reset", Aliases: []string{"start over", "new fate"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "reset"},
		{Canonical: "quit", Aliases: []string{"q", "bye"}, MinArgs: 0, MaxArgs: 0, HandlerKey: "quit"},
	}
	for _, cmd := range commands {
		r.RegisterCommand(cmd)
	}
	return r
}
