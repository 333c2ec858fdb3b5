package parser

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

type Parser struct {
	registry *Registry
}

func New() *Parser {
	return &Parser{registry: DefaultRegistry()}
}

func (p *Parser) RegisterCommand(c CommandDef) {
	p.registry.RegisterCommand(c)
}

func (p *Parser) Parse(ctx ParseContext, raw string) Intent {
	intent := Intent{
		Raw:        raw,
		Normalised: normaliseInput(raw),
		Kind:       Unknown,
		Confidence: 0,
	}
	if intent.Normalised == "" {
		intent.Clarify = &ClarifyQuestion{Prompt: "Enter a command or pick a choice.", Options: nil}
		return intent
	}

	tokens := tokenise(intent.Normalised)
	if len(tokens) == 1 {
		if n, ok := parseIndexToken(tokens[0]); ok {
			return chooseIntent(raw, intent.Normalised, n, 0.99)
		}
	}

	// A close match on the menu wins over verbs: "leave" at a merchant
	// means the choice, not leaving the run.
	if choice, ok := p.matchMenu(ctx, raw, intent.Normalised, 0.85); ok {
		return choice
	}

	best, runners := p.registry.matchCommand(tokens)
	if best.verb == "" || best.score < 0.5 {
		if choice, ok := p.matchMenu(ctx, raw, intent.Normalised, 0.6); ok {
			return choice
		}
		if inferred := inferFreeTextIntent(ctx, intent.Raw, intent.Normalised); inferred != nil {
			return *inferred
		}
		intent.Clarify = &ClarifyQuestion{
			Prompt: "I couldn't map that to a command. Try help, meditate, break, enter, step, rest, craft, learn, choose.",
		}
		return intent
	}

	// Two verbs scoring within a hair of each other are worth asking about.
	if len(runners) > 0 && best.score-runners[0].score < 0.05 && runners[0].score > 0.65 {
		intent.Clarify = &ClarifyQuestion{
			Prompt:  "Did you mean:",
			Options: []Intent{verbOption(raw, best), verbOption(raw, runners[0])},
		}
		return intent
	}

	intent.Verb = best.verb
	intent.Kind = commandKind(best.verb)
	intent.Confidence = clampScore(best.score)
	argsTokens := tokens[min(best.consumed, len(tokens)):]

	def, _ := p.registry.command(intent.Verb)
	if def.RawArgs {
		intent.Args = literalArgs(raw, best.consumed)
		intent.Literal = true
	} else {
		resolvedArgs, clarify, argScore := p.resolveArgs(ctx, def, argsTokens)
		if clarify != nil {
			intent.Clarify = clarify
			intent.Confidence = 0.45
			return intent
		}
		intent.Args = resolvedArgs
		intent.Confidence = clampScore((intent.Confidence * 0.75) + (argScore * 0.25))
	}

	if intent.Kind == Command && len(intent.Args) < def.MinArgs {
		if options := buildArgOptions(ctx, def.Canonical, 5); len(options) > 0 {
			intent.Clarify = &ClarifyQuestion{
				Prompt:  argPrompt(def.Canonical),
				Options: options,
			}
			intent.Confidence = 0.46
			return intent
		}
		intent.Clarify = &ClarifyQuestion{Prompt: fmt.Sprintf("%s needs at least %d argument(s).", def.Canonical, def.MinArgs)}
		intent.Confidence = 0.42
		return intent
	}

	if len(intent.Args) > def.MaxArgs {
		intent.Args = append([]string(nil), intent.Args[:def.MaxArgs]...)
		intent.Confidence = clampScore(intent.Confidence - 0.05)
	}

	if intent.Confidence < 0.52 && intent.Clarify == nil {
		intent.Clarify = &ClarifyQuestion{Prompt: "I have low confidence in that parse. Please rephrase or pick a clearer command."}
	}
	return intent
}

func verbOption(raw string, m verbMatch) Intent {
	return Intent{
		Raw:        raw,
		Normalised: m.verb,
		Kind:       commandKind(m.verb),
		Verb:       m.verb,
		Confidence: m.score,
	}
}

func commandKind(verb string) IntentKind {
	switch verb {
	case "help":
		return Help
	case "status", "skills", "achievements":
		return Query
	default:
		return Command
	}
}

func chooseIntent(raw, normalised string, n int, confidence float64) Intent {
	return Intent{
		Raw:        raw,
		Normalised: normalised,
		Kind:       Command,
		Verb:       "choose",
		Args:       []string{strconv.Itoa(n)},
		Confidence: clampScore(confidence),
	}
}

// matchMenu maps input onto the scene's menu when it scores at least floor.
// Two near-equal labels produce a clarify question instead.
func (p *Parser) matchMenu(ctx ParseContext, raw, normalised string, floor float64) (Intent, bool) {
	idx, score, tie := matchChoice(normalised, ctx.Choices)
	if len(idx) == 0 || score < floor {
		return Intent{}, false
	}
	if tie {
		options := make([]Intent, 0, len(idx))
		for i, pos := range idx {
			opt := chooseIntent(raw, normaliseInput(ctx.Choices[pos]), pos+1, score-float64(i)*0.01)
			options = append(options, opt)
		}
		return Intent{
			Raw:        raw,
			Normalised: normalised,
			Kind:       Command,
			Verb:       "choose",
			Confidence: 0.5,
			Clarify:    &ClarifyQuestion{Prompt: "Which one?", Options: options},
		}, true
	}
	return chooseIntent(raw, normalised, idx[0]+1, score), true
}

// matchChoice scores input against every label and returns the best
// positions. Two positions are returned only on a tie.
func matchChoice(input string, labels []string) ([]int, float64, bool) {
	if input == "" || len(labels) == 0 {
		return nil, 0, false
	}
	type scored struct {
		pos   int
		score float64
	}
	results := make([]scored, 0, len(labels))
	for pos, label := range labels {
		if s := labelScore(input, normaliseInput(label)); s > 0 {
			results = append(results, scored{pos: pos, score: s})
		}
	}
	if len(results) == 0 {
		return nil, 0, false
	}
	slices.SortStableFunc(results, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	best := results[0]
	if len(results) > 1 && (best.score-results[1].score) < 0.05 && results[1].score > 0.6 {
		return []int{best.pos, results[1].pos}, best.score, true
	}
	return []int{best.pos}, best.score, false
}

func labelScore(input, label string) float64 {
	switch {
	case label == "":
		return 0
	case input == label:
		return 1.0
	case strings.HasPrefix(label, input) && len(input) >= 3:
		return 0.92
	case coversTokens(input, label):
		return 0.86
	}
	in := tokenise(input)
	words := tokenise(label)
	if len(in) > len(words) {
		return 0
	}
	head := strings.Join(words[:len(in)], " ")
	if len(input) < 4 {
		return 0
	}
	dist := levenshtein.ComputeDistance(input, head)
	if dist > levenshteinLimit(len(head)) {
		return 0
	}
	return clampScore(0.72 - (0.08 * float64(dist)))
}

// coversTokens reports whether every meaningful input word starts some word
// of the label.
func coversTokens(input, label string) bool {
	words := tokenise(label)
	meaningful := 0
	for _, tok := range tokenise(input) {
		if len(tok) < 2 {
			continue
		}
		meaningful++
		found := false
		for _, w := range words {
			if strings.HasPrefix(w, tok) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return meaningful > 0
}

func (p *Parser) resolveArgs(ctx ParseContext, def CommandDef, args []string) ([]string, *ClarifyQuestion, float64) {
	if len(args) == 0 {
		return nil, nil, 0.9
	}

	switch def.Canonical {
	case "choose":
		if n, ok := parseIndexToken(args[0]); ok {
			return []string{strconv.Itoa(n)}, nil, 0.95
		}
		joined := strings.Join(args, " ")
		idx, score, tie := matchChoice(joined, ctx.Choices)
		if tie {
			options := make([]Intent, 0, len(idx))
			for i, pos := range idx {
				options = append(options, chooseIntent(joined, normaliseInput(ctx.Choices[pos]), pos+1, score-float64(i)*0.01))
			}
			return nil, &ClarifyQuestion{Prompt: "Which one?", Options: options}, 0.5
		}
		if len(idx) == 1 && score >= 0.6 {
			return []string{strconv.Itoa(idx[0] + 1)}, nil, score
		}
		return []string{strings.ReplaceAll(joined, " ", "_")}, nil, 0.6
	case "cues":
		if mapped := mapToggle(args[0]); mapped != "" {
			return []string{mapped}, nil, 0.95
		}
		return []string{args[0]}, nil, 0.5
	}

	pool := argPool(ctx, def.Canonical)
	resolved := make([]string, 0, len(args))
	score := 0.9
	last := normaliseInput(ctx.LastEntity)
	for i, token := range args {
		if isPronoun(token) {
			if last == "" {
				return nil, &ClarifyQuestion{Prompt: "What does that refer to?"}, 0.4
			}
			resolved = append(resolved, last)
			score -= 0.08
			continue
		}

		if len(pool) > 0 && i == 0 {
			names, confidence, tie := bestMatches(token, pool)
			if tie {
				return nil, &ClarifyQuestion{
					Prompt:  fmt.Sprintf("Did you mean %s?", def.Canonical),
					Options: []Intent{
						argOption(def.Canonical, names[0], confidence),
						argOption(def.Canonical, names[1], confidence-0.01),
					},
				}, 0.52
			}
			if len(names) == 1 {
				resolved = append(resolved, names[0])
				score = minScore(score, confidence)
				continue
			}
		}

		resolved = append(resolved, token)
		score -= 0.02
	}
	return resolved, nil, clampScore(score)
}

var defaultStances = []string{"balanced", "aggressive", "guard", "mystic"}

func argPool(ctx ParseContext, verb string) []string {
	var pool []string
	switch verb {
	case "learn":
		pool = ctx.Skills
	case "craft":
		pool = append([]string{"list"}, ctx.Recipes...)
	case "stance":
		pool = ctx.Stances
		if len(pool) == 0 {
			pool = defaultStances
		}
	}
	return mergeUnique(pool, nil)
}

func argPrompt(verb string) string {
	switch verb {
	case "choose":
		return "Which choice?"
	case "learn":
		return "Which skill?"
	case "stance":
		return "Which stance?"
	case "cues":
		return "Sound cues on or off?"
	default:
		return fmt.Sprintf("What should I %s?", verb)
	}
}

// wordScore rates token as a spelling of cand, or reports no match.
func wordScore(token, cand string) (float64, bool) {
	if token == cand {
		return 1, true
	}
	if len(token) >= 2 && strings.HasPrefix(cand, token) {
		return 0.9, true
	}
	d := levenshtein.ComputeDistance(token, cand)
	if d > levenshteinLimit(len(cand)) {
		return 0, false
	}
	return clampScore(0.72 - 0.08*float64(d)), true
}

// bestMatches picks the pool entries token most likely names. Two entries
// come back, flagged as a tie, when neither clearly wins.
func bestMatches(token string, pool []string) ([]string, float64, bool) {
	type ranked struct {
		name  string
		score float64
	}
	var hits []ranked
	for _, cand := range pool {
		if sc, ok := wordScore(token, cand); ok {
			hits = append(hits, ranked{name: cand, score: sc})
		}
	}
	if len(hits) == 0 {
		return nil, 0, false
	}
	slices.SortStableFunc(hits, func(a, b ranked) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})

	top := hits[0]
	if len(hits) > 1 && top.score-hits[1].score < 0.05 && hits[1].score > 0.6 {
		return []string{top.name, hits[1].name}, top.score, true
	}
	return []string{top.name}, top.score, false
}

func argOption(verb, arg string, confidence float64) Intent {
	return Intent{
		Kind:       commandKind(verb),
		Verb:       verb,
		Args:       []string{arg},
		Confidence: confidence,
	}
}

func buildArgOptions(ctx ParseContext, verb string, maxOptions int) []Intent {
	options := make([]Intent, 0, maxOptions)
	if verb == "choose" {
		for pos, label := range ctx.Choices {
			options = append(options, chooseIntent(label, normaliseInput(label), pos+1, 0.88))
			if len(options) >= maxOptions {
				break
			}
		}
		return options
	}
	pool := argPool(ctx, verb)
	if verb == "cues" {
		pool = []string{"on", "off"}
	}
	for _, entity := range pool {
		options = append(options, argOption(verb, entity, 0.88))
		if len(options) >= maxOptions {
			break
		}
	}
	return options
}

func inferFreeTextIntent(ctx ParseContext, raw string, normalised string) *Intent {
	n := normalised
	makeIntent := func(kind IntentKind, verb string, args []string, confidence float64) *Intent {
		return &Intent{
			Raw:        raw,
			Normalised: normalised,
			Kind:       kind,
			Verb:       verb,
			Args:       args,
			Confidence: clampScore(confidence),
		}
	}

	if containsAnyPhrase(n, "how am i", "my status", "show status", "check status", "show stats", "where am i") {
		return makeIntent(Query, "status", nil, 0.9)
	}
	if containsAnyPhrase(n, "what can i learn", "show skills", "skill list", "my skills") {
		return makeIntent(Query, "skills", nil, 0.9)
	}
	if containsAnyPhrase(n, "break through", "breakthrough", "next realm", "attempt the wall") {
		return makeIntent(Command, "break", nil, 0.86)
	}
	if containsAnyPhrase(n, "sit and breathe", "gather aura", "draw in aura") || containsWord(n, "meditate") {
		return makeIntent(Command, "meditate", nil, 0.84)
	}
	if containsAnyPhrase(n, "enter the abyss", "into the abyss", "start a run", "secret realm", "go exploring") {
		return makeIntent(Command, "enter", nil, 0.84)
	}
	if containsAnyPhrase(n, "press on", "keep going", "go on", "move on", "next floor") {
		return makeIntent(Command, "step", nil, 0.82)
	}
	if containsAnyPhrase(n, "turn sound off", "sound off", "mute sound", "cues off") {
		return makeIntent(Command, "cues", []string{"off"}, 0.86)
	}
	if containsAnyPhrase(n, "turn sound on", "sound on", "cues on") {
		return makeIntent(Command, "cues", []string{"on"}, 0.86)
	}
	if containsAnyPhrase(n, "save game", "save my progress", "save progress") {
		return makeIntent(Command, "save", nil, 0.88)
	}
	if containsWord(n, "rest") || containsAnyPhrase(n, "catch my breath", "take a break") {
		return makeIntent(Command, "rest", nil, 0.8)
	}

	// "i want to learn primordial breath" style fallback.
	if containsWord(n, "learn") {
		tokens := tokenise(n)
		for i, tok := range tokens {
			if tok != "learn" || i+1 >= len(tokens) {
				continue
			}
			m, confidence, tie := bestMatches(tokens[i+1], mergeUnique(ctx.Skills, nil))
			if len(m) == 1 && !tie {
				return makeIntent(Command, "learn", []string{m[0]}, confidence)
			}
		}
	}

	return nil
}

func containsAnyPhrase(value string, phrases ...string) bool {
	for _, phrase := range phrases {
		if containsPhrase(value, phrase) {
			return true
		}
	}
	return false
}

func containsPhrase(value, phrase string) bool {
	p := normaliseInput(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(" "+value+" ", " "+p+" ")
}

func containsWord(value, word string) bool {
	w := normaliseInput(word)
	if w == "" {
		return false
	}
	return strings.Contains(" "+value+" ", " "+w+" ")
}

func mergeUnique(a, b []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(a)+len(b))
	add := func(list []string) {
		for _, v := range list {
			n := normaliseInput(v)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	add(a)
	add(b)
	return out
}

func minScore(a, b float64) float64 {
	if b < a {
		return b
	}
	return a
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// IntentToCommandString renders an intent as the line the session's command
// executor understands.
func IntentToCommandString(intent Intent) string {
	verb := normaliseInput(intent.Verb)
	if verb == "" {
		return ""
	}
	if intent.Literal {
		if len(intent.Args) == 0 {
			return verb
		}
		return verb + " " + strings.Join(intent.Args, " ")
	}
	args := make([]string, 0, len(intent.Args))
	for _, arg := range intent.Args {
		n := strings.ReplaceAll(normaliseInput(arg), " ", "_")
		if n != "" {
			args = append(args, n)
		}
	}
	if len(args) == 0 {
		return verb
	}
	return verb + " " + strings.Join(args, " ")
}
