package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var multiSpaceRE = regexp.MustCompile(`\s+`)

func normaliseInput(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	var b strings.Builder
	lastSpace := false
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '-' || r == '_' || r == '/' || r == '\'' || r == '(' || r == ')' || r == ',' {
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
		}
	}
	return strings.TrimSpace(multiSpaceRE.ReplaceAllString(b.String(), " "))
}

func tokenise(normalised string) []string {
	if strings.TrimSpace(normalised) == "" {
		return nil
	}
	return strings.Fields(normalised)
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4,
	"one": 1, "two": 2, "three": 3, "four": 4,
}

// parseIndexToken reads a 1-based menu position.
func parseIndexToken(token string) (int, bool) {
	token = strings.TrimSpace(strings.ToLower(token))
	if token == "" {
		return 0, false
	}
	if n, ok := ordinalWords[token]; ok {
		return n, true
	}
	if n, err := strconv.Atoi(token); err == nil && n > 0 {
		return n, true
	}
	return 0, false
}

func isPronoun(token string) bool {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "it", "that", "this", "again":
		return true
	default:
		return false
	}
}

func mapToggle(token string) string {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "on", "yes", "enable", "enabled", "true":
		return "on"
	case "off", "no", "disable", "disabled", "false", "mute":
		return "off"
	default:
		return ""
	}
}

// literalArgs returns the raw input after the first consumed words, with its
// original case and punctuation.
func literalArgs(raw string, consumed int) []string {
	fields := strings.Fields(strings.TrimSpace(raw))
	if consumed >= len(fields) {
		return nil
	}
	return []string{strings.Join(fields[consumed:], " ")}
}
