package parser

import "github.com/appengine-ltd/wendao/internal/game"

// ContextFor builds the parse context from a session status. last is the
// entity the player referred to most recently, if any.
func ContextFor(st game.Status, last string) ParseContext {
	ctx := ParseContext{LastEntity: last}
	for _, ch := range st.Scene.Choices {
		ctx.Choices = append(ctx.Choices, ch.Label)
	}
	for _, sk := range game.AllSkills() {
		ctx.Skills = append(ctx.Skills, string(sk.ID))
	}
	for _, r := range game.AllRecipes() {
		ctx.Recipes = append(ctx.Recipes, string(r.ID))
	}
	for _, stance := range game.AllStances() {
		ctx.Stances = append(ctx.Stances, string(stance))
	}
	return ctx
}

// LastEntity picks the argument a later "it" or "that" should refer to.
func LastEntity(intent Intent, previous string) string {
	if intent.Clarify != nil || intent.Literal || len(intent.Args) == 0 {
		return previous
	}
	switch intent.Verb {
	case "learn", "craft":
		return intent.Args[0]
	}
	return previous
}
