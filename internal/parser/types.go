package parser

type IntentKind int

const (
	Command IntentKind = iota
	Query
	Help
	Unknown
)

// Intent is one parsed line. Literal marks args taken verbatim from the raw
// input, such as file paths.
type Intent struct {
	Raw        string
	Normalised string
	Kind       IntentKind
	Verb       string
	Args       []string
	Literal    bool
	Confidence float64
	Clarify    *ClarifyQuestion
}

type ClarifyQuestion struct {
	Prompt  string
	Options []Intent
}

// ParseContext carries what the player can currently refer to. Choices are
// the labels of the scene's menu, in order.
type ParseContext struct {
	Choices    []string
	Skills     []string
	Recipes    []string
	Stances    []string
	LastEntity string
}

type CommandDef struct {
	Canonical  string
	Aliases    []string
	MinArgs    int
	MaxArgs    int
	HandlerKey string
	RawArgs    bool
}
