package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CommandResult reports what a text command did. Commands that touch storage
// (save, load, export, import, reset) are left unhandled for the caller.
type CommandResult struct {
	Handled bool
	Message string
	Err     error
}

const helpText = "Commands: status, meditate, upgrade, break, skills, learn <skill>, craft list|<recipe>, " +
	"enter, step, rest, exit, stance <balanced|aggressive|guard|mystic>, choose <n|name>, " +
	"achievements, cues on|off, save, load, export <file>, import <file>, archives, restore <id>, reset."

func (s *Session) ExecuteCommand(raw string) CommandResult {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	if len(fields) == 0 {
		return CommandResult{Handled: false}
	}
	args := fields[1:]

	switch fields[0] {
	case "help", "commands":
		return CommandResult{Handled: true, Message: helpText}
	case "status":
		return CommandResult{Handled: true, Message: s.statusLine()}
	case "meditate":
		return done(s.Meditate(), "")
	case "upgrade":
		return done(s.UpgradeArray(), "")
	case "break", "breakthrough":
		res, err := s.AttemptAdvancement()
		if err != nil {
			return done(err, "")
		}
		if res.Success {
			return done(nil, fmt.Sprintf("Breakthrough succeeded at %d%%.", int(res.Chance*100)))
		}
		return done(nil, fmt.Sprintf("Breakthrough failed at %d%%.", int(res.Chance*100)))
	case "skills":
		return CommandResult{Handled: true, Message: s.skillsLine()}
	case "learn":
		if len(args) == 0 {
			return CommandResult{Handled: true, Message: "Usage: learn <skill>"}
		}
		return done(s.LearnSkill(SkillID(args[0])), "")
	case "craft":
		if len(args) == 0 || args[0] == "list" {
			return CommandResult{Handled: true, Message: recipesLine()}
		}
		return done(s.Craft(RecipeID(args[0])), "")
	case "enter":
		return done(s.StartRun(), "")
	case "step", "next":
		return done(s.Step(), "")
	case "rest":
		return done(s.Rest(), "")
	case "exit", "leave":
		return done(s.ExitRun(), "")
	case "stance":
		if len(args) == 0 {
			return CommandResult{Handled: true, Message: "Usage: stance <balanced|aggressive|guard|mystic>"}
		}
		return done(s.SetStance(Stance(args[0])), "")
	case "choose":
		if len(args) == 0 {
			return CommandResult{Handled: true, Message: "Usage: choose <n|name>"}
		}
		return s.executeChoose(args[0])
	case "achievements":
		return CommandResult{Handled: true, Message: s.achievementsLine()}
	case "cues":
		if len(args) == 0 || (args[0] != "on" && args[0] != "off") {
			return CommandResult{Handled: true, Message: "Usage: cues on|off"}
		}
		s.SetCues(args[0] == "on")
		return CommandResult{Handled: true}
	default:
		return CommandResult{Handled: false}
	}
}

func (s *Session) executeChoose(arg string) CommandResult {
	if n, err := strconv.Atoi(arg); err == nil {
		return done(s.ChooseIndex(n-1), "")
	}
	id, ok := ParseChoiceID(arg)
	if !ok {
		return CommandResult{Handled: true, Message: fmt.Sprintf("Unknown choice %q.", arg)}
	}
	return done(s.Choose(id), "")
}

// done folds an operation error into a result. Shortfalls were already
// logged by the session, so only the message is surfaced.
func done(err error, msg string) CommandResult {
	if err == nil {
		return CommandResult{Handled: true, Message: msg}
	}
	var e *Error
	if errors.As(err, &e) {
		return CommandResult{Handled: true, Message: capitalize(e.Message) + ".", Err: err}
	}
	return CommandResult{Handled: true, Message: err.Error(), Err: err}
}

func (s *Session) statusLine() string {
	st := s.Status()
	c := st.Character
	var b strings.Builder
	fmt.Fprintf(&b, "%s %.0f%% | aura %s (+%.2f/s) stones %d pills %d scrolls %d materials %d | array %d | dao %.1f | break %d%% (%s aura, %d materials)",
		RealmAt(c.Realm).Name, c.RealmFraction()*100,
		FormatAmount(c.Resources.Aura), st.AuraRate, c.Resources.Stones, c.Resources.Pills,
		c.Resources.Scrolls, c.Resources.Materials, c.ArrayLevel, c.DaoPoints,
		int(st.Chance*100), FormatAmount(float64(st.AdvanceAura)), st.AdvanceMaterials)
	if c.Run.Active {
		fmt.Fprintf(&b, " | floor %d/%d danger %d%% vitality %d/%d focus %d/%d",
			c.Run.Floor, c.Run.FloorCount, int(c.Run.Danger*100),
			int(c.Run.Vitality), int(c.Run.VitalityMax), int(c.Run.Focus), int(c.Run.FocusMax))
	}
	return b.String()
}

func (s *Session) skillsLine() string {
	st := s.Status()
	has := func(id SkillID) bool {
		for _, got := range st.Character.Skills {
			if got == id {
				return true
			}
		}
		return false
	}
	parts := make([]string, 0, len(skills))
	for _, sk := range skills {
		state := "locked"
		switch {
		case has(sk.ID):
			state = "learned"
		case sk.Unlocked(has):
			state = fmt.Sprintf("%.0f dao", sk.Cost)
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", sk.ID, state))
	}
	return "Skills: " + strings.Join(parts, ", ")
}

func recipesLine() string {
	parts := make([]string, 0, len(recipes))
	for _, r := range recipes {
		cost := make([]string, 0, len(r.Cost))
		for _, item := range r.Cost {
			cost = append(cost, fmt.Sprintf("%d %s", item.Amount, item.Resource))
		}
		parts = append(parts, fmt.Sprintf("%s [%s] %s", r.ID, r.Kind, strings.Join(cost, "+")))
	}
	return "Recipes: " + strings.Join(parts, ", ")
}

func (s *Session) achievementsLine() string {
	st := s.Status()
	parts := make([]string, 0, len(achievements))
	for _, a := range achievements {
		mark := " "
		if st.Character.Achievements[a.ID] {
			mark = "x"
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", mark, a.Name))
	}
	return strings.Join(parts, "  ")
}
