package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/appengine-ltd/wendao/internal/game"
)

// --- Styles (jade on ink) ---
var (
	jade       = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	brightJade = lipgloss.NewStyle().Foreground(lipgloss.Color("48")).Bold(true)
	dim        = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	gold       = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	crimson    = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	panel      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("29")).Padding(0, 1)
)

var numbers = message.NewPrinter(language.English)

// count renders whole numbers with grouping, e.g. 12,400.
func count(n int) string {
	return numbers.Sprintf("%d", n)
}

func toneStyle(t game.Tone) lipgloss.Style {
	switch t {
	case game.ToneGood:
		return gold
	case game.ToneBad:
		return crimson
	default:
		return jade
	}
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	left := lipgloss.JoinVertical(lipgloss.Left, m.characterPanel(), m.runPanel())
	right := lipgloss.JoinVertical(lipgloss.Left, m.scenePanel(), m.logPanel())

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")
	b.WriteString(m.prompt())
	return b.String()
}

func (m model) header() string {
	title := brightJade.Render("WENDAO") + dim.Render("  the road of asking the dao")
	ver := ""
	if m.cfg.Version != "" {
		ver = dim.Render(fmt.Sprintf("  v%s (%s) %s", m.cfg.Version, m.cfg.Commit, m.cfg.BuildDate))
	}
	slot := ""
	if m.cfg.Slot != "" {
		slot = dim.Render("  slot " + m.cfg.Slot)
	}
	return title + ver + slot
}

func (m model) characterPanel() string {
	c := m.status.Character
	realm := c.RealmInfo()
	lines := []string{
		brightJade.Render(realm.Name),
		fmt.Sprintf("Progress  %s", progressBar(c.RealmFraction(), 20)),
		fmt.Sprintf("Aura      %s (+%s/s)", game.FormatAmount(c.Resources.Aura), game.FormatAmount(m.status.AuraRate)),
		fmt.Sprintf("Dao       %s", game.FormatAmount(c.DaoPoints)),
		fmt.Sprintf("Stones    %s", count(c.Resources.Stones)),
		fmt.Sprintf("Materials %s", count(c.Resources.Materials)),
		fmt.Sprintf("Pills %s  Scrolls %s", count(c.Resources.Pills), count(c.Resources.Scrolls)),
		fmt.Sprintf("Array     level %d (next %s stones)", c.ArrayLevel, count(m.status.ArrayCost)),
		fmt.Sprintf("Break     %d%% for %s aura, %s materials", int(m.status.Chance*100),
			count(m.status.AdvanceAura), count(m.status.AdvanceMaterials)),
		dim.Render(fmt.Sprintf("Insight %d  Fortune %d  Spirit %d", c.Stats.Insight, c.Stats.Fortune, c.Stats.Spirit)),
		dim.Render(fmt.Sprintf("Weapon  %s", weaponLine(c.Weapon))),
	}
	return panel.Width(42).Render(strings.Join(lines, "\n"))
}

func weaponLine(w game.Equipment) string {
	if w.Tier == 0 {
		return w.Name
	}
	line := fmt.Sprintf("%s (%d%%)", w.Name, int(w.Durability*100))
	if affix, ok := game.LookupAffix(w.Affix); ok && w.Affix != "" {
		line += " " + affix.Name
	}
	return line
}

func (m model) runPanel() string {
	r := m.status.Character.Run
	if !r.Active {
		return panel.Width(42).Render(dim.Render("Not in the abyss. Stance: " + string(r.Stance)))
	}
	lines := []string{
		gold.Render(r.Title),
		fmt.Sprintf("Floor %d of %d   danger %d%%", r.Floor, r.FloorCount, int(r.Danger*100)),
		fmt.Sprintf("Vitality %s", meter(r.Vitality, r.VitalityMax, 16)),
		fmt.Sprintf("Focus    %s", meter(r.Focus, r.FocusMax, 16)),
		dim.Render("Stance " + string(r.Stance)),
	}
	return panel.Width(42).Render(strings.Join(lines, "\n"))
}

func (m model) scenePanel() string {
	sc := m.status.Scene
	var b strings.Builder
	b.WriteString(brightJade.Render(sc.Title))
	b.WriteString("\n")
	b.WriteString(sc.Body)
	for i, ch := range sc.Choices {
		cursor := "  "
		label := jade.Render(fmt.Sprintf("%d. %s", i+1, ch.Label))
		if i == m.cursor {
			cursor = "> "
			label = brightJade.Render(fmt.Sprintf("%d. %s", i+1, ch.Label))
		}
		b.WriteString("\n" + cursor + label)
	}
	return panel.Width(m.rightWidth()).Render(b.String())
}

func (m model) logPanel() string {
	rows := m.height - 22
	if rows < 6 {
		rows = 6
	}
	logs := m.logs
	if len(logs) > rows {
		logs = logs[len(logs)-rows:]
	}
	lines := make([]string, 0, len(logs))
	for _, l := range logs {
		lines = append(lines, dim.Render(l.Time.Format("15:04:05"))+" "+toneStyle(l.Tone).Render(l.Text))
	}
	return panel.Width(m.rightWidth()).Render(strings.Join(lines, "\n"))
}

func (m model) rightWidth() int {
	w := m.width - 48
	if w < 40 {
		w = 40
	}
	return w
}

func (m model) prompt() string {
	var b strings.Builder
	if m.notice != "" {
		b.WriteString(gold.Render(m.notice) + "\n")
	}
	if len(m.clarify) > 0 {
		b.WriteString(dim.Render("  " + strings.Join(m.clarify, " | ")) + "\n")
	}
	b.WriteString(jade.Render("> ") + m.input + dim.Render("_"))
	b.WriteString("\n" + dim.Render("Type a command (help for the list). Enter on an empty line picks the highlighted choice. Ctrl+C quits."))
	return b.String()
}

func progressBar(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	return jade.Render(strings.Repeat("█", filled)) + dim.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %d%%", int(frac*100))
}

func meter(v, limit float64, width int) string {
	if limit <= 0 {
		return progressBar(0, width)
	}
	return progressBar(v/limit, width) + dim.Render(fmt.Sprintf(" %s/%s", game.FormatAmount(v), game.FormatAmount(limit)))
}
