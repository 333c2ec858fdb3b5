package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/appengine-ltd/wendao/internal/game"
)

type docFile struct {
	Name    string
	Title   string
	Content string
}

func main() {
	var root string
	flag.StringVar(&root, "out", filepath.Join("docs", "reference", "catalogs"), "output directory")
	flag.Parse()

	if err := os.MkdirAll(root, 0o755); err != nil {
		fatal(err)
	}

	files := catalogDocs()
	for _, f := range files {
		path := filepath.Join(root, f.Name)
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			fatal(err)
		}
		fmt.Printf("wrote %s\n", path)
	}

	index := generateCatalogIndex(files)
	indexPath := filepath.Join(root, "README.md")
	if err := os.WriteFile(indexPath, []byte(index), 0o644); err != nil {
		fatal(err)
	}
	fmt.Printf("wrote %s\n", indexPath)
}

func catalogDocs() []docFile {
	return []docFile{
		generateRealmsDoc(),
		generateAffinitiesDoc(),
		generateSkillsDoc(),
		generateRecipesDoc(),
		generateAffixesDoc(),
		generateAchievementsDoc(),
	}
}

func generateCatalogIndex(files []docFile) string {
	var b strings.Builder
	b.WriteString("# Data Catalogs\n\n")
	b.WriteString("Generated from the current Go source using `go run ./cmd/catalogdoc`.\n\n")
	for _, f := range files {
		b.WriteString(fmt.Sprintf("- [%s](./%s)\n", f.Title, f.Name))
	}
	return b.String()
}

func generateRealmsDoc() docFile {
	var b strings.Builder
	b.WriteString("# Realms\n\n")
	b.WriteString("Source: `internal/game/catalog.go` (`AllRealms`).\n\n")
	b.WriteString("| # | Name | Progress Threshold | Breakthrough Aura | Breakthrough Materials |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for i, r := range game.AllRealms() {
		aura, materials := game.AdvancementCost(i)
		b.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %d |\n",
			i, escape(r.Name), formatFloat(r.Threshold), game.FormatAmount(float64(aura)), materials))
	}
	return docFile{Name: "realms.md", Title: "Realms", Content: b.String()}
}

func generateAffinitiesDoc() docFile {
	var b strings.Builder
	b.WriteString("# Spirit Root Affinities\n\n")
	b.WriteString("Source: `internal/game/catalog.go` (`AllAffinities`).\n\n")
	b.WriteString("| ID | Name | Aura Multiplier |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, a := range game.AllAffinities() {
		b.WriteString(fmt.Sprintf("| %s | %s | x%s |\n", escape(string(a.ID)), escape(a.Name), formatFloat(a.Mult)))
	}
	return docFile{Name: "affinities.md", Title: "Affinities", Content: b.String()}
}

func generateSkillsDoc() docFile {
	items := game.AllSkills()
	var b strings.Builder
	b.WriteString("# Skills\n\n")
	b.WriteString("Source: `internal/game/catalog.go` (`AllSkills`).\n\n")
	b.WriteString(fmt.Sprintf("Total skills: **%d**.\n\n", len(items)))
	b.WriteString("| ID | Name | Dao Cost | Requires | Effect |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, s := range items {
		reqs := make([]string, 0, len(s.Requires))
		for _, r := range s.Requires {
			reqs = append(reqs, string(r))
		}
		b.WriteString("| ")
		b.WriteString(escape(string(s.ID)))
		b.WriteString(" | ")
		b.WriteString(escape(s.Name))
		b.WriteString(" | ")
		b.WriteString(formatFloat(s.Cost))
		b.WriteString(" | ")
		b.WriteString(escape(strings.Join(reqs, ", ")))
		b.WriteString(" | ")
		b.WriteString(escape(s.Desc))
		b.WriteString(" |\n")
	}
	return docFile{Name: "skills.md", Title: "Skills", Content: b.String()}
}

func generateRecipesDoc() docFile {
	items := game.AllRecipes()
	var b strings.Builder
	b.WriteString("# Recipes\n\n")
	b.WriteString("Source: `internal/game/catalog.go` (`AllRecipes`).\n\n")
	b.WriteString("| ID | Kind | Title | Cost | Notes |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, r := range items {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			escape(string(r.ID)), r.Kind, escape(r.Title), escape(formatCost(r.Cost)), escape(r.Hint)))
	}
	return docFile{Name: "recipes.md", Title: "Recipes", Content: b.String()}
}

func generateAffixesDoc() docFile {
	var b strings.Builder
	b.WriteString("# Weapon Affixes\n\n")
	b.WriteString("Source: `internal/game/catalog.go` (`AllAffixes`). Affixes act inside runs only.\n\n")
	b.WriteString("| ID | Name | Dodge | Crit | Damage | Rest Heal | Description |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
	for _, a := range game.AllAffixes() {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
			escape(string(a.ID)), escape(a.Name), percent(a.Dodge), percent(a.Crit), percent(a.Damage), percent(a.RestHeal), escape(a.Desc)))
	}
	return docFile{Name: "affixes.md", Title: "Affixes", Content: b.String()}
}

func generateAchievementsDoc() docFile {
	var b strings.Builder
	b.WriteString("# Achievements\n\n")
	b.WriteString("Source: `internal/game/catalog.go` (`AllAchievements`).\n\n")
	b.WriteString("| ID | Name | Condition |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, a := range game.AllAchievements() {
		b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", escape(string(a.ID)), escape(a.Name), escape(a.Desc)))
	}
	return docFile{Name: "achievements.md", Title: "Achievements", Content: b.String()}
}

func formatCost(cost game.Cost) string {
	parts := make([]string, 0, len(cost))
	for _, item := range cost {
		parts = append(parts, fmt.Sprintf("%d %s", item.Amount, item.Resource))
	}
	return strings.Join(parts, ", ")
}

func percent(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("+%.0f%%", v*100)
}

func formatFloat(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	v = strings.ReplaceAll(v, "|", "\\|")
	v = strings.ReplaceAll(v, "\n", "<br>")
	return v
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
