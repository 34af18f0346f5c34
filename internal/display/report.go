// Package display renders build results for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/mjohnson025/mtga-deck-builder/internal/deckbuilder"
	"github.com/mjohnson025/mtga-deck-builder/internal/meta"
)

// Report is everything shown after one build.
type Report struct {
	Filter   deckbuilder.FilterSpec
	Result   *deckbuilder.Result
	Advisory *meta.Advisory // optional

	// Owned is the number of distinct owned cards the build used.
	Owned int

	// Files lists paths written during the run (exports, charts).
	Files []string
}

// ReportDisplayer writes styled reports.
type ReportDisplayer struct {
	w io.Writer
}

// NewReportDisplayer creates a displayer writing to w.
func NewReportDisplayer(w io.Writer) *ReportDisplayer {
	return &ReportDisplayer{w: w}
}

// Display writes the rendered report.
func (d *ReportDisplayer) Display(r *Report) error {
	_, err := io.WriteString(d.w, Render(r))
	return err
}

// Render returns the report as styled text.
func Render(r *Report) string {
	if r == nil || r.Result == nil {
		return dimStyle.Render("No deck built.") + "\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Deck (%d cards)", r.Result.Deck.Total())))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(filterLine(r.Filter, r.Result.FilteredCount, r.Owned)))
	b.WriteString("\n\n")

	b.WriteString(boxStyle.Render(deckSection(r.Result.Deck)))
	b.WriteString("\n")

	if len(r.Result.Suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Suggested acquisitions"))
		b.WriteString("\n")
		for _, s := range r.Result.Suggestions {
			b.WriteString(cardLine(s.Count, s.Name, normalStyle))
		}
	}

	if len(r.Result.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range r.Result.Warnings {
			b.WriteString(warnStyle.Render("! " + w.Message))
			b.WriteString("\n")
		}
	}

	if r.Advisory != nil {
		b.WriteString("\n")
		b.WriteString(RenderAdvisory(r.Advisory))
	}

	if len(r.Files) > 0 {
		b.WriteString("\n")
		for _, f := range r.Files {
			b.WriteString(dimStyle.Render("wrote " + f))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func filterLine(f deckbuilder.FilterSpec, filtered, owned int) string {
	colors := make([]string, len(f.Colors))
	for i, c := range f.Colors {
		colors[i] = string(c)
	}
	if len(colors) == 0 {
		colors = []string{"any color"}
	}
	format := f.Format
	if format == "" {
		format = deckbuilder.AnyFormat
	}
	return fmt.Sprintf("keywords: %s | colors: %s | format: %s | %d candidates | %d owned",
		strings.Join(f.Keywords, ", "), strings.Join(colors, ", "), format, filtered, owned)
}

func deckSection(deck deckbuilder.DeckList) string {
	var b strings.Builder
	spells, lands := deck.Spells(), deck.Lands()

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Spells (%d)", spells.Total())))
	b.WriteString("\n")
	for _, e := range spells {
		b.WriteString(cardLine(e.Count, e.Name, normalStyle))
	}

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Lands (%d)", lands.Total())))
	for _, e := range lands {
		b.WriteString("\n")
		style := normalStyle
		if c, ok := landColors[e.Name]; ok {
			style = lipgloss.NewStyle().Foreground(c)
		}
		b.WriteString(strings.TrimSuffix(cardLine(e.Count, e.Name, style), "\n"))
	}
	return b.String()
}

func cardLine(count int, name string, style lipgloss.Style) string {
	return countStyle.Render(fmt.Sprintf("%d", count)) + " " + style.Render(name) + "\n"
}

// RenderAdvisory renders the meta deck preview.
func RenderAdvisory(a *meta.Advisory) string {
	var b strings.Builder

	heading := "Top meta decks"
	if a.Source != "" {
		heading += " (" + a.Source
		if a.Cached {
			heading += ", cached"
		}
		heading += ")"
	}
	b.WriteString(sectionStyle.Render(heading))
	b.WriteString("\n")

	if len(a.Decks) == 0 {
		b.WriteString(dimStyle.Render("no meta decks available"))
		b.WriteString("\n")
	}
	for _, d := range a.Decks {
		line := "- " + d.Name
		var details []string
		if d.Tier > 0 {
			details = append(details, fmt.Sprintf("tier %d", d.Tier))
		}
		if d.MetaShare > 0 {
			details = append(details, fmt.Sprintf("%.1f%%", d.MetaShare))
		}
		if len(d.Colors) > 0 {
			details = append(details, strings.Join(d.Colors, ""))
		}
		b.WriteString(normalStyle.Render(line))
		if len(details) > 0 {
			b.WriteString(" " + dimStyle.Render("("+strings.Join(details, ", ")+")"))
		}
		b.WriteString("\n")
	}

	for _, w := range a.Warnings {
		b.WriteString(warnStyle.Render("! " + w))
		b.WriteString("\n")
	}
	return b.String()
}

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// CopyToClipboard places text on the system clipboard.
func CopyToClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}
	if err := writeClipboard(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
