package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/studyreader/internal/collection"
	"github.com/csheth/studyreader/internal/config"
	"github.com/csheth/studyreader/internal/llm"
)

func (m *model) View() string {
	switch m.stage {
	case stageOpen:
		return m.viewOpen()
	case stageLoading:
		return m.viewLoading()
	default:
		return m.viewReading()
	}
}

func (m *model) viewOpen() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Open a document"))
	b.WriteRune('\n')
	b.WriteString(m.input.View())
	b.WriteRune('\n')
	hint := "Enter to open, ↑/↓ for recent files."
	if m.sess.Document() != nil {
		hint += " Esc to keep reading."
	}
	b.WriteString(helperStyle.Render(hint))
	parts := []string{m.heroView(), b.String()}
	if recent := m.recentView(); recent != "" {
		parts = append(parts, recent)
	}
	return joinNonEmpty(append(parts, m.messagesView()))
}

func (m *model) recentView() string {
	recent := m.sess.RecentFiles()
	if len(recent) == 0 {
		return ""
	}
	lines := []string{sectionHeaderStyle.Render("Recent")}
	for i, name := range recent {
		line := fmt.Sprintf("  %s  %s", displayName(name), helperStyle.Render(name))
		if i == m.recentIdx {
			line = currentLineStyle.Render("▸ " + displayName(name))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *model) viewLoading() string {
	return joinNonEmpty([]string{m.heroView(), m.messagesView()})
}

func (m *model) viewReading() string {
	m.refreshViewportIfDirty()
	parts := []string{m.titleView(), m.bodyView()}
	switch m.stage {
	case stagePrompt:
		parts = append(parts, m.promptView())
	case stageConfirm:
		parts = append(parts, m.confirmView())
	}
	parts = append(parts, m.sessionMeterView(), m.messagesView())
	if m.helpVisible {
		parts = append(parts, m.keyLegendView(), m.helpView())
	}
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		heroTitleStyle.Render("StudyReader"),
		taglineStyle.Render(heroTagline),
	)
}

func (m *model) titleView() string {
	title := heroTitleStyle.Render(displayName(m.sess.File()))
	kind := ""
	if doc := m.sess.Document(); doc != nil {
		kind = helperStyle.Render(" " + string(doc.Kind()))
	}
	return title + kind
}

func (m *model) bodyView() string {
	switch {
	case m.layout.sideBySide:
		return lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), "  ", m.cardsView(m.layout.cardsWidth))
	case m.focus == focusCards:
		return m.cardsView(m.layout.cardsWidth)
	default:
		return m.viewport.View()
	}
}

func (m *model) cardsView(width int) string {
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	store := m.sess.Ledger(m.cardKind)
	cards := store.Generated()
	header := fmt.Sprintf("%s · %d new · %d collected", kindTitle(m.cardKind), len(cards), store.Count())
	lines := []string{sectionHeaderStyle.Render(header)}
	if len(cards) == 0 {
		lines = append(lines, helperStyle.Render(wordwrap.String("Put the cursor on a word and press f for flashcards or t for a language card.", inner)))
	}
	for i, card := range cards {
		text := cardText(card)
		body := wordwrap.String(text, inner-2)
		if m.focus == focusCards && i == m.cardCursor {
			body = currentLineStyle.Render(body)
		}
		lines = append(lines, indentMultiline(body, "  "))
	}
	if m.explanation != "" {
		lines = append(lines, "", sectionHeaderStyle.Render("Explanation"), wordwrap.String(m.explanation, inner))
	}
	lines = append(lines, "", helperStyle.Render(strings.Join(m.cardHints(), "  ")))
	return cardsBoxStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// cardHints lists the collection actions available now. Export and Anki
// appear only once the collection holds something.
func (m *model) cardHints() []string {
	store := m.sess.Ledger(m.cardKind)
	hints := []string{"tab cards", "[ ] kind"}
	if len(store.Generated()) > 0 {
		hints = append(hints, "c collect", "x remove")
	}
	if store.ExportVisible() {
		hints = append(hints, "E export", "C clear")
		if m.config.Anki != nil {
			hints = append(hints, "A anki")
		}
	}
	return hints
}

func cardText(card collection.Card) string {
	if card.Kind == collection.KindLanguage {
		return fmt.Sprintf("%s → %s\nQ: %s\nA: %s", card.Word, card.Translation, llm.StripEmphasis(card.Question), card.Answer)
	}
	return fmt.Sprintf("Q: %s\nA: %s", card.Question, card.Answer)
}

func (m *model) promptView() string {
	return promptBoxStyle.Render(joinNonEmpty([]string{
		sectionHeaderStyle.Render(promptTitle(m.prompt)),
		m.input.View(),
		helperStyle.Render("Enter to confirm, Esc to cancel."),
	}))
}

func (m *model) confirmView() string {
	store := m.sess.Ledger(m.cardKind)
	question := fmt.Sprintf("Delete all %d card(s) in the %s collection? (y/n)", store.Count(), kindLabel(m.cardKind))
	return promptBoxStyle.Render(errorStyle.Render(question))
}

func (m *model) messagesView() string {
	var parts []string
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.stage == stageLoading || m.jobs.Running(jobKindGenerate) > 0 {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	return strings.Join(parts, "\n")
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func (m *model) modeLabel() string {
	switch {
	case m.focus == focusCards:
		return "CARDS"
	case m.mode == modeHighlight:
		return "HIGHLIGHT"
	default:
		return "NORMAL"
	}
}

func (m *model) sessionMeterView() string {
	stats := []string{
		fmt.Sprintf("Mode %s", m.modeLabel()),
		fmt.Sprintf("Page %d/%d", m.sess.CurrentPage(), m.sess.NumPages()),
		fmt.Sprintf("Zoom %d%%", percent(m.sess.Scale())),
		fmt.Sprintf("Ask %s", modeName(m.genMode)),
		fmt.Sprintf("Model %s", m.sess.Model()),
		fmt.Sprintf("Lang %s", m.sess.TargetLanguage()),
	}
	if m.sess.Rendering() {
		stats = append(stats, "Rendering…")
	}
	if n := m.jobs.Running(jobKindGenerate); n > 0 {
		stats = append(stats, fmt.Sprintf("Generating %d…", n))
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"j/k h/l", "Move cursor"},
		{"w/b", "Next/prev word"},
		{"g/G", "Top or bottom"},
		{"v", "Highlight passage"},
		{"f", "Flashcards"},
		{"e", "Explain"},
		{"t", "Language card"},
		{"m", "Cycle Enter mode"},
		{"+/-", "Zoom"},
		{"p", "Jump to page"},
		{"o", "Open document"},
		{"tab", "Card panel"},
		{"c", "Collect cards"},
		{"K/M/L", "Key, model, language"},
		{"?", "Toggle cheatsheet"},
	}
	if m.sess.Ledger(m.cardKind).ExportVisible() {
		hints = append(hints, keyHint{"E", "Export collection"}, keyHint{"C", "Clear collection"})
		if m.config.Anki != nil {
			hints = append(hints, keyHint{"A", "Send to Anki"})
		}
	}
	rows := []string{sectionHeaderStyle.Render("Reading Cheatsheet")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Width(22).Render(" " + hint.Description)
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) helpView() string {
	lines := []string{
		sectionHeaderStyle.Render("How it works"),
		helperStyle.Render("• pages load as you scroll; reading resumes two pages before where you stopped."),
		helperStyle.Render("• f, e and t use the word under the cursor, or the passage marked with v."),
		helperStyle.Render("• flashcards and explanations use the surrounding sentence; language cards use nearby words."),
		helperStyle.Render("• new cards wait in the panel until c adds them to the collection."),
		helperStyle.Render("• press Esc to leave highlight mode or this help, q or Ctrl+C to quit."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func indentMultiline(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func previewText(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

func displayName(name string) string {
	if name == "" {
		return "untitled"
	}
	return filepath.Base(name)
}

func percent(scale float64) int {
	return int(math.Round(scale * 100))
}

func modeName(mode llm.Mode) string {
	switch mode {
	case llm.ModeExplain:
		return "explanation"
	case llm.ModeLanguage:
		return "language card"
	default:
		return "flashcards"
	}
}

func kindLabel(kind collection.Kind) string {
	if kind == collection.KindLanguage {
		return "language"
	}
	return "flashcard"
}

func kindTitle(kind collection.Kind) string {
	if kind == collection.KindLanguage {
		return "Language cards"
	}
	return "Flashcards"
}

func promptTitle(kind promptKind) string {
	switch kind {
	case promptPage:
		return "Jump to page"
	case promptAPIKey:
		return "API key"
	case promptModel:
		return "Model"
	case promptLanguage:
		return "Target language"
	case promptExport:
		return "Export to (.csv or .xlsx)"
	default:
		return "Open a document"
	}
}

func promptPlaceholder(kind promptKind) string {
	switch kind {
	case promptPage:
		return "page number"
	case promptAPIKey:
		return "leave empty to use the saved key"
	case promptModel:
		return config.DefaultModel
	case promptLanguage:
		return "English"
	case promptExport:
		return "flashcards.csv"
	default:
		return "book.pdf, https://…, or an arXiv id"
	}
}
