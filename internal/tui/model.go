package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/studyreader/internal/collection"
	"github.com/csheth/studyreader/internal/extract"
	"github.com/csheth/studyreader/internal/llm"
	"github.com/csheth/studyreader/internal/remote"
	"github.com/csheth/studyreader/internal/render"
	"github.com/csheth/studyreader/internal/session"
	"github.com/csheth/studyreader/internal/tracker"
)

// Config wires runtime collaborators into the reader.
type Config struct {
	Session   *session.Session
	Cache     *remote.Cache
	Anki      *collection.Anki
	AnkiDeck  string
	ExportDir string
	// Open is loaded on start when set.
	Open string
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	input := textinput.New()
	input.Placeholder = promptPlaceholder(promptOpen)
	input.Focus()
	input.CharLimit = 512
	input.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	return &model{
		config:        config,
		sess:          config.Session,
		jobs:          newJobBus(),
		stage:         stageOpen,
		prompt:        promptOpen,
		genMode:       llm.ModeFlashcard,
		cardKind:      collection.KindFlashcard,
		input:         input,
		spinner:       spin,
		viewport:      vp,
		layout:        newPageLayout(),
		recentIdx:     -1,
		viewportDirty: true,
		infoMessage:   "Open a PDF, EPUB, or text file to begin.",
	}
}

type model struct {
	config Config
	sess   *session.Session
	jobs   *jobBus
	stage  stage
	mode   interactionMode
	focus  focusPane
	prompt promptKind
	// returnStage is where a prompt or confirmation goes back to.
	returnStage stage

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	layout   pageLayout

	genMode       llm.Mode
	cardKind      collection.Kind
	cardCursor    int
	cursor        cell
	anchor        cell
	explanation   string
	recentIdx     int
	lineCount     int
	viewportDirty bool
	helpVisible   bool
	infoMessage   string
	errorMessage  string
}

func (m *model) Init() tea.Cmd {
	if m.config.Open != "" {
		return m.openDocument(m.config.Open)
	}
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case jobSignalMsg:
		m.jobs.Track(msg.Snapshot)
		return m, nil
	case jobResultEnvelope:
		m.jobs.Track(msg.Snapshot)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case spinner.TickMsg:
		if m.stage == stageLoading || m.jobs.Busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.sess.SetViewportHeight(m.viewport.Height)
		m.markViewportDirty()
		m.refreshViewportIfDirty()
		return m, m.afterScroll()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.stage != stageReading {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, tea.Batch(cmd, m.afterScroll())
	case documentOpenedMsg:
		return m.handleOpened(msg)
	case pageRenderedMsg:
		return m.handleRendered(msg)
	case cardsGeneratedMsg:
		return m.handleGenerated(msg)
	case exportFinishedMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("Export failed: %v", msg.err)
			return m, nil
		}
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Exported %d card(s) to %s", msg.count, msg.path)
		return m, nil
	case ankiPushedMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("Anki sync failed: %v", msg.err)
			return m, nil
		}
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Added %d of %d card(s) to the %s deck.", msg.added, msg.total, msg.deck)
		return m, nil
	}
	return m, nil
}

func (m *model) handleOpened(msg documentOpenedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.stage = stageOpen
		m.prompt = promptOpen
		m.input.Focus()
		m.errorMessage = describeError(msg.err)
		m.infoMessage = "Try another file."
		return m, nil
	}
	job, ok := m.sess.Attach(msg.name, msg.doc)
	m.stage = stageReading
	m.mode = modeNormal
	m.focus = focusPages
	m.cursor = cell{}
	m.explanation = ""
	m.errorMessage = ""
	m.input.SetValue("")
	m.input.Blur()
	m.viewport.SetYOffset(0)
	m.infoMessage = fmt.Sprintf("Opened %s (%d pages) at page %d.", displayName(msg.name), m.sess.NumPages(), m.sess.CurrentPage())
	m.markViewportDirty()
	return m, m.startRender(job, ok)
}

func (m *model) handleRendered(msg pageRenderedMsg) (tea.Model, tea.Cmd) {
	next, ok := m.sess.Complete(msg.result)
	m.markViewportDirty()
	m.refreshViewportIfDirty()
	if err := msg.result.Err; err != nil {
		m.errorMessage = describeError(err)
		return m, m.startRender(next, ok)
	}
	return m, tea.Batch(m.startRender(next, ok), m.afterScroll())
}

func (m *model) handleGenerated(msg cardsGeneratedMsg) (tea.Model, tea.Cmd) {
	d, err := m.sess.Deliver(msg.req, msg.resp, msg.err)
	if err != nil {
		m.errorMessage = describeError(err)
		return m, nil
	}
	m.errorMessage = ""
	switch {
	case d.Explanation != "":
		m.explanation = d.Explanation
		m.infoMessage = "Explanation ready."
	case d.Cards > 0:
		m.cardKind = collection.KindFlashcard
		if d.Mode == llm.ModeLanguage {
			m.cardKind = collection.KindLanguage
		}
		m.cardCursor = 0
		m.infoMessage = fmt.Sprintf("%d new card(s). Press c to collect.", d.Cards)
	default:
		m.infoMessage = "The model returned no cards."
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageOpen:
		return m.handleOpenKey(key)
	case stagePrompt:
		return m.handlePromptKey(key)
	case stageConfirm:
		return m.handleConfirmKey(key)
	case stageReading:
		if m.focus == focusCards {
			return m.handleCardsKey(key)
		}
		return m.handleReadingKey(key)
	default:
		return m, nil
	}
}

func (m *model) handleOpenKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter:
		return m, m.openDocument(m.input.Value())
	case tea.KeyEsc:
		if m.sess.Document() != nil {
			m.stage = stageReading
			m.input.Blur()
			m.errorMessage = ""
		}
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		recent := m.sess.RecentFiles()
		if len(recent) == 0 {
			return m, nil
		}
		if key.Type == tea.KeyUp {
			m.recentIdx--
		} else {
			m.recentIdx++
		}
		m.recentIdx = (m.recentIdx%len(recent) + len(recent)) % len(recent)
		m.input.SetValue(recent[m.recentIdx])
		m.input.CursorEnd()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m *model) handlePromptKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.closePrompt()
		m.infoMessage = "Cancelled."
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		kind := m.prompt
		m.closePrompt()
		return m, m.submitPrompt(kind, value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m *model) handleConfirmKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "y", "Y":
		m.stage = m.returnStage
		store := m.sess.Ledger(m.cardKind)
		if err := store.Clear(true); err != nil {
			m.errorMessage = fmt.Sprintf("Clear failed: %v", err)
			return m, nil
		}
		m.infoMessage = fmt.Sprintf("Cleared the %s collection.", kindLabel(m.cardKind))
	case "n", "N", "esc":
		m.stage = m.returnStage
		m.infoMessage = "Kept the collection."
	}
	return m, nil
}

func (m *model) handleReadingKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	moved := true
	switch key.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		switch {
		case m.helpVisible:
			m.helpVisible = false
		case m.mode == modeHighlight:
			m.mode = modeNormal
			m.infoMessage = "Highlight mode off."
			m.markViewportDirty()
		}
		return m, nil
	case "up", "k":
		m.moveCursor(-1, 0)
	case "down", "j":
		m.moveCursor(1, 0)
	case "left", "h":
		m.moveCursor(0, -1)
	case "right", "l":
		m.moveCursor(0, 1)
	case "w":
		m.jumpWord(1)
	case "b":
		m.jumpWord(-1)
	case "ctrl+d", "pgdown":
		m.moveCursor(m.viewport.Height/2, 0)
	case "ctrl+u", "pgup":
		m.moveCursor(-m.viewport.Height/2, 0)
	case "g", "home":
		m.moveCursor(-m.cursor.row, 0)
	case "G", "end":
		m.moveCursor(m.lineCount, 0)
	default:
		moved = false
	}
	if moved {
		return m, m.afterScroll()
	}

	switch key.String() {
	case "v":
		m.toggleHighlightMode()
	case "f":
		return m, m.generate(llm.ModeFlashcard)
	case "e":
		return m, m.generate(llm.ModeExplain)
	case "t":
		return m, m.generate(llm.ModeLanguage)
	case "enter", " ":
		return m, m.generate(m.genMode)
	case "m":
		m.genMode = nextMode(m.genMode)
		m.infoMessage = fmt.Sprintf("Enter now asks for %s.", modeName(m.genMode))
	case "+", "=":
		return m, m.zoom(1)
	case "-", "_":
		return m, m.zoom(-1)
	case "p":
		m.openPrompt(promptPage, "")
	case "o":
		m.openPrompt(promptOpen, "")
	case "K":
		m.openPrompt(promptAPIKey, "")
	case "M":
		m.openPrompt(promptModel, m.sess.Model())
	case "L":
		m.openPrompt(promptLanguage, m.sess.TargetLanguage())
	case "tab":
		m.focus = focusCards
		m.mode = modeNormal
		m.markViewportDirty()
	case "?":
		m.helpVisible = !m.helpVisible
	default:
		return m.handleLedgerKey(key)
	}
	return m, nil
}

func (m *model) handleCardsKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	cards := m.sess.Ledger(m.cardKind).Generated()
	switch key.String() {
	case "q":
		return m, tea.Quit
	case "tab", "esc":
		m.focus = focusPages
		m.markViewportDirty()
	case "up", "k":
		if m.cardCursor > 0 {
			m.cardCursor--
		}
	case "down", "j":
		if m.cardCursor < len(cards)-1 {
			m.cardCursor++
		}
	case "x", "delete":
		if m.cardCursor >= len(cards) {
			return m, nil
		}
		if err := m.sess.Ledger(m.cardKind).Remove(cards[m.cardCursor].ID); err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		if m.cardCursor > 0 && m.cardCursor >= len(cards)-1 {
			m.cardCursor--
		}
		m.infoMessage = "Card removed."
	case "?":
		m.helpVisible = !m.helpVisible
	default:
		return m.handleLedgerKey(key)
	}
	return m, nil
}

// handleLedgerKey covers the collection keys shared by both panes.
func (m *model) handleLedgerKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	store := m.sess.Ledger(m.cardKind)
	switch key.String() {
	case "[", "]":
		if m.cardKind == collection.KindFlashcard {
			m.cardKind = collection.KindLanguage
		} else {
			m.cardKind = collection.KindFlashcard
		}
		m.cardCursor = 0
	case "c":
		entries, err := store.AddToCollection()
		if err != nil {
			m.errorMessage = fmt.Sprintf("Collect failed: %v", err)
			return m, nil
		}
		if len(entries) == 0 {
			m.infoMessage = "No generated cards to collect."
			return m, nil
		}
		m.cardCursor = 0
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Collected %d card(s); %d in the %s collection.", len(entries), store.Count(), kindLabel(m.cardKind))
	case "C":
		if store.Count() == 0 {
			m.infoMessage = "The collection is already empty."
			return m, nil
		}
		m.returnStage = m.stage
		m.stage = stageConfirm
	case "E":
		if !store.ExportVisible() {
			return m, nil
		}
		m.openPrompt(promptExport, filepath.Join(m.config.ExportDir, collection.FileName(m.cardKind, collection.FormatCSV)))
	case "A":
		if !store.ExportVisible() {
			return m, nil
		}
		if m.config.Anki == nil {
			m.errorMessage = "Anki sync is not configured."
			return m, nil
		}
		m.infoMessage = fmt.Sprintf("Sending %d card(s) to Anki…", store.Count())
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindAnki, pushAnkiJob(m.config.Anki, m.config.AnkiDeck, store.Entries())))
	}
	return m, nil
}

func (m *model) openDocument(input string) tea.Cmd {
	input = strings.TrimSpace(input)
	if input == "" {
		m.errorMessage = "Enter a file path, URL, or arXiv identifier."
		return nil
	}
	m.stage = stageLoading
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Opening %s…", displayName(input))
	m.input.Blur()
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindOpen, openDocumentJob(input, m.config.Cache)))
}

func (m *model) openPrompt(kind promptKind, value string) {
	m.returnStage = m.stage
	m.prompt = kind
	if kind == promptOpen {
		m.stage = stageOpen
		m.recentIdx = -1
	} else {
		m.stage = stagePrompt
	}
	m.input.EchoMode = textinput.EchoNormal
	if kind == promptAPIKey {
		m.input.EchoMode = textinput.EchoPassword
	}
	m.input.Placeholder = promptPlaceholder(kind)
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	m.errorMessage = ""
}

func (m *model) closePrompt() {
	m.stage = m.returnStage
	m.input.SetValue("")
	m.input.Blur()
}

func (m *model) submitPrompt(kind promptKind, value string) tea.Cmd {
	switch kind {
	case promptPage:
		n, err := strconv.Atoi(value)
		if err != nil {
			m.errorMessage = fmt.Sprintf("%q is not a page number.", value)
			return nil
		}
		job, ok, err := m.sess.JumpTo(n)
		if errors.Is(err, session.ErrPageOutOfRange) {
			m.errorMessage = fmt.Sprintf("Page must be between 1 and %d.", m.sess.NumPages())
			return nil
		}
		if err != nil {
			m.errorMessage = err.Error()
			return nil
		}
		m.resetView()
		m.infoMessage = fmt.Sprintf("Jumped to page %d.", n)
		return m.startRender(job, ok)
	case promptAPIKey:
		m.sess.SetAPIKey(value)
		if value == "" {
			m.infoMessage = "Using the saved or environment API key."
		} else {
			m.infoMessage = "API key set for this session."
		}
	case promptModel:
		if err := m.sess.SetModel(value); err != nil {
			m.errorMessage = err.Error()
			return nil
		}
		m.infoMessage = fmt.Sprintf("Model set to %s.", value)
	case promptLanguage:
		if err := m.sess.SetTargetLanguage(value); err != nil {
			m.errorMessage = err.Error()
			return nil
		}
		m.infoMessage = fmt.Sprintf("Language cards now translate into %s.", value)
	case promptExport:
		if value == "" {
			return nil
		}
		if _, err := collection.ParseFormat(value); err != nil {
			m.errorMessage = "Export to a .csv or .xlsx file."
			return nil
		}
		store := m.sess.Ledger(m.cardKind)
		m.infoMessage = fmt.Sprintf("Exporting %d card(s)…", store.Count())
		return m.jobs.Start(jobKindExport, exportLedgerJob(value, m.cardKind, store.Entries()))
	}
	return nil
}

// generate extracts the context of the selection, or of the word under the
// cursor, and starts a completion. Repeats inside the cooldown are dropped
// without a message.
func (m *model) generate(mode llm.Mode) tea.Cmd {
	sel, ok := m.currentSelection()
	if !ok {
		m.infoMessage = "Move the cursor onto a word or highlight a passage first."
		return nil
	}
	ctx, err := m.sess.Extract(mode, sel)
	if err != nil {
		m.infoMessage = "Nothing selected."
		return nil
	}
	m.mode = modeNormal
	m.markViewportDirty()
	req, err := m.sess.Prepare(mode, ctx)
	if errors.Is(err, session.ErrThrottled) {
		return nil
	}
	if err != nil {
		m.errorMessage = err.Error()
		return nil
	}
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Asking %s for %s: %s", req.Model, modeName(mode), previewText(ctx.Anchor, 40))
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindGenerate, generateCardsJob(req, m.sess.Generate(req))))
}

func (m *model) currentSelection() (extract.Selection, bool) {
	if start, end, ok := m.selectionCells(); ok {
		return m.spanSelection(start, end)
	}
	return m.wordAt(m.cursor)
}

func (m *model) zoom(steps int) tea.Cmd {
	before := m.sess.Scale()
	job, ok := m.sess.Zoom(steps)
	if m.sess.Scale() == before {
		m.infoMessage = fmt.Sprintf("Zoom stays at %d%%.", percent(before))
		return nil
	}
	m.resetView()
	m.infoMessage = fmt.Sprintf("Zoom %d%%.", percent(m.sess.Scale()))
	return m.startRender(job, ok)
}

// resetView puts the cursor and viewport at the top of a rebuilt flow.
func (m *model) resetView() {
	m.cursor = cell{}
	m.mode = modeNormal
	m.viewport.SetYOffset(0)
	m.markViewportDirty()
}

func (m *model) startRender(job render.Job, ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	return m.jobs.Start(jobKindRender, renderPageJob(m.sess.Render(job)))
}

// afterScroll reports the visible window to the session and starts any
// look-ahead render it asks for.
func (m *model) afterScroll() tea.Cmd {
	if m.sess.Document() == nil {
		return nil
	}
	job, ok := m.sess.Scroll(tracker.Geometry{Top: m.viewport.YOffset, Height: m.viewport.Height})
	return m.startRender(job, ok)
}

func (m *model) toggleHighlightMode() {
	if m.mode == modeHighlight {
		m.mode = modeNormal
		m.infoMessage = "Highlight mode off."
	} else {
		m.mode = modeHighlight
		m.anchor = m.cursor
		m.infoMessage = "Highlight mode: move to extend, then f, e, or t."
	}
	m.markViewportDirty()
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if m.viewportDirty {
		m.refreshViewport()
	}
}

func (m *model) refreshViewport() {
	m.viewportDirty = false
	if m.sess.Document() == nil {
		m.lineCount = 0
		m.viewport.SetContent("")
		return
	}
	prevYOffset := m.viewport.YOffset
	m.lineCount = m.sess.Flow().ContentHeight()
	if m.cursor.row >= m.lineCount {
		m.cursor.row = m.lineCount - 1
	}
	if m.cursor.row < 0 {
		m.cursor.row = 0
	}
	m.viewport.SetContent(strings.Join(m.flowLines(), "\n"))
	m.viewport.SetYOffset(prevYOffset)
}

func (m *model) ensureCursorVisible() {
	if m.lineCount == 0 {
		return
	}
	line := m.cursor.row
	if line < m.viewport.YOffset {
		m.viewport.SetYOffset(line)
		return
	}
	lowerBound := m.viewport.YOffset + m.viewport.Height - 1
	if line > lowerBound {
		target := line - m.viewport.Height + 1
		if target < 0 {
			target = 0
		}
		m.viewport.SetYOffset(target)
	}
}

func (m *model) moveCursor(dRow, dCol int) {
	if m.lineCount == 0 {
		return
	}
	m.cursor.row = clamp(m.cursor.row+dRow, 0, m.lineCount-1)
	m.cursor.col = clamp(m.cursor.col+dCol, 0, m.viewport.Width-1)
	m.markViewportDirty()
	m.refreshViewportIfDirty()
	m.ensureCursorVisible()
}

// jumpWord moves to the next word start on the cursor's row, or onto the
// neighbouring row when the row has none left.
func (m *model) jumpWord(dir int) {
	if line, ok := m.lineAt(m.cursor.row); ok {
		if off, found := nextWordStart([]rune(line.Text), m.cursor.col-line.Col, dir); found {
			m.moveCursor(0, line.Col+off-m.cursor.col)
			return
		}
	}
	m.moveCursor(dir, 0)
	if line, ok := m.lineAt(m.cursor.row); ok {
		m.moveCursor(0, line.Col-m.cursor.col)
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nextMode(mode llm.Mode) llm.Mode {
	switch mode {
	case llm.ModeFlashcard:
		return llm.ModeExplain
	case llm.ModeExplain:
		return llm.ModeLanguage
	default:
		return llm.ModeFlashcard
	}
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	plainStyle         = lipgloss.NewStyle()

	heroAccentColor        = lipgloss.Color("#ff8c00")
	heroSecondaryTextColor = lipgloss.Color("#ffb347")

	heroTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	taglineStyle       = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	helpBoxStyle       = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	cardsBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	promptBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Padding(0, 1)
	currentLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	selectionLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#bde0fe"))
	highlightStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166"))
	pageRuleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#56526e"))
)
