package tui

import "time"

type stage int

const (
	stageOpen stage = iota
	stageLoading
	stageReading
	stagePrompt
	stageConfirm
)

type interactionMode int

const (
	modeNormal interactionMode = iota
	modeHighlight
)

type focusPane int

const (
	focusPages focusPane = iota
	focusCards
)

type promptKind int

const (
	promptPage promptKind = iota
	promptOpen
	promptAPIKey
	promptModel
	promptLanguage
	promptExport
)

const heroTagline = "Read closely, keep what matters."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	cardPanelWidth            = 42
	openTimeout               = 2 * time.Minute
	generateTimeout           = 2 * time.Minute
	ankiTimeout               = 30 * time.Second
)

// cell addresses one character of the page flow.
type cell struct {
	row int
	col int
}

func (c cell) before(o cell) bool {
	return c.row < o.row || (c.row == o.row && c.col < o.col)
}
