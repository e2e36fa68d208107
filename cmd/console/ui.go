package main

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/novel-script/internal/logger"
	"github.com/jwebster45206/novel-script/pkg/playback"
	"github.com/jwebster45206/novel-script/pkg/script"
	"github.com/muesli/reflow/wordwrap"
)

// frameInterval is how often the reveal clock is sampled.
const frameInterval = 30 * time.Millisecond

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config *ConsoleConfig
	client *http.Client
	logger *slog.Logger
	player *playback.Player
	stage  *stage

	dialogue viewport.Model
	width    int
	height   int
	err      error
	status   string

	// Script selection state
	showScriptModal bool
	loadingScripts  bool
	scripts         []scriptInfo
	selectedScript  int

	// Set when a script is given on the command line
	startName  string
	startText  string
	startLocal bool

	scriptName     string
	selectedChoice int
	lastTick       time.Time

	// Quit confirmation state
	showQuitModal bool
}

type scriptsLoadedMsg struct {
	scripts []scriptInfo
	err     error
}

type scriptLoadedMsg struct {
	name string
	text string
	err  error
}

type revealTickMsg time.Time

var (
	stagePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Align(lipgloss.Center, lipgloss.Center)

	dialoguePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	moreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	characterStyle = lipgloss.NewStyle().
			Border(lipgloss.HiddenBorder()).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, player *playback.Player, st *stage, logger *slog.Logger) ConsoleUI {
	return ConsoleUI{
		config:          cfg,
		client:          client,
		logger:          logger,
		player:          player,
		stage:           st,
		dialogue:        viewport.New(50, 4),
		showScriptModal: true,
		loadingScripts:  true,
	}
}

// WithScript starts playback of text instead of offering the library.
func (m ConsoleUI) WithScript(name, text string) ConsoleUI {
	m.startName = name
	m.startText = text
	m.startLocal = true
	m.loadingScripts = false
	return m
}

// WithScriptName starts playback of a library script fetched from the API.
func (m ConsoleUI) WithScriptName(name string) ConsoleUI {
	m.startName = name
	m.loadingScripts = false
	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	switch {
	case m.startLocal:
		name, text := m.startName, m.startText
		return func() tea.Msg { return scriptLoadedMsg{name: name, text: text} }
	case m.startName != "":
		return m.fetchScript(m.startName)
	default:
		return m.loadScripts()
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.dialogue.Width = max(m.width-8, 10)
		m.dialogue.Height = 4
	}

	switch msg := msg.(type) {
	case scriptsLoadedMsg:
		m.loadingScripts = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.scripts = msg.scripts
		return m, nil

	case scriptLoadedMsg:
		return m.startPlayback(msg)

	case revealTickMsg:
		// The reveal clock stops while the quit modal is open.
		if m.showQuitModal {
			return m, nil
		}
		return m.onTick(time.Time(msg))
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showScriptModal {
		return m.updateScriptModal(msg)
	}
	return m.updatePlayback(msg)
}

func (m ConsoleUI) startPlayback(msg scriptLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}

	s, err := script.Parse(msg.text)
	if err != nil {
		m.err = err
		return m, nil
	}

	m.scriptName = msg.name
	m.selectedChoice = 0
	m.showScriptModal = false
	m.err = nil
	m.lastTick = time.Time{}

	if err := m.player.Load(s); err != nil {
		logger.WithError(m.logger, err).Error("Failed to load script", "name", msg.name)
		m.err = err
		return m, nil
	}
	logger.WithSession(m.logger, m.player.SessionID()).Info("Playing script", "name", msg.name)
	return m, revealTick()
}

func (m ConsoleUI) onTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.lastTick.IsZero() {
		m.lastTick = now
	}
	m.player.Tick(now.Sub(m.lastTick))
	m.lastTick = now

	if !playing(m.player.State()) {
		return m, nil
	}
	return m, revealTick()
}

// playing reports whether the reveal clock should keep running.
func playing(s playback.State) bool {
	switch s {
	case playback.StateFinished, playback.StateAborted, playback.StateIdle:
		return false
	}
	return true
}

func (m ConsoleUI) updatePlayback(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		// A click never picks a choice; those need the keyboard.
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if m.err == nil {
				if err := m.player.Advance(); err != nil {
					m.err = err
				}
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.dialogue, cmd = m.dialogue.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			m.showQuitModal = true
			return m, nil
		}

		// The end banner and error screen close on any key.
		if m.err != nil || m.player.State() == playback.StateFinished {
			return m, tea.Quit
		}

		switch msg.String() {
		case "enter", " ":
			return m.advance()
		case "up", "k":
			if m.selectedChoice > 0 {
				m.selectedChoice--
			}
		case "down", "j":
			if m.selectedChoice < len(m.stage.visibleChoices())-1 {
				m.selectedChoice++
			}
		case "y":
			if err := clipboard.WriteAll(m.player.VisibleText()); err != nil {
				m.status = "Copy failed: " + err.Error()
			} else {
				m.status = "Copied line to clipboard"
			}
		}
	}
	return m, nil
}

// advance handles Enter and Space: it picks the highlighted choice when one
// is pending.
func (m ConsoleUI) advance() (tea.Model, tea.Cmd) {
	m.status = ""

	if m.player.State() == playback.StateAwaitingChoice {
		choices := m.stage.visibleChoices()
		if len(choices) == 0 {
			return m, nil
		}
		name := choices[min(m.selectedChoice, len(choices)-1)].name
		if err := m.player.SelectChoice(name); err != nil {
			m.err = err
		}
		m.selectedChoice = 0
		return m, nil
	}

	if err := m.player.Advance(); err != nil {
		m.err = err
	}
	return m, nil
}

func (m ConsoleUI) updateScriptModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		if m.loadingScripts {
			return m, tea.Quit
		}
		m.showQuitModal = true
		return m, nil
	}
	if m.loadingScripts || m.err != nil {
		return m, nil
	}

	switch key.Type {
	case tea.KeyUp:
		if m.selectedScript > 0 {
			m.selectedScript--
		}
	case tea.KeyDown:
		if m.selectedScript < len(m.scripts)-1 {
			m.selectedScript++
		}
	case tea.KeyEnter:
		if len(m.scripts) > 0 {
			m.loadingScripts = true
			return m, m.fetchScript(m.scripts[m.selectedScript].Name)
		}
	}
	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
		return m, tea.Quit
	}
	switch key.String() {
	case "y", "Y":
		return m, tea.Quit
	case "n", "N":
		m.showQuitModal = false
		if !m.showScriptModal && playing(m.player.State()) {
			m.lastTick = time.Time{}
			return m, revealTick()
		}
	}
	return m, nil
}

func (m ConsoleUI) loadScripts() tea.Cmd {
	return func() tea.Msg {
		scripts, err := listScripts(m.client, m.config.APIBaseURL)
		return scriptsLoadedMsg{scripts, err}
	}
}

func (m ConsoleUI) fetchScript(name string) tea.Cmd {
	return func() tea.Msg {
		text, err := getScript(m.client, m.config.APIBaseURL, name)
		return scriptLoadedMsg{name: name, text: text, err: err}
	}
}

func revealTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return revealTickMsg(t)
	})
}

func (m ConsoleUI) View() string {
	if m.width == 0 || m.height == 0 {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showScriptModal {
		return m.renderScriptModal()
	}

	dialogue := m.renderDialogue()
	footer := m.renderFooter()
	stageHeight := max(m.height-lipgloss.Height(dialogue)-lipgloss.Height(footer)-2, 3)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderStage(stageHeight),
		dialogue,
		footer,
	)
}

func (m ConsoleUI) renderStage(height int) string {
	style := stagePanelStyle.Width(m.width - 2).Height(height)
	bg := m.stage.background
	if bg.color != nil {
		style = style.Background(toLipgloss(*bg.color))
	}

	var parts []string
	if bg.sprite != nil {
		if bg.sprite.art != "" {
			parts = append(parts, bg.sprite.art)
		} else {
			parts = append(parts, promptStyle.Render("["+bg.sprite.name+"]"))
		}
	}

	var characters []string
	for _, c := range m.stage.visibleCharacters() {
		characters = append(characters, renderEntity(c))
	}
	if len(characters) > 0 {
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Bottom, characters...))
	}

	if choices := m.stage.visibleChoices(); len(choices) > 0 {
		parts = append(parts, m.renderChoices(choices))
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
}

func renderEntity(e *entity) string {
	style := characterStyle
	if e.color != nil {
		style = style.Foreground(toLipgloss(*e.color))
	}
	content := e.name
	if e.sprite != nil {
		content = e.sprite.name
		if e.sprite.art != "" {
			content = e.sprite.art
		}
	}
	return style.Render(content)
}

func (m ConsoleUI) renderChoices(choices []*entity) string {
	var b strings.Builder
	selected := min(m.selectedChoice, len(choices)-1)
	for i, c := range choices {
		if i == selected {
			b.WriteString(modalSelectedItemStyle.Render("▶ " + c.label()))
		} else {
			b.WriteString(modalItemStyle.Render("  " + c.label()))
		}
		if i < len(choices)-1 {
			b.WriteString("\n")
		}
	}
	return modalStyle.Render(b.String())
}

func (m ConsoleUI) renderDialogue() string {
	width := max(m.width-8, 10)

	var content strings.Builder
	if m.stage.speaker != "" {
		content.WriteString(speakerStyle.Render(m.stage.speaker) + "\n")
	}
	content.WriteString(wordwrap.String(m.stage.body.String(), width))
	if m.stage.more {
		content.WriteString(" " + moreStyle.Render("▼"))
	}

	vp := m.dialogue
	vp.SetContent(content.String())
	vp.GotoBottom()
	return dialoguePanelStyle.Width(m.width - 2).Render(vp.View())
}

func (m ConsoleUI) renderFooter() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("Error: "+describeError(m.err)) + "\n" +
			promptStyle.Render("Press any key to exit")
	case m.player.State() == playback.StateFinished:
		return titleStyle.Render("THE END") + "  " + promptStyle.Render("Press any key to exit")
	}

	help := "Enter/Space/Click: next • y: copy line • Esc: quit"
	if m.player.State() == playback.StateAwaitingChoice {
		help = "↑/↓: choose • Enter: select • Esc: quit"
	}
	line := promptStyle.Render(fmt.Sprintf("%s  %s  session %s", m.scriptName, help, m.player.SessionID().String()[:8]))
	if m.status != "" {
		line = loadingStyle.Render(m.status) + "  " + line
	}
	return line
}

// describeError says where in the script playback stopped, when known.
func describeError(err error) string {
	var se *playback.ScriptError
	if errors.As(err, &se) {
		return fmt.Sprintf("subscene %q, page %d: %v", se.Label, se.Page, se.Err)
	}
	return err.Error()
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to stop reading?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderScriptModal() string {
	var content strings.Builder

	switch {
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(describeError(m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loadingScripts:
		content.WriteString(modalTitleStyle.Render("Loading..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch the script library..."))
	case len(m.scripts) == 0:
		content.WriteString(modalTitleStyle.Render("No Scripts"))
		content.WriteString("\n\n")
		content.WriteString("The library is empty. Press Ctrl+C to exit")
	default:
		content.WriteString(modalTitleStyle.Render("Select a Script"))
		content.WriteString("\n\n")
		for i, s := range m.scripts {
			name := s.Name
			if s.Published {
				name += " *"
			}
			if i == m.selectedScript {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + name))
			} else {
				content.WriteString(modalItemStyle.Render("  " + name))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func toLipgloss(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
