package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/adventure-engine/internal/play"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

const PlaceHolderText = "What do you do?"

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctx          context.Context
	session      *play.Session
	transcript   []entry
	gameViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	busy         bool

	showQuitModal bool
}

// entry is one exchange in the transcript. The intro has no input.
type entry struct {
	input string
	text  string
	err   error
}

type replyMsg struct {
	input string
	reply play.Reply
	err   error
}

var (
	gamePanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narrationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

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
)

// NewConsoleUI builds the model with the scenario intro already shown.
func NewConsoleUI(ctx context.Context, session *play.Session) (ConsoleUI, error) {
	intro, err := session.Intro()
	if err != nil {
		return ConsoleUI{}, err
	}

	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render("> ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	gameVp := viewport.New(50, 20)
	gameVp.MouseWheelEnabled = true

	return ConsoleUI{
		ctx:          ctx,
		session:      session,
		transcript:   []entry{{text: intro}},
		gameViewport: gameVp,
		metaViewport: viewport.New(20, 20),
		textarea:     ta,
	}, nil
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.gameViewport, vpCmd = m.gameViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		gameWidth, metaWidth := m.panelWidths()
		m.gameViewport.Width = gameWidth - 2
		m.gameViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(gameWidth - 4)

		m.ready = true
		m.writeGameContent()
		m.metaViewport.SetContent(writeMetadata(m.session))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			m.busy = true
			return m, m.submit(input)
		}

	case replyMsg:
		m.busy = false
		m.transcript = append(m.transcript, entry{input: msg.input, text: msg.reply.Text, err: msg.err})
		m.writeGameContent()
		m.metaViewport.SetContent(writeMetadata(m.session))
		if msg.reply.Quit {
			return m, tea.Quit
		}
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.gameViewport, vpCmd = m.gameViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

// submit runs the input through the session off the UI goroutine.
func (m ConsoleUI) submit(input string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.session.Handle(m.ctx, input)
		return replyMsg{input: input, reply: reply, err: err}
	}
}

func (m ConsoleUI) panelWidths() (int, int) {
	gameWidth := int(float64(m.width)*0.75) - 4
	return gameWidth, m.width - gameWidth - 6
}

// writeGameContent rebuilds the transcript for the current viewport width.
func (m *ConsoleUI) writeGameContent() {
	width := m.gameViewport.Width - 6
	if width < 10 {
		width = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("ADVENTURE ENGINE") + "\n\n")
	content.WriteString("Type a command and press Enter. Try \"help\".\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, e := range m.transcript {
		if e.input != "" {
			content.WriteString(userStyle.Render("> ") + wordwrap.String(e.input, width-2) + "\n\n")
		}
		if e.err != nil {
			content.WriteString(errorStyle.Render(wordwrap.String("Error: "+e.err.Error(), width)) + "\n\n")
			continue
		}
		if e.text != "" {
			content.WriteString(narrationStyle.Render(wordwrap.String(e.text, width)) + "\n\n")
		}
	}

	m.gameViewport.SetContent(content.String())
	m.gameViewport.GotoBottom()
}

func writeMetadata(s *play.Session) string {
	g := s.Game()
	sc := g.Scenario()
	gs := g.State()

	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Game ID:\n")
	content.WriteString(s.ID.String()[:8] + "...\n\n")

	content.WriteString("Scenario:\n")
	content.WriteString(sc.Name + "\n\n")

	content.WriteString("Location:\n")
	if loc, ok := sc.Location(g.Location()); ok && loc.Name != "" {
		content.WriteString(loc.Name + "\n\n")
	} else {
		content.WriteString(fmt.Sprintf("#%d\n\n", g.Location()))
	}

	content.WriteString("Carrying:\n")
	held := gs.Inventory.Held()
	if len(held) == 0 {
		content.WriteString("Nothing\n")
	}
	for _, k := range held {
		name, ok := sc.ItemName(k)
		if !ok {
			name = fmt.Sprintf("item %d", k)
		}
		content.WriteString("• " + name + "\n")
	}

	content.WriteString("\nWorld:\n")
	gs.WorldState.Each(func(k state.StateKey, v bool) {
		content.WriteString(fmt.Sprintf("• %d: %v\n", k, v))
	})

	content.WriteString("\nKeys:\n")
	content.WriteString("• Enter: Act\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Unsaved progress will be lost. Type \"save\" first to keep it.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	gameWidth, metaWidth := m.panelWidths()

	gamePanel := gamePanelStyle.Width(gameWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.gameViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(gameWidth-4, 0))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, gamePanel, metaPanel)
}
