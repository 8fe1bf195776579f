package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/novaterra/npc-engine/pkg/chat"
	"github.com/novaterra/npc-engine/pkg/npc"
)

const (
	FallbackSpeaker = "NPC"
	PlaceHolderText = "Say something to the character..."
)

// transcriptLine is a single rendered line of the conversation log.
// Pending player messages live here before their exchange is complete
// and joins the history pairs sent to the API.
type transcriptLine struct {
	role string // "user", "character", "notice"
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	character    *npc.CharacterProfile
	history      [][]string // completed [player, character] pairs
	transcript   []transcriptLine
	lastReply    string
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Character selection state
	showCharacterModal bool
	characterFiles     []string
	currentFile        string
	selectedCharacter  int
	loadingCharacters  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type chatResponseMsg struct {
	playerMessage string
	response      *chat.ChatResponse
	err           error
}

type charactersLoadedMsg struct {
	listing *CharacterListing
	err     error
}

type characterLoadedMsg struct {
	character *npc.CharacterProfile
	filename  string
	err       error
}

type historyClearedMsg struct {
	response *chat.ClearHistoryResponse
	err      error
}

type replyCopiedMsg struct {
	err error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
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

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	characterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
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

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:             cfg,
		client:             client,
		textarea:           ta,
		chatViewport:       chatVp,
		metaViewport:       metaVp,
		ready:              false,
		showCharacterModal: true,
		loadingCharacters:  true,
		selectedCharacter:  0,
	}
}

func (m ConsoleUI) speakerName() string {
	if m.character != nil && m.character.Name != "" {
		return m.character.Name
	}
	return FallbackSpeaker
}

func (m *ConsoleUI) writeMetadata() {
	var content strings.Builder
	content.WriteString(titleStyle.Render("CHARACTER") + "\n\n")

	if m.character != nil {
		content.WriteString("Name:\n")
		content.WriteString(m.character.Name + "\n\n")

		if m.character.Age != "" {
			content.WriteString("Age:\n")
			content.WriteString(string(m.character.Age) + "\n\n")
		}

		if len(m.character.Personalities) > 0 {
			content.WriteString("Personality:\n")
			for _, trait := range m.character.Personalities {
				content.WriteString("• " + trait + "\n")
			}
			content.WriteString("\n")
		}
	}

	content.WriteString("Exchanges:\n")
	content.WriteString(fmt.Sprintf("%d total\n\n", len(m.history)))

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+Y: Copy reply\n")
	content.WriteString("• Ctrl+L: Clear history\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /who: Character sheet\n")

	m.metaViewport.SetContent(content.String())
}

// writeChatContent rebuilds the chat log for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("NPC ENGINE") + "\n\n")
	content.WriteString(fmt.Sprintf("You are talking to %s.\n\n", m.speakerName()))
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, line := range m.transcript {
		switch line.role {
		case "character":
			content.WriteString(formatCharacterResponse(line.text, m.speakerName(), chatWidth) + "\n\n")
		case "user":
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(line.text, chatWidth-6) + "\n\n")
		case "notice":
			content.WriteString(loadingStyle.Render(wordwrap.String(line.text, chatWidth)) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showCharacterModal {
		return m.loadCharacterList()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle character modal first
	if m.showCharacterModal {
		return m.updateCharacterModal(msg)
	}

	// Handle quit modal second
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// Pass mouse events to all components; each ignores events
		// outside its bounds.
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		// Window was resized - reformat all content for the new width
		m.writeChatContent()
		m.writeMetadata()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil

		case tea.KeyCtrlY:
			if m.lastReply == "" {
				return m, nil
			}
			return m, copyReply(m.lastReply)

		case tea.KeyCtrlL:
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.progressTick = 0
			m.writeChatContent()
			return m, tea.Batch(m.clearServerHistory(), progressTick())

		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0

			m.transcript = append(m.transcript, transcriptLine{role: "user", text: input})
			m.writeChatContent()

			return m, tea.Batch(m.sendChatMessage(input), progressTick())
		}

	case chatResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeChatContent()
			currentContent := m.chatViewport.View()
			errorMsg := errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
			m.chatViewport.SetContent(currentContent + errorMsg)
		} else {
			m.lastReply = msg.response.Response
			m.history = append(m.history, []string{msg.playerMessage, msg.response.Response})
			m.transcript = append(m.transcript, transcriptLine{role: "character", text: msg.response.Response})
			m.writeChatContent()
			m.writeMetadata()
		}
		m.chatViewport.GotoBottom()

	case historyClearedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.transcript = append(m.transcript, transcriptLine{role: "notice", text: "Clear history failed: " + msg.err.Error()})
		} else {
			if msg.response.Success {
				m.history = nil
				m.transcript = nil
				m.lastReply = ""
			}
			m.transcript = append(m.transcript, transcriptLine{role: "notice", text: msg.response.Message})
		}
		m.writeChatContent()
		m.writeMetadata()

	case replyCopiedMsg:
		if msg.err != nil {
			m.transcript = append(m.transcript, transcriptLine{role: "notice", text: "Copy failed: " + msg.err.Error()})
		} else {
			m.transcript = append(m.transcript, transcriptLine{role: "notice", text: "Copied last reply to clipboard."})
		}
		m.writeChatContent()

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	// Update components for non-mouse events
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func formatCharacterResponse(response, speaker string, width int) string {
	prefix := speaker + ": "
	wrapWidth := width - len(prefix)
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	wrapped := wordwrap.String(response, wrapWidth)
	return speakerStyle.Render(prefix) + characterStyle.Render(wrapped)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /who - Show the character sheet
• Ctrl+Y - Copy the last reply
• Ctrl+L - Clear conversation history
• Ctrl+C - Quit

How to play:
• Type a message and press Enter
• The character replies in their own voice
• The character remembers earlier conversations
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()

	case "/who":
		var sheet strings.Builder
		sheet.WriteString(titleStyle.Render("Character:") + "\n")
		if m.character == nil {
			sheet.WriteString("No character loaded.\n")
		} else {
			sheet.WriteString(fmt.Sprintf("• Name: %s\n", m.character.Name))
			if m.character.Age != "" {
				sheet.WriteString(fmt.Sprintf("• Age: %s\n", m.character.Age))
			}
			if m.character.Gender != "" {
				sheet.WriteString(fmt.Sprintf("• Gender: %s\n", m.character.Gender))
			}
			if len(m.character.Personalities) > 0 {
				sheet.WriteString(fmt.Sprintf("• Personality: %s\n", strings.Join(m.character.Personalities, ", ")))
			}
			if len(m.character.Skills) > 0 {
				sheet.WriteString(fmt.Sprintf("• Skills: %s\n", strings.Join(m.character.Skills, ", ")))
			}
		}
		sheet.WriteString("\n")

		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + sheet.String())
		m.chatViewport.GotoBottom()
	}

	m.textarea.Reset()
	return m, nil
}

func (m ConsoleUI) sendChatMessage(message string) tea.Cmd {
	history := m.history
	return func() tea.Msg {
		resp, err := sendChat(m.client, m.config.APIBaseURL, message, history)
		return chatResponseMsg{playerMessage: message, response: resp, err: err}
	}
}

func (m ConsoleUI) clearServerHistory() tea.Cmd {
	return func() tea.Msg {
		resp, err := clearHistory(m.client, m.config.APIBaseURL)
		return historyClearedMsg{response: resp, err: err}
	}
}

func copyReply(reply string) tea.Cmd {
	return func() tea.Msg {
		return replyCopiedMsg{err: clipboard.WriteAll(reply)}
	}
}

func (m ConsoleUI) loadCharacterList() tea.Cmd {
	return func() tea.Msg {
		listing, err := listCharacters(m.client, m.config.APIBaseURL)
		return charactersLoadedMsg{listing: listing, err: err}
	}
}

func (m ConsoleUI) loadSelectedCharacter(filename string) tea.Cmd {
	return func() tea.Msg {
		character, err := loadCharacter(m.client, m.config.APIBaseURL, filename)
		return characterLoadedMsg{character: character, filename: filename, err: err}
	}
}

func (m ConsoleUI) updateCharacterModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case charactersLoadedMsg:
		m.loadingCharacters = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.characterFiles = msg.listing.Files
			m.currentFile = msg.listing.Current
			for i, f := range m.characterFiles {
				if f == m.currentFile {
					m.selectedCharacter = i
					break
				}
			}
		}

	case characterLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.character = msg.character
			m.currentFile = msg.filename
			m.showCharacterModal = false
			if m.width > 0 && m.height > 0 {
				chatWidth := int(float64(m.width)*0.75) - 4
				metaWidth := m.width - chatWidth - 6
				m.chatViewport.Width = chatWidth - 2
				m.chatViewport.Height = m.height - 7
				m.metaViewport.Width = metaWidth - 2
				m.metaViewport.Height = m.height - 4
				m.textarea.SetWidth(chatWidth - 4)
			}
			m.writeChatContent()
			m.writeMetadata()
			m.textarea.Focus()
			m.ready = true
		}
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingCharacters {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				m.showQuitModal = true
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedCharacter > 0 {
				m.selectedCharacter--
			}
		case tea.KeyDown:
			if m.selectedCharacter < len(m.characterFiles)-1 {
				m.selectedCharacter++
			}
		case tea.KeyEnter:
			if len(m.characterFiles) > 0 {
				m.loading = true
				return m, m.loadSelectedCharacter(m.characterFiles[m.selectedCharacter])
			}
		}
	}

	return m, nil
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
				if m.showCharacterModal {
					return m, nil
				}
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
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the conversation?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderCharacterModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingCharacters {
		content.WriteString(modalTitleStyle.Render("Loading Characters..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch available characters..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load characters: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Loading Character..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Waking the character up..."))
	} else if len(m.characterFiles) == 0 {
		content.WriteString(modalTitleStyle.Render("No Characters"))
		content.WriteString("\n\n")
		content.WriteString("No character files were found on the server.")
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else {
		content.WriteString(modalTitleStyle.Render("Select a Character"))
		content.WriteString("\n\n")

		for i, file := range m.characterFiles {
			label := file
			if file == m.currentFile {
				label += " (active)"
			}
			if i == m.selectedCharacter {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", label)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", label)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showCharacterModal {
		return m.renderCharacterModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message.
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
