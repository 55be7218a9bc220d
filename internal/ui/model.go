package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"prgrip/internal/config"
	"prgrip/internal/domain"
	"prgrip/internal/eventbus"
	"prgrip/internal/lifecycle"
	"prgrip/internal/log"
	"prgrip/internal/selection"
	"prgrip/internal/source"
	"prgrip/internal/ui/views"
)

// readyMarker is printed once the UI has a size, for the e2e driver
const readyMarker = "__READY__"

// Options configures a Model
type Options struct {
	Bus    eventbus.EventBus
	Config *config.Config
	Source source.Source
	Scope  *lifecycle.Scope
	// ReadyMarker appends readyMarker to the footer
	ReadyMarker bool
}

// Model is the root bubbletea model: a pull request list and a details
// panel connected through the list's selection holder.
type Model struct {
	bus    eventbus.EventBus
	config *config.Config
	src    source.Source
	scope  *lifecycle.Scope

	list    *ListPanel
	details *DetailsPanel
	styles  *views.Styles

	keys      keyMap
	help      help.Model
	spinner   spinner.Model
	search    textinput.Model
	searching bool
	showHelp  bool

	query     domain.Query
	loading   bool
	status    string
	statusErr bool

	width       int
	height      int
	readyMarker bool
}

// NewModel creates the UI model. The model's panels live in a child of
// opts.Scope and are disposed by Close or when opts.Scope ends.
func NewModel(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	styles := views.NewStyles()
	scope := lifecycle.NewChild(opts.Scope, "ui")

	list := NewListPanel(scope, styles, cfg.UISettings.ShowLabels)
	details := NewDetailsPanel(list.Selection(), list.Scope(), styles, cfg.UISettings.MarkdownStyle)

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "title, author, branch, label"
	search.CharLimit = 120

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styles.StatusLoading

	m := &Model{
		bus:         opts.Bus,
		config:      cfg,
		src:         opts.Source,
		scope:       scope,
		list:        list,
		details:     details,
		styles:      styles,
		keys:        newKeyMap(),
		help:        help.New(),
		spinner:     sp,
		search:      search,
		query:       cfg.Query(),
		loading:     true,
		readyMarker: opts.ReadyMarker,
	}

	if cfg.UISettings.DetailsOpen {
		if err := m.details.Open(); err != nil {
			log.ErrorErr(log.CatUI, "failed to open details panel", err)
		}
	}
	return m
}

// Selection exposes the list panel's selection holder
func (m *Model) Selection() *selection.ListModel {
	return m.list.Selection()
}

// Query returns the query the list currently reflects
func (m *Model) Query() domain.Query {
	return m.query
}

// Init starts the spinner and requests the first load
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh(false))
}

// Close disposes the model's scope, dropping every panel registration
func (m *Model) Close() {
	m.details.Close()
	m.scope.Dispose()
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		return m, m.handleEvent(msg.Event)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case diffMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("Diff for #%d failed: %v", msg.number, msg.err))
			return m, nil
		}
		if strings.TrimSpace(msg.content) == "" {
			m.setStatus(fmt.Sprintf("#%d has no diff", msg.number))
			return m, nil
		}
		return m, showInPager(msg.content)

	case pagerDoneMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("Pager failed: %v", msg.err))
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		case "ctrl+c":
			m.Close()
			return m, tea.Quit
		}
		return m, nil
	}

	if m.searching {
		switch msg.Type {
		case tea.KeyEnter:
			m.searching = false
			m.search.Blur()
			m.query.Search = strings.TrimSpace(m.search.Value())
			m.list.SetSearch(m.query.Search)
			return m, m.refresh(false)
		case tea.KeyEsc:
			m.searching = false
			m.search.Blur()
			m.search.SetValue(m.query.Search)
			return m, nil
		case tea.KeyCtrlC:
			m.Close()
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.list.Move(-1)
	case key.Matches(msg, m.keys.Down):
		m.list.Move(1)
	case key.Matches(msg, m.keys.Top):
		m.list.Top()
	case key.Matches(msg, m.keys.Bottom):
		m.list.Bottom()
	case key.Matches(msg, m.keys.PageUp):
		m.list.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.list.PageDown()
	case msg.String() == "J":
		m.details.Scroll(1)
	case msg.String() == "K":
		m.details.Scroll(-1)
	case key.Matches(msg, m.keys.Details):
		m.toggleDetails()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh(true)
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.query.Search)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.State):
		m.query.State = m.query.State.Next()
		if m.bus != nil {
			m.bus.Publish(eventbus.ConfigChangedEvent{State: m.query.State})
		}
		return m, m.refresh(false)
	case key.Matches(msg, m.keys.Diff):
		return m, m.openDiff()
	case key.Matches(msg, m.keys.Open):
		if pr := selection.SelectedPullRequest(m.list.Selection()); pr != nil && pr.URL != "" {
			m.setStatus(pr.URL)
		}
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	}
	return m, nil
}

func (m *Model) handleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case eventbus.PullRequestsLoadedEvent:
		if e.Query != m.query {
			log.Debug(log.CatUI, "dropping stale results", "state", e.Query.State, "search", e.Query.Search)
			return nil
		}
		m.loading = false
		m.list.SetItems(e.PullRequests)
		m.setStatus(fmt.Sprintf("%d pull requests", len(e.PullRequests)))
	case eventbus.LoadFailedEvent:
		if e.Query != m.query {
			return nil
		}
		m.loading = false
		m.setError(fmt.Sprintf("Load failed: %v", e.Err))
	case eventbus.ErrorEvent:
		m.setError(e.Message)
	}
	return nil
}

// refresh is the only place that sets loading.
func (m *Model) refresh(force bool) tea.Cmd {
	m.loading = true
	q := m.query
	bus := m.bus
	return func() tea.Msg {
		if bus != nil {
			bus.Publish(eventbus.RefreshRequestedEvent{Query: q, Force: force})
		}
		return nil
	}
}

func (m *Model) toggleDetails() {
	if m.details.IsOpen() {
		m.details.Close()
	} else if err := m.details.Open(); err != nil {
		m.setError(err.Error())
	}
	m.layout()
}

func (m *Model) openDiff() tea.Cmd {
	pr := selection.SelectedPullRequest(m.list.Selection())
	if pr == nil {
		m.setStatus("Nothing selected")
		return nil
	}
	if m.src == nil {
		m.setError("No pull request source")
		return nil
	}
	m.setStatus(fmt.Sprintf("Loading diff for #%d…", pr.Number))
	return fetchDiff(m.src, m.query.Repo, pr.Number)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

// layout splits the screen between the panels
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// title, status line and help line, plus panel borders
	bodyHeight := m.height - 3 - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	_, detailsWidth := m.panelWidths()
	m.list.SetHeight(bodyHeight - 1)
	if m.details.IsOpen() {
		m.details.SetSize(detailsWidth, bodyHeight)
	}
}

func (m *Model) panelWidths() (int, int) {
	// 2 border + 2 padding cells per panel
	inner := m.width - 2
	if !m.details.IsOpen() {
		return inner - 4, 0
	}
	listWidth := inner*45/100 - 4
	detailsWidth := inner - inner*45/100 - 4
	if listWidth < 10 {
		listWidth = 10
	}
	if detailsWidth < 10 {
		detailsWidth = 10
	}
	return listWidth, detailsWidth
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading…"
	}

	if m.showHelp {
		return views.RenderPopup(renderHelpContent(m.keys), m.width, m.height, m.styles.Popup)
	}

	var b strings.Builder
	b.WriteString(m.renderTitle())
	b.WriteString("\n")

	listWidth, detailsWidth := m.panelWidths()
	bodyHeight := m.height - 3 - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	listBox := m.styles.Panel.Width(listWidth + 2).Height(bodyHeight).Render(m.list.View(listWidth))
	if m.details.IsOpen() {
		detailsBox := m.styles.Panel.Width(detailsWidth + 2).Height(bodyHeight).Render(m.details.View())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, listBox, detailsBox))
	} else {
		b.WriteString(listBox)
	}
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	if m.readyMarker {
		b.WriteString(" " + m.styles.Dim.Render(readyMarker))
	}
	return m.styles.Main.Render(b.String())
}

func (m *Model) renderTitle() string {
	logo := m.styles.Title.Render("prgrip")

	var right []string
	if m.loading {
		right = append(right, m.spinner.View()+" Loading")
	}
	repo := m.query.Repo
	if repo == "" {
		repo = "current repo"
	}
	right = append(right, m.styles.Dim.Render(fmt.Sprintf("%s · %s", repo, m.query.State)))
	if m.query.Search != "" {
		right = append(right, m.styles.Filter.Render(fmt.Sprintf("[Search: %s]", m.query.Search)))
	}
	rightContent := strings.Join(right, "  ")

	padding := m.width - 2 - lipgloss.Width(logo) - lipgloss.Width(rightContent)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + rightContent
}

func (m *Model) renderStatus() string {
	if m.searching {
		return m.search.View()
	}
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return m.styles.StatusError.Render(m.status)
	}
	return m.styles.Status.Render(m.status)
}
