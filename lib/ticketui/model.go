// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartsupport/smartsupport/lib/apiclient"
	"github.com/smartsupport/smartsupport/lib/auth"
	"github.com/smartsupport/smartsupport/lib/chatbot"
	"github.com/smartsupport/smartsupport/lib/clock"
	"github.com/smartsupport/smartsupport/lib/schema"
	"github.com/smartsupport/smartsupport/lib/session"
	"github.com/smartsupport/smartsupport/lib/ticketdetail"
	"github.com/smartsupport/smartsupport/lib/ticketlist"
	"github.com/smartsupport/smartsupport/lib/tui"
)

// Backend is every backend operation the client uses.
// *apiclient.Client implements it.
type Backend interface {
	auth.Backend
	ticketlist.Source
	ticketdetail.Source
	chatbot.Source
}

// Config configures a Model.
type Config struct {
	Backend Backend
	Store   *session.Store

	// Clock drives search debouncing and chat timestamps. Nil selects
	// clock.Real().
	Clock clock.Clock

	// Logger receives controller failure traces. Pair it with a
	// TUILogHandler to surface them in the status bar. Nil discards.
	Logger *slog.Logger

	// SearchDelay overrides the dashboard search debounce.
	SearchDelay time.Duration

	// RequestTimeout bounds each backend operation. Zero selects
	// apiclient.DefaultTimeout.
	RequestTimeout time.Duration

	// RenderMarkdown styles assistant replies. When false they are shown
	// as plain text.
	RenderMarkdown bool
}

// Screen identifies which view is active.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
	ScreenDetail
	ScreenChat
)

// screenFor maps a route to the screen that renders it.
func screenFor(route schema.Route) Screen {
	switch route {
	case schema.RouteCustomerDashboard, schema.RouteAgentDashboard, schema.RouteAdminDashboard:
		return ScreenDashboard
	case schema.RouteCustomerChatbot:
		return ScreenChat
	default:
		return ScreenLogin
	}
}

// programSender forwards controller change notifications into the
// running program. Controllers notify from command goroutines, timer
// goroutines, and occasionally from inside Update, so delivery never
// blocks the caller.
type programSender struct {
	program atomic.Pointer[tea.Program]
}

func (sender *programSender) send(message tea.Msg) {
	if program := sender.program.Load(); program != nil {
		go program.Send(message)
	}
}

// Change notifications name their source, and Update reads the current
// snapshot from it. Reading fresh state instead of carrying a snapshot
// makes out-of-order delivery harmless, and a notification from a
// controller the model has already replaced is ignored.
type (
	listChangedMsg   struct{ controller *ticketlist.Controller }
	detailChangedMsg struct{ controller *ticketdetail.Controller }
	chatChangedMsg   struct{ conversation *chatbot.Conversation }
)

// homeMsg delivers the opening view.
type homeMsg struct {
	landing auth.Landing
}

// Model is the bubbletea model for the full-screen client.
type Model struct {
	backend        Backend
	store          *session.Store
	clock          clock.Clock
	logger         *slog.Logger
	theme          tui.Theme
	keys           KeyMap
	sender         *programSender
	searchDelay    time.Duration
	requestTimeout time.Duration
	markdown       bool

	width  int
	height int
	ready  bool

	screen     Screen
	user       *schema.User
	connection auth.Connection

	// Status bar: the latest warning or error from the log handler or
	// an action, cleared after logRecordFadeDelay.
	statusText     string
	statusLevel    slog.Level
	statusSequence int

	login     loginState
	dashboard dashboardState
	detail    detailState
	chat      chatState
}

// NewModel creates the client model. It opens on the login screen and
// resolves the real opening view in Init.
func NewModel(config Config) Model {
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = apiclient.DefaultTimeout
	}
	return Model{
		backend:        config.Backend,
		store:          config.Store,
		clock:          clk,
		logger:         logger,
		theme:          tui.DefaultTheme,
		keys:           DefaultKeyMap,
		sender:         &programSender{},
		searchDelay:    config.SearchDelay,
		requestTimeout: timeout,
		markdown:       config.RenderMarkdown,
		screen:         ScreenLogin,
		login:          newLoginState(),
		dashboard:      newDashboardState(),
		detail:         newDetailState(),
		chat:           newChatState(),
	}
}

// SetProgram connects controller notifications to program. Call it
// after tea.NewProgram and before Run.
func (model Model) SetProgram(program *tea.Program) {
	model.sender.program.Store(program)
}

// Screen returns the active screen.
func (model Model) Screen() Screen { return model.screen }

func (model Model) Init() tea.Cmd {
	backend, store := model.backend, model.store
	return model.perform(func(ctx context.Context) tea.Msg {
		return homeMsg{landing: auth.Home(ctx, backend, store)}
	})
}

// perform runs operation off the event loop with the request timeout.
func (model Model) perform(operation func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := model.requestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return operation(ctx)
	}
}

func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.resize()
		return model, nil

	case homeMsg:
		if message.landing.User != nil {
			model.user = message.landing.User
			return model.navigate(message.landing.Route)
		}
		model.connection = message.landing.Connection
		return model.navigate(schema.RouteLogin)

	case loginResultMsg:
		return model.handleLoginResult(message)

	case listChangedMsg:
		if message.controller == model.dashboard.list {
			model.refreshDashboard()
		}
		return model, nil

	case ticketCreatedMsg:
		return model.handleTicketCreated(message)

	case detailChangedMsg:
		if message.controller == model.detail.controller {
			return model.refreshDetail()
		}
		return model, nil

	case detailActionMsg:
		return model.handleDetailAction(message)

	case chatChangedMsg:
		if message.conversation == model.chat.conversation {
			model.refreshChat()
		}
		return model, nil

	case chatAnsweredMsg:
		return model.handleChatAnswered(message)

	case logRecordMsg:
		return model.showStatus(message.Summary, message.Level)

	case logRecordFadeMsg:
		if message.Sequence == model.statusSequence {
			model.statusText = ""
		}
		return model, nil

	case tea.KeyMsg:
		if message.Type == tea.KeyCtrlC {
			return model, tea.Quit
		}
		switch model.screen {
		case ScreenLogin:
			return model.handleLoginKeys(message)
		case ScreenDashboard:
			return model.handleDashboardKeys(message)
		case ScreenDetail:
			return model.handleDetailKeys(message)
		case ScreenChat:
			return model.handleChatKeys(message)
		}
	}
	return model, nil
}

// navigate switches to the screen for route, enforcing the session
// guard for everything but the login view. A refused guard lands on
// the login view.
func (model Model) navigate(route schema.Route) (Model, tea.Cmd) {
	switch screenFor(route) {
	case ScreenDashboard:
		current, err := model.store.Require()
		if err != nil {
			return model.navigate(schema.RouteLogin)
		}
		model.user = current.User
		return model.enterDashboard()

	case ScreenChat:
		current, err := model.store.Require(schema.RoleCustomer)
		if err != nil {
			return model.navigate(schema.RouteLogin)
		}
		model.user = current.User
		return model.enterChat()

	default:
		model.closeControllers()
		model.user = nil
		model.screen = ScreenLogin
		return model, model.login.focus()
	}
}

// closeControllers stops any pending refilter and drops per-session
// state so a different user starts clean.
func (model *Model) closeControllers() {
	if model.dashboard.list != nil {
		model.dashboard.list.Close()
	}
	model.dashboard = newDashboardState()
	model.detail = newDetailState()
	model.chat = newChatState()
}

// logout clears the saved session and returns to the login view.
func (model Model) logout() (Model, tea.Cmd) {
	if err := auth.Logout(model.store); err != nil {
		model.logger.Error("logging out failed", "error", err)
	}
	return model.navigate(schema.RouteLogin)
}

// showStatus puts text in the status bar and schedules its removal.
func (model Model) showStatus(text string, level slog.Level) (Model, tea.Cmd) {
	model.statusSequence++
	model.statusText = text
	model.statusLevel = level
	sequence := model.statusSequence
	return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
		return logRecordFadeMsg{Sequence: sequence}
	})
}

// resize propagates the terminal size to the scrollable panes.
func (model *Model) resize() {
	bodyHeight := max(model.height-4, 3)
	// One column is kept for the thread's scrollbar.
	model.detail.viewport.Width = max(model.width-1, 1)
	model.detail.viewport.Height = bodyHeight
	model.chat.viewport.Width = model.width
	model.chat.viewport.Height = max(bodyHeight-2, 3)
	model.dashboard.search.Width = max(model.width/3, 10)
	if model.detail.controller != nil {
		model.renderDetailBody()
	}
	model.renderChatBody()
}

func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}
	var body string
	switch model.screen {
	case ScreenLogin:
		body = model.loginView()
	case ScreenDashboard:
		body = model.dashboardView()
	case ScreenDetail:
		body = model.detailView()
	case ScreenChat:
		body = model.chatView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, model.headerView(), body, model.statusView())
}

// headerView renders the title bar: product name, current view, and
// the signed-in user.
func (model Model) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render("SmartSupport")
	var section string
	switch model.screen {
	case ScreenLogin:
		section = "Sign in"
	case ScreenDashboard:
		if model.user != nil {
			section = tui.Label(string(model.user.Role)) + " Dashboard"
		}
	case ScreenDetail:
		section = "Ticket"
	case ScreenChat:
		section = "AI Assistant"
	}
	left := title + lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("  "+section)

	right := ""
	if model.user != nil {
		right = lipgloss.NewStyle().Foreground(model.theme.NormalText).Render(tui.SafeText(model.user.DisplayName(""))) +
			lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(" ("+string(model.user.Role)+")")
	}
	gap := max(model.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

// statusView renders the bottom line: a recent warning when there is
// one, otherwise the key help for the active screen.
func (model Model) statusView() string {
	if model.statusText != "" {
		color := model.theme.ErrorText
		if model.statusLevel < slog.LevelWarn {
			color = model.theme.SuccessText
		}
		return lipgloss.NewStyle().Foreground(color).Render(truncate(model.statusText, model.width))
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(truncate(model.helpLine(), model.width))
}

// helpLine lists the bindings that do something on the active screen.
func (model Model) helpLine() string {
	var bindings []key.Binding
	switch model.screen {
	case ScreenLogin:
		bindings = []key.Binding{model.keys.NextField, model.keys.SubmitLogin, model.keys.DemoLogin}
	case ScreenDashboard:
		bindings = model.dashboardBindings()
	case ScreenDetail:
		bindings = model.detailBindings()
	case ScreenChat:
		bindings = []key.Binding{model.keys.QuickQuestion, model.keys.Open, model.keys.Back}
	}
	parts := make([]string, 0, len(bindings)+1)
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	if model.screen != ScreenLogin && model.screen != ScreenChat {
		parts = append(parts, "q quit")
	} else {
		parts = append(parts, "C-c quit")
	}
	return strings.Join(parts, "  ")
}
