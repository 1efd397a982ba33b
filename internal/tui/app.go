package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-logr/logr"

	"github.com/jask/oelview/internal/router"
	"github.com/jask/oelview/internal/view"
)

const appName = "oelview"

var quitKey = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))

var (
	headerBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#181825")).
			Foreground(lipgloss.Color("#cdd6f4"))
	headerAppStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	statusErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true)
	helpDescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8"))
)

// App is the root model: it owns the current page view and swaps it whenever
// the router is asked to navigate.
type App struct {
	factory   view.Factory
	page      view.Page
	log       logr.Logger
	status    string
	statusErr bool
	width     int
	height    int
	quitting  bool
}

// New builds the app positioned on start.
func New(factory view.Factory, start router.Route, log logr.Logger) *App {
	a := &App{factory: factory, log: log, width: 80, height: 24}
	a.page = factory.Page(start)
	log.Info("page entered", "app", factory.Name(), "route", start.Path())
	return a
}

// Page is the current page view.
func (a *App) Page() view.Page { return a.page }

// Status is the status line text and whether it reports an error.
func (a *App) Status() (string, bool) { return a.status, a.statusErr }

func (a *App) Init() tea.Cmd {
	return a.page.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil
	case tea.KeyMsg:
		if key.Matches(m, quitKey) {
			a.quitting = true
			a.page.Close()
			return a, tea.Quit
		}
	case router.NavigateMsg:
		return a, a.navigate(m)
	case view.StatusMsg:
		if m.Origin != "" && m.Origin != a.page.ID() {
			a.log.V(1).Info("dropping status from closed page", "text", m.Text)
			return a, nil
		}
		a.status, a.statusErr = m.Text, m.IsErr
		return a, nil
	}
	return a, a.page.Update(msg)
}

func (a *App) navigate(m router.NavigateMsg) tea.Cmd {
	if m.Reason != "" {
		a.status = m.Reason
		a.statusErr = m.Route == router.Home && strings.Contains(m.Reason, "failed")
	}
	if m.Route == a.page.Route() {
		return nil
	}
	a.page.Close()
	a.page = a.factory.Page(m.Route)
	a.log.Info("page entered", "app", a.factory.Name(), "route", m.Route.Path(), "reason", m.Reason)
	return a.page.Init()
}

func (a *App) View() string {
	if a.quitting {
		return "Goodbye\n"
	}
	header := a.renderHeader()
	status := a.renderStatus()
	footer := a.renderFooter()
	bodyHeight := max(0, a.height-lipgloss.Height(header)-lipgloss.Height(status)-lipgloss.Height(footer))
	body := a.page.View(max(1, a.width), bodyHeight)
	return strings.Join([]string{header, body, status, footer}, "\n")
}

func (a *App) renderHeader() string {
	left := headerAppStyle.Render(appName + " · " + a.factory.Name())
	right := a.page.Title() + "  " + a.page.Route().Path()
	gap := max(1, a.width-ansi.StringWidth(left)-ansi.StringWidth(right))
	line := ansi.Truncate(left+strings.Repeat(" ", gap)+right, max(1, a.width), "")
	return headerBarStyle.Width(max(1, a.width)).Render(line)
}

func (a *App) renderStatus() string {
	if a.status == "" {
		return ""
	}
	style := statusStyle
	if a.statusErr {
		style = statusErrStyle
	}
	return style.Render(ansi.Truncate(a.status, max(1, a.width), "…"))
}

func (a *App) renderFooter() string {
	hints := append(a.page.Help(), view.KeyHint{Key: "q", Desc: "quit"})
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, fmt.Sprintf("%s %s", keyStyle.Render(h.Key), helpDescStyle.Render(h.Desc)))
	}
	return ansi.Truncate(strings.Join(parts, "  "), max(1, a.width), "")
}
