// Package view holds the page-view orchestrators.
//
// A page view is created when the router enters a route and closed when the
// router leaves it. Each one owns its view-model, its navigation machine and its
// load pipeline; nothing is shared between page views.
//
// Allowed here:
// - wiring nav, pipeline, order and submit around a view-model
// - rendering the view-model for the terminal
//
// Not allowed here:
// - HTTP details (internal/api) or route parsing (internal/router)
package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"

	"github.com/jask/oelview/internal/api"
	"github.com/jask/oelview/internal/router"
	"github.com/jask/oelview/internal/submit"
)

// Page is one routed page view.
type Page interface {
	// ID identifies this page view instance; messages it emits carry it.
	ID() string
	Route() router.Route
	Title() string
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
	// Help lists the page's key hints for the footer.
	Help() []KeyHint
	// Close tears the page view down; results still in flight are dropped.
	Close()
}

// GameSource is the read side of the game API.
type GameSource interface {
	Games(ctx context.Context) ([]api.GameSummary, error)
	Game(ctx context.Context, id int) (api.Game, error)
}

// PollSource is the polls API.
type PollSource interface {
	Questions(ctx context.Context) ([]api.Question, error)
	Question(ctx context.Context, id int) (api.Question, error)
	Choices(ctx context.Context, questionID int) ([]api.Choice, error)
	submit.Voter
}

// Deps carries what every page view needs.
type Deps struct {
	Ctx     context.Context
	Timeout time.Duration
	Log     logr.Logger
}

func (d Deps) ctx() context.Context {
	if d.Ctx == nil {
		return context.Background()
	}
	return d.Ctx
}

// StatusMsg sets the application status line. Origin is the ID of the page
// view that sent it; the app drops it once that page view is gone.
type StatusMsg struct {
	Origin string
	Text   string
	IsErr  bool
}

func statusCmd(origin, text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Origin: origin, Text: text, IsErr: isErr} }
}

// KeyHint is one footer entry.
type KeyHint struct {
	Key  string
	Desc string
}
