package view

import "github.com/jask/oelview/internal/router"

// Factory builds the page view for a route.
type Factory interface {
	Name() string
	Page(r router.Route) Page
}

// GameFactory serves the spectator app: a games list and one view per game.
type GameFactory struct {
	Deps  Deps
	Src   GameSource
	Board func() BoardRenderer
}

func (f GameFactory) Name() string { return "game" }

func (f GameFactory) Page(r router.Route) Page {
	switch r.Kind {
	case router.View, router.Results:
		// games have no results page; both bind the same game
		var board BoardRenderer
		if f.Board != nil {
			board = f.Board()
		}
		return NewGameView(f.Deps, f.Src, r.ID, board)
	default:
		return NewGameList(f.Deps, f.Src)
	}
}

// PollFactory serves the polls app: latest questions, voting and results.
type PollFactory struct {
	Deps Deps
	Src  PollSource
}

func (f PollFactory) Name() string { return "polls" }

func (f PollFactory) Page(r router.Route) Page {
	switch r.Kind {
	case router.View, router.Results:
		return NewPollView(f.Deps, f.Src, r)
	default:
		return NewQuestionList(f.Deps, f.Src)
	}
}
