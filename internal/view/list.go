package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/oelview/internal/api"
	"github.com/jask/oelview/internal/order"
	"github.com/jask/oelview/internal/pipeline"
	"github.com/jask/oelview/internal/router"
)

const keyList = pipeline.Key("list")

// ListPage is the top-level list of games or questions. Choosing an entry
// navigates to its /view/:id page.
type ListPage[T any] struct {
	deps   Deps
	title  string
	fetch  func(ctx context.Context) ([]T, error)
	id     func(T) int
	label  func(T) string
	sort   func([]T) []T
	items  []T
	pipe   *pipeline.Pipeline
	cursor int
	loaded bool
	err    error
}

// NewGameList lists the latest games, newest first.
func NewGameList(deps Deps, src GameSource) *ListPage[api.GameSummary] {
	return newListPage(deps, "Games", src.Games,
		func(g api.GameSummary) int { return g.ID },
		func(g api.GameSummary) string {
			name := g.Name
			if name == "" {
				name = fmt.Sprintf("Game %d", g.ID)
			}
			return fmt.Sprintf("%s · %s · round %d %s", name, g.Variant, g.Round, g.Phase)
		},
		func(gs []api.GameSummary) []api.GameSummary { return order.ByField(gs, "id", true) },
	)
}

// NewQuestionList lists the latest published questions, newest first.
func NewQuestionList(deps Deps, src PollSource) *ListPage[api.Question] {
	return newListPage(deps, "Latest questions", src.Questions,
		func(q api.Question) int { return q.ID },
		func(q api.Question) string {
			return fmt.Sprintf("%s  %s", q.QuestionText, mutedStyle.Render(q.PubDate.Format("2006-01-02")))
		},
		func(qs []api.Question) []api.Question { return order.ByField(qs, "pub_date", true) },
	)
}

func newListPage[T any](deps Deps, title string, fetch func(context.Context) ([]T, error), id func(T) int, label func(T) string, sort func([]T) []T) *ListPage[T] {
	return &ListPage[T]{
		deps:  deps,
		title: title,
		fetch: fetch,
		id:    id,
		label: label,
		sort:  sort,
		pipe:  pipeline.New(deps.ctx(), deps.Timeout, deps.Log.WithName("list")),
	}
}

func (l *ListPage[T]) ID() string          { return l.pipe.ID() }
func (l *ListPage[T]) Route() router.Route { return router.Home }
func (l *ListPage[T]) Title() string       { return l.title }
func (l *ListPage[T]) Init() tea.Cmd       { return l.Load() }
func (l *ListPage[T]) Close()              { l.pipe.Invalidate() }

func (l *ListPage[T]) Load() tea.Cmd {
	return pipeline.Load(l.pipe, keyList, 0, l.fetch)
}

// Items returns the committed entries in display order.
func (l *ListPage[T]) Items() []T { return append([]T(nil), l.items...) }

func (l *ListPage[T]) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case pipeline.Result[[]T]:
		if l.pipe.Accept(m.Ticket) != nil {
			return nil
		}
		if m.Err != nil {
			l.err = m.Err
			l.deps.Log.Info("list load failed", "title", l.title, "err", m.Err.Error())
			return statusCmd(l.pipe.ID(), "could not load "+strings.ToLower(l.title)+" (r to retry)", true)
		}
		l.err = nil
		l.loaded = true
		l.items = l.sort(m.Data)
		if l.cursor >= len(l.items) {
			l.cursor = max(0, len(l.items)-1)
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(m, keys.Up):
			if l.cursor > 0 {
				l.cursor--
			}
		case key.Matches(m, keys.Down):
			if l.cursor < len(l.items)-1 {
				l.cursor++
			}
		case key.Matches(m, keys.Submit):
			if l.cursor < len(l.items) {
				return router.Navigate(router.ViewOf(l.id(l.items[l.cursor])), "")
			}
		case key.Matches(m, keys.Reload):
			return l.Load()
		}
	}
	return nil
}

func (l *ListPage[T]) Help() []KeyHint {
	return []KeyHint{hint(keys.Up), hint(keys.Down), {Key: "enter", Desc: "open"}, hint(keys.Reload)}
}

func (l *ListPage[T]) View(width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(l.title) + "\n\n")
	switch {
	case l.err != nil && !l.loaded:
		sb.WriteString(errStyle.Render("Could not load the list (r to retry)"))
	case !l.loaded:
		sb.WriteString(mutedStyle.Render("Loading…"))
	case len(l.items) == 0:
		sb.WriteString(mutedStyle.Render("Nothing here yet."))
	default:
		for i, it := range l.items {
			prefix := "  "
			if i == l.cursor {
				prefix = cursorStyle.Render("› ")
			}
			sb.WriteString(prefix + l.label(it) + "\n")
		}
	}
	return fitHeight(fitWidth(strings.TrimRight(sb.String(), "\n"), width), height)
}
