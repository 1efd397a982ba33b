package view

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/oelview/internal/api"
	"github.com/jask/oelview/internal/order"
	"github.com/jask/oelview/internal/pipeline"
	"github.com/jask/oelview/internal/router"
	"github.com/jask/oelview/internal/submit"
)

const (
	keyQuestion = pipeline.Key("question")
	keyChoices  = pipeline.Key("choices")
)

// PollViewModel is the latest loaded question, its choices and the user's pick.
type PollViewModel struct {
	Question *api.Question
	Choices  []api.Choice
	Selected *int // choice id
}

// PollView serves both the voting page and the results page of one question;
// the two are whole pages, not tabs, so the route decides what is rendered.
type PollView struct {
	deps   Deps
	src    PollSource
	route  router.Route
	vm     PollViewModel
	pipe   *pipeline.Pipeline
	sub    *submit.Submitter
	cursor int

	questionErr error
	choicesErr  error
	loading     int
	submitting  bool
}

func NewPollView(deps Deps, src PollSource, route router.Route) *PollView {
	log := deps.Log.WithName("poll").WithValues("question", route.ID)
	pipe := pipeline.New(deps.ctx(), deps.Timeout, log)
	return &PollView{
		deps:  deps,
		src:   src,
		route: route,
		pipe:  pipe,
		sub:   submit.New(pipe, src, log),
	}
}

func (p *PollView) ID() string          { return p.pipe.ID() }
func (p *PollView) Route() router.Route { return p.route }

func (p *PollView) Title() string {
	if p.route.Kind == router.Results {
		return fmt.Sprintf("Results · question %d", p.route.ID)
	}
	return fmt.Sprintf("Question %d", p.route.ID)
}

func (p *PollView) Init() tea.Cmd { return p.Load() }

// Load fetches the question and its choices as two independent requests.
func (p *PollView) Load() tea.Cmd {
	src, id := p.src, p.route.ID
	p.loading = 2
	return tea.Batch(
		pipeline.Load(p.pipe, keyQuestion, id, func(ctx context.Context) (api.Question, error) {
			return src.Question(ctx, id)
		}),
		pipeline.Load(p.pipe, keyChoices, id, func(ctx context.Context) ([]api.Choice, error) {
			return src.Choices(ctx, id)
		}),
	)
}

// ViewModel returns a copy of the committed state.
func (p *PollView) ViewModel() PollViewModel {
	out := PollViewModel{Choices: append([]api.Choice(nil), p.vm.Choices...)}
	if p.vm.Question != nil {
		q := *p.vm.Question
		if q.TotalVotes != nil {
			n := *q.TotalVotes
			q.TotalVotes = &n
		}
		out.Question = &q
	}
	if p.vm.Selected != nil {
		sel := *p.vm.Selected
		out.Selected = &sel
	}
	return out
}

// Select records choiceID as the user's pick. Ids not among the loaded
// choices are ignored.
func (p *PollView) Select(choiceID int) bool {
	for i, c := range p.displayChoices() {
		if c.ID == choiceID {
			p.cursor = i
			p.vm.Selected = &choiceID
			return true
		}
	}
	return false
}

// Submit casts the vote for the current selection.
func (p *PollView) Submit() tea.Cmd {
	if p.vm.Selected == nil {
		return statusCmd(p.pipe.ID(), "select a choice first", true)
	}
	if p.submitting {
		return nil
	}
	p.submitting = true
	return tea.Batch(statusCmd(p.pipe.ID(), "voting…", false), p.sub.Submit(p.route.ID, *p.vm.Selected))
}

func (p *PollView) Close() {
	p.pipe.Invalidate()
	p.vm.Selected = nil
}

func (p *PollView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case pipeline.Result[api.Question]:
		if p.pipe.Accept(m.Ticket) != nil {
			return nil
		}
		p.loading--
		if m.Err != nil {
			p.questionErr = m.Err
			p.deps.Log.Info("question load failed", "question", m.EntityID, "err", m.Err.Error())
			return statusCmd(p.pipe.ID(), fmt.Sprintf("could not load question %d (r to retry)", m.EntityID), true)
		}
		q := m.Data
		p.vm.Question = &q
		p.questionErr = nil
	case pipeline.Result[[]api.Choice]:
		if p.pipe.Accept(m.Ticket) != nil {
			return nil
		}
		p.loading--
		if m.Err != nil {
			p.choicesErr = m.Err
			p.deps.Log.Info("choices load failed", "question", m.EntityID, "err", m.Err.Error())
			return statusCmd(p.pipe.ID(), fmt.Sprintf("could not load choices for question %d (r to retry)", m.EntityID), true)
		}
		p.vm.Choices = m.Data
		p.choicesErr = nil
		p.reconcileSelection()
	case submit.Result:
		nav, ok := p.sub.Resolve(m)
		if !ok {
			return nil
		}
		p.submitting = false
		return router.Navigate(nav.Route, nav.Reason)
	case tea.KeyMsg:
		return p.handleKey(m)
	}
	return nil
}

func (p *PollView) reconcileSelection() {
	n := len(p.vm.Choices)
	if p.cursor >= n {
		p.cursor = max(0, n-1)
	}
	if p.vm.Selected == nil {
		return
	}
	for _, c := range p.vm.Choices {
		if c.ID == *p.vm.Selected {
			return
		}
	}
	p.vm.Selected = nil
}

// displayChoices is the order choices are listed in on the current page.
func (p *PollView) displayChoices() []api.Choice {
	if p.route.Kind == router.Results {
		return order.ByField(p.vm.Choices, "votes", true)
	}
	return order.ByField(p.vm.Choices, "id", false)
}

func (p *PollView) handleKey(msg tea.KeyMsg) tea.Cmd {
	choices := p.displayChoices()
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(choices)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Select):
		if p.route.Kind == router.View && p.cursor < len(choices) {
			p.Select(choices[p.cursor].ID)
		}
	case key.Matches(msg, keys.Submit):
		if p.route.Kind != router.View {
			return nil
		}
		if p.vm.Selected == nil && p.cursor < len(choices) {
			p.Select(choices[p.cursor].ID)
		}
		return p.Submit()
	case key.Matches(msg, keys.Vote):
		if p.route.Kind == router.Results {
			return router.Navigate(router.ViewOf(p.route.ID), "")
		}
	case key.Matches(msg, keys.Reload):
		return tea.Batch(statusCmd(p.pipe.ID(), "reloading…", false), p.Load())
	case key.Matches(msg, keys.Back):
		return router.Navigate(router.Home, "")
	}
	return nil
}

func (p *PollView) Help() []KeyHint {
	if p.route.Kind == router.Results {
		return []KeyHint{hint(keys.Up), hint(keys.Down), hint(keys.Vote), hint(keys.Reload), hint(keys.Back)}
	}
	return []KeyHint{hint(keys.Up), hint(keys.Down), hint(keys.Select), hint(keys.Submit), hint(keys.Reload), hint(keys.Back)}
}

func (p *PollView) View(width, height int) string {
	var sb strings.Builder
	switch {
	case p.vm.Question != nil:
		sb.WriteString(titleStyle.Render(p.vm.Question.QuestionText) + "\n")
		if !p.vm.Question.PubDate.IsZero() {
			sb.WriteString(mutedStyle.Render("published "+p.vm.Question.PubDate.Format("2006-01-02 15:04")) + "\n")
		}
	case p.questionErr != nil:
		sb.WriteString(errStyle.Render(fmt.Sprintf("Question %d could not be loaded (r to retry)", p.route.ID)) + "\n")
	default:
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("Loading question %d…", p.route.ID)) + "\n")
	}
	sb.WriteString("\n")

	switch {
	case p.choicesErr != nil && len(p.vm.Choices) == 0:
		sb.WriteString(errStyle.Render("Choices could not be loaded (r to retry)"))
	case len(p.vm.Choices) == 0 && p.loading > 0:
		sb.WriteString(mutedStyle.Render("Loading choices…"))
	case len(p.vm.Choices) == 0:
		sb.WriteString(mutedStyle.Render("This question has no choices."))
	case p.route.Kind == router.Results:
		sb.WriteString(p.renderResults(width))
	default:
		sb.WriteString(p.renderChoices())
	}
	return fitHeight(fitWidth(sb.String(), width), height)
}

func (p *PollView) renderChoices() string {
	lines := make([]string, 0, len(p.vm.Choices))
	for i, c := range p.displayChoices() {
		mark := "( )"
		if p.vm.Selected != nil && *p.vm.Selected == c.ID {
			mark = selectedStyle.Render("(•)")
		}
		line := fmt.Sprintf("%s %s", mark, c.ChoiceText)
		if i == p.cursor {
			line = cursorStyle.Render("› ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (p *PollView) totalVotes() int {
	if p.vm.Question != nil && p.vm.Question.TotalVotes != nil {
		return *p.vm.Question.TotalVotes
	}
	total := 0
	for _, c := range p.vm.Choices {
		total += c.Votes
	}
	return total
}

func (p *PollView) renderResults(width int) string {
	choices := p.displayChoices()
	total := p.totalVotes()

	data := make([]barchart.BarData, 0, len(choices))
	for i, c := range choices {
		data = append(data, barchart.BarData{
			Label: strconv.Itoa(i + 1),
			Values: []barchart.BarValue{{
				Name:  c.ChoiceText,
				Value: float64(c.Votes),
				Style: lipgloss.NewStyle().Foreground(colorAccent),
			}},
		})
	}
	chart := barchart.New(max(10, min(width-2, 4*len(choices)+2)), 8)
	chart.PushAll(data)
	chart.Draw()

	lines := []string{chart.View(), ""}
	for i, c := range choices {
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(c.Votes) / float64(total)
		}
		line := fmt.Sprintf("%d. %s: %d vote%s (%.0f%%)", i+1, c.ChoiceText, c.Votes, plural(c.Votes), pct)
		if i == p.cursor {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("%d vote%s in total", total, plural(total))))
	return strings.Join(lines, "\n")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
