package view

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/oelview/internal/api"
	"github.com/jask/oelview/internal/router"
)

type fakePolls struct {
	mu         sync.Mutex
	question   api.Question
	nQuestions int
	choices    [][]api.Choice // returned per Choices call; last one repeats
	nChoices   int
	// failures keyed by call index
	questionErrAt map[int]error
	choicesErrAt  map[int]error
	voteErr       error
	votes         [][2]int
}

func (f *fakePolls) Questions(context.Context) ([]api.Question, error) {
	now := time.Now()
	return []api.Question{
		{ID: 1, QuestionText: "old", PubDate: now.Add(-2 * time.Hour)},
		{ID: 2, QuestionText: "new", PubDate: now},
	}, nil
}

func (f *fakePolls) Question(_ context.Context, id int) (api.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.nQuestions
	f.nQuestions++
	if err := f.questionErrAt[n]; err != nil {
		return api.Question{}, err
	}
	q := f.question
	q.ID = id
	return q, nil
}

func (f *fakePolls) Choices(context.Context, int) ([]api.Choice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.nChoices
	f.nChoices++
	if err := f.choicesErrAt[n]; err != nil {
		return nil, err
	}
	return f.choices[min(n, len(f.choices)-1)], nil
}

func (f *fakePolls) Vote(_ context.Context, q, c int) (api.VoteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes = append(f.votes, [2]int{q, c})
	if f.voteErr != nil {
		return api.VoteResult{}, f.voteErr
	}
	return api.VoteResult{Status: "voted"}, nil
}

// drain runs cmd and every command it batches, returning the leaf messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func feed(p Page, cmd tea.Cmd) []tea.Msg {
	var rest []tea.Msg
	for _, m := range drain(cmd) {
		if next := p.Update(m); next != nil {
			rest = append(rest, drain(next)...)
		}
	}
	return rest
}

func navigateIn(msgs []tea.Msg) (router.NavigateMsg, bool) {
	for _, m := range msgs {
		if nm, ok := m.(router.NavigateMsg); ok {
			return nm, true
		}
	}
	return router.NavigateMsg{}, false
}

var sampleChoices = []api.Choice{
	{ID: 3, QuestionID: 5, ChoiceText: "three", Votes: 1},
	{ID: 1, QuestionID: 5, ChoiceText: "one", Votes: 7},
	{ID: 2, QuestionID: 5, ChoiceText: "two", Votes: 2},
}

func newPoll(t *testing.T, route router.Route, src *fakePolls) *PollView {
	t.Helper()
	p := NewPollView(testDeps(), src, route)
	feed(p, p.Init())
	return p
}

func TestPollViewLoadsQuestionAndChoices(t *testing.T) {
	src := &fakePolls{question: api.Question{QuestionText: "What's up?"}, choices: [][]api.Choice{sampleChoices}}
	p := newPoll(t, router.ViewOf(5), src)

	vm := p.ViewModel()
	require.Equal(t, "What's up?", vm.Question.QuestionText)
	require.Len(t, vm.Choices, 3)
	require.Nil(t, vm.Selected)

	out := p.View(80, 20)
	require.Less(t, strings.Index(out, "one"), strings.Index(out, "two"))
	require.Less(t, strings.Index(out, "two"), strings.Index(out, "three"))
}

func TestPollViewSubmitSuccessNavigatesToResults(t *testing.T) {
	src := &fakePolls{choices: [][]api.Choice{sampleChoices}}
	p := newPoll(t, router.ViewOf(5), src)

	require.True(t, p.Select(2))
	nm, ok := navigateIn(feed(p, p.Submit()))
	require.True(t, ok)
	require.Equal(t, router.ResultsOf(5), nm.Route)
	require.Equal(t, [][2]int{{5, 2}}, src.votes)
}

func TestPollViewSubmitFailureNavigatesHome(t *testing.T) {
	src := &fakePolls{choices: [][]api.Choice{sampleChoices}, voteErr: api.ErrNetworkFailure}
	p := newPoll(t, router.ViewOf(5), src)

	require.True(t, p.Select(1))
	nm, ok := navigateIn(feed(p, p.Submit()))
	require.True(t, ok)
	require.Equal(t, router.Home, nm.Route)
	require.Contains(t, nm.Reason, "failed")
	require.Len(t, src.votes, 1)
}

func TestPollViewSubmitWithoutSelection(t *testing.T) {
	src := &fakePolls{choices: [][]api.Choice{sampleChoices}}
	p := newPoll(t, router.ViewOf(5), src)

	msgs := drain(p.Submit())
	require.Len(t, msgs, 1)
	status, ok := msgs[0].(StatusMsg)
	require.True(t, ok)
	require.True(t, status.IsErr)
	require.Empty(t, src.votes)
}

func TestPollViewSubmitOnce(t *testing.T) {
	src := &fakePolls{choices: [][]api.Choice{sampleChoices}}
	p := newPoll(t, router.ViewOf(5), src)
	require.True(t, p.Select(3))

	first := p.Submit()
	require.Nil(t, p.Submit())
	drain(first)
	require.Len(t, src.votes, 1)
}

func TestPollViewFailedReloadKeepsState(t *testing.T) {
	fail := &api.Error{Op: "get", URL: "x", Status: 503}
	src := &fakePolls{
		question:      api.Question{QuestionText: "kept?"},
		choices:       [][]api.Choice{sampleChoices, {{ID: 9, ChoiceText: "never shown"}}},
		questionErrAt: map[int]error{1: fail},
		choicesErrAt:  map[int]error{1: fail},
	}
	p := newPoll(t, router.ViewOf(5), src)
	require.True(t, p.Select(2))
	before := p.ViewModel()

	msgs := feed(p, p.Load())
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		status, ok := m.(StatusMsg)
		require.True(t, ok)
		require.True(t, status.IsErr)
		require.Equal(t, p.ID(), status.Origin)
	}

	after := p.ViewModel()
	require.Equal(t, before, after)
	require.Equal(t, "kept?", after.Question.QuestionText)
	require.Len(t, after.Choices, 3)
	require.Equal(t, 2, *after.Selected)
	require.NotContains(t, p.View(80, 20), "could not be loaded")
}

func TestPollViewFailedFirstLoadShowsRetry(t *testing.T) {
	src := &fakePolls{
		choices:       [][]api.Choice{sampleChoices},
		questionErrAt: map[int]error{0: api.ErrNetworkFailure},
		choicesErrAt:  map[int]error{0: api.ErrNetworkFailure},
	}
	p := newPoll(t, router.ViewOf(5), src)

	vm := p.ViewModel()
	require.Nil(t, vm.Question)
	require.Empty(t, vm.Choices)
	out := p.View(80, 20)
	require.Contains(t, out, "Question 5 could not be loaded")
	require.Contains(t, out, "Choices could not be loaded")

	feed(p, p.Load())
	require.Len(t, p.ViewModel().Choices, 3)
}

func TestPollViewViewModelIsCopy(t *testing.T) {
	total := 3
	src := &fakePolls{question: api.Question{TotalVotes: &total}, choices: [][]api.Choice{sampleChoices}}
	p := newPoll(t, router.ViewOf(5), src)
	require.True(t, p.Select(1))

	vm := p.ViewModel()
	*vm.Question.TotalVotes = 100
	vm.Choices[0].Votes = 100
	*vm.Selected = 3

	again := p.ViewModel()
	require.Equal(t, 3, *again.Question.TotalVotes)
	require.Equal(t, sampleChoices[0].Votes, again.Choices[0].Votes)
	require.Equal(t, 1, *again.Selected)
}

func TestPollViewSelectUnknownChoice(t *testing.T) {
	src := &fakePolls{choices: [][]api.Choice{sampleChoices}}
	p := newPoll(t, router.ViewOf(5), src)

	require.False(t, p.Select(42))
	require.Nil(t, p.ViewModel().Selected)
}

func TestPollViewStaleChoicesDiscarded(t *testing.T) {
	older := []api.Choice{{ID: 1, ChoiceText: "older"}}
	newer := []api.Choice{{ID: 1, ChoiceText: "newer"}}
	src := &fakePolls{choices: [][]api.Choice{older, newer}}
	p := NewPollView(testDeps(), src, router.ViewOf(5))

	first := drain(p.Load())
	second := drain(p.Load())
	for _, m := range second {
		p.Update(m)
	}
	for _, m := range first {
		require.Nil(t, p.Update(m))
	}
	require.Equal(t, "newer", p.ViewModel().Choices[0].ChoiceText)
	require.Equal(t, 2, p.pipe.Discarded())
}

func TestPollViewReloadDropsVanishedSelection(t *testing.T) {
	src := &fakePolls{choices: [][]api.Choice{sampleChoices, sampleChoices[:1]}}
	p := newPoll(t, router.ViewOf(5), src)
	require.True(t, p.Select(2))

	feed(p, p.Load())
	require.Nil(t, p.ViewModel().Selected)
}

func TestPollViewKeysSelectAndSubmit(t *testing.T) {
	src := &fakePolls{choices: [][]api.Choice{sampleChoices}}
	p := newPoll(t, router.ViewOf(5), src)

	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.Equal(t, 2, *p.ViewModel().Selected)

	nm, ok := navigateIn(feed(p, p.Update(tea.KeyMsg{Type: tea.KeyEnter})))
	require.True(t, ok)
	require.Equal(t, router.ResultsOf(5), nm.Route)
}

func TestPollViewResultsOrderedByVotes(t *testing.T) {
	total := 10
	src := &fakePolls{question: api.Question{QuestionText: "q", TotalVotes: &total}, choices: [][]api.Choice{sampleChoices}}
	p := newPoll(t, router.ResultsOf(5), src)

	out := p.View(100, 40)
	require.Less(t, strings.Index(out, "one: 7 votes"), strings.Index(out, "two: 2 votes"))
	require.Less(t, strings.Index(out, "two: 2 votes"), strings.Index(out, "three: 1 vote "))
	require.Contains(t, out, "(70%)")
	require.Contains(t, out, "10 votes in total")

	// results pages do not vote
	require.Nil(t, p.Update(tea.KeyMsg{Type: tea.KeyEnter}))
	nm, ok := navigateIn(drain(p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("v")})))
	require.True(t, ok)
	require.Equal(t, router.ViewOf(5), nm.Route)
}

func TestPollViewCloseClearsSelection(t *testing.T) {
	src := &fakePolls{choices: [][]api.Choice{sampleChoices}}
	p := newPoll(t, router.ViewOf(5), src)
	require.True(t, p.Select(1))

	pending := p.Load()
	p.Close()
	require.Nil(t, p.ViewModel().Selected)
	for _, m := range drain(pending) {
		require.Nil(t, p.Update(m))
	}
}

func TestQuestionListNewestFirst(t *testing.T) {
	l := NewQuestionList(testDeps(), &fakePolls{})
	feed(l, l.Init())

	items := l.Items()
	require.Len(t, items, 2)
	require.Equal(t, "new", items[0].QuestionText)

	msg := l.Update(tea.KeyMsg{Type: tea.KeyEnter})()
	require.Equal(t, router.ViewOf(2), msg.(router.NavigateMsg).Route)
}

func TestGameListNewestFirst(t *testing.T) {
	l := NewGameList(testDeps(), &fakeGames{})
	feed(l, l.Init())

	ids := []int{}
	for _, g := range l.Items() {
		ids = append(ids, g.ID)
	}
	require.Equal(t, []int{3, 2, 1}, ids)
}

func TestListLoadFailure(t *testing.T) {
	l := newListPage(testDeps(), "Things",
		func(context.Context) ([]int, error) { return nil, errors.New("boom") },
		func(i int) int { return i }, func(int) string { return "" }, func(xs []int) []int { return xs })

	msgs := feed(l, l.Init())
	require.Len(t, msgs, 1)
	require.True(t, msgs[0].(StatusMsg).IsErr)
	require.Contains(t, l.View(80, 10), "r to retry")
}
