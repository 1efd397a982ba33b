// Package submit casts votes and turns the outcome into a navigation.
package submit

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"

	"github.com/jask/oelview/internal/api"
	"github.com/jask/oelview/internal/pipeline"
	"github.com/jask/oelview/internal/router"
)

// KeyVote is the pipeline slot votes are issued under.
const KeyVote = pipeline.Key("vote")

// Voter is the state-changing half of the polls API.
type Voter interface {
	Vote(ctx context.Context, questionID, choiceID int) (api.VoteResult, error)
}

// Result is the message a submission resolves to. It carries the ticket of
// the page view that sent it.
type Result = pipeline.Result[api.VoteResult]

// Submitter sends one request per user action: no retries, no idempotency key.
// Requests go through the owning page view's pipeline, so an outcome arriving
// after that page view was closed is dropped like any stale load.
type Submitter struct {
	pipe  *pipeline.Pipeline
	voter Voter
	log   logr.Logger
}

func New(pipe *pipeline.Pipeline, voter Voter, log logr.Logger) *Submitter {
	return &Submitter{pipe: pipe, voter: voter, log: log}
}

// Submit votes for choiceID under the pipeline's timeout. The returned command
// resolves to a Result; pass it to Resolve.
func (s *Submitter) Submit(questionID, choiceID int) tea.Cmd {
	voter, log := s.voter, s.log
	return pipeline.Load(s.pipe, KeyVote, questionID, func(ctx context.Context) (api.VoteResult, error) {
		res, err := voter.Vote(ctx, questionID, choiceID)
		if err != nil {
			log.Info("vote failed", "question", questionID, "choice", choiceID, "err", err.Error())
			return res, err
		}
		log.Info("vote recorded", "question", questionID, "choice", choiceID)
		return res, nil
	})
}

// Resolve maps an accepted outcome to a navigation: the question's results on
// success, the list otherwise. ok is false when the outcome is stale.
func (s *Submitter) Resolve(res Result) (msg router.NavigateMsg, ok bool) {
	if s.pipe.Accept(res.Ticket) != nil {
		return router.NavigateMsg{}, false
	}
	if res.Err != nil {
		return router.NavigateMsg{Route: router.Home, Reason: "vote failed: " + res.Err.Error()}, true
	}
	return router.NavigateMsg{Route: router.ResultsOf(res.EntityID), Reason: "vote recorded"}, true
}
