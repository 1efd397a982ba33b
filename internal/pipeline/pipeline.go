// Package pipeline sequences asynchronous loads for one page view and decides,
// when a response arrives, whether it is still the one the view is waiting for.
//
// Every Load bumps a per-key generation. Results carry the generation they were
// issued under plus the pipeline's own id, so a response is accepted only if no
// newer load for the same key has been issued since and the pipeline that
// issued it is still the live one. Superseded requests are never cancelled;
// they run to completion and their results are dropped on arrival.
package pipeline

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// ErrStaleResult reports a response superseded by a newer request.
var ErrStaleResult = errors.New("stale result")

// Key names a load slot, typically the resource type ("game", "choices").
type Key string

// Ticket identifies one issued request.
type Ticket struct {
	Owner     string
	Key       Key
	Gen       uint64
	EntityID  int
	RequestID string
}

// Result is the message delivered when a load finishes.
type Result[T any] struct {
	Ticket
	Data T
	Err  error
}

// Pipeline is owned by a single page view and must only be touched from that
// view's Update loop.
type Pipeline struct {
	ctx       context.Context
	id        string
	timeout   time.Duration
	gens      map[Key]uint64
	discarded int
	log       logr.Logger
}

func New(ctx context.Context, timeout time.Duration, log logr.Logger) *Pipeline {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Pipeline{
		ctx:     ctx,
		id:      uuid.NewString(),
		timeout: timeout,
		gens:    make(map[Key]uint64),
		log:     log,
	}
}

// ID is the pipeline instance id stamped on every ticket.
func (p *Pipeline) ID() string { return p.id }

// Issue supersedes any outstanding request for key and returns the new ticket.
func (p *Pipeline) Issue(key Key, entityID int) Ticket {
	p.gens[key]++
	return Ticket{Owner: p.id, Key: key, Gen: p.gens[key], EntityID: entityID, RequestID: uuid.NewString()}
}

// Current reports whether t is the latest ticket issued for its key by p.
func (p *Pipeline) Current(t Ticket) bool {
	return t.Owner == p.id && t.Gen != 0 && p.gens[t.Key] == t.Gen
}

// Accept returns ErrStaleResult for superseded tickets and records the discard.
func (p *Pipeline) Accept(t Ticket) error {
	if p.Current(t) {
		return nil
	}
	p.discarded++
	p.log.V(1).Info("discarding stale result", "key", t.Key, "entity", t.EntityID,
		"gen", t.Gen, "current", p.gens[t.Key], "requestID", t.RequestID, "foreign", t.Owner != p.id)
	return ErrStaleResult
}

// Discarded counts results rejected by Accept.
func (p *Pipeline) Discarded() int { return p.discarded }

// Invalidate supersedes every outstanding request, used on page-view teardown.
func (p *Pipeline) Invalidate() {
	for k := range p.gens {
		p.gens[k]++
	}
}

// Load issues a request for key and returns the command that performs it. The
// fetch runs off the Update loop under the pipeline's timeout.
func Load[T any](p *Pipeline, key Key, entityID int, fetch func(ctx context.Context) (T, error)) tea.Cmd {
	t := p.Issue(key, entityID)
	ctx, timeout, log := p.ctx, p.timeout, p.log
	log.V(1).Info("load issued", "key", key, "entity", entityID, "gen", t.Gen, "requestID", t.RequestID)
	return func() tea.Msg {
		fctx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		data, err := fetch(fctx)
		return Result[T]{Ticket: t, Data: data, Err: err}
	}
}
