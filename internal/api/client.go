package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// ErrNetworkFailure marks a rejected request or a non-success response.
var ErrNetworkFailure = errors.New("network failure")

// Error describes a failed API call. It always matches ErrNetworkFailure.
type Error struct {
	Op     string
	URL    string
	Status int // zero when the request never got a response
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrNetworkFailure }

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	CSRFToken string
	HTTP      *http.Client
	Log       logr.Logger
}

// Client talks to the game and polls REST endpoints.
type Client struct {
	base    *url.URL
	timeout time.Duration
	csrf    string
	http    *http.Client
	log     logr.Logger
}

func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}
	hc := opts.HTTP
	if hc == nil {
		hc = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{base: base, timeout: timeout, csrf: opts.CSRFToken, http: hc, log: opts.Log}, nil
}

// Timeout is the per-request bound applied to every call.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Games lists every game.
func (c *Client) Games(ctx context.Context) ([]GameSummary, error) {
	var out []GameSummary
	err := c.do(ctx, http.MethodGet, "game/games/", &out)
	return out, err
}

// LatestGames lists the five most recent games.
func (c *Client) LatestGames(ctx context.Context) ([]GameSummary, error) {
	var out []GameSummary
	err := c.do(ctx, http.MethodGet, "game/games/latest/", &out)
	return out, err
}

func (c *Client) Game(ctx context.Context, id int) (Game, error) {
	var out Game
	err := c.do(ctx, http.MethodGet, "game/games/"+strconv.Itoa(id)+"/", &out)
	return out, err
}

// Questions lists the latest published questions.
func (c *Client) Questions(ctx context.Context) ([]Question, error) {
	var out []Question
	err := c.do(ctx, http.MethodGet, "polls/questions/latest/", &out)
	return out, err
}

func (c *Client) Question(ctx context.Context, id int) (Question, error) {
	var out Question
	err := c.do(ctx, http.MethodGet, "polls/questions/"+strconv.Itoa(id)+"/", &out)
	return out, err
}

func (c *Client) Choices(ctx context.Context, questionID int) ([]Choice, error) {
	var out []Choice
	err := c.do(ctx, http.MethodGet, "polls/choices/"+strconv.Itoa(questionID)+"/", &out)
	return out, err
}

// Vote casts one vote for choiceID on questionID.
func (c *Client) Vote(ctx context.Context, questionID, choiceID int) (VoteResult, error) {
	var out VoteResult
	path := fmt.Sprintf("polls/choices/%d/%d/vote_for/", questionID, choiceID)
	err := c.do(ctx, http.MethodPost, path, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.base.ResolveReference(&url.URL{Path: path}).String()
	op := strings.ToLower(method)
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return &Error{Op: op, URL: u, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-ID", reqID)
	if c.csrf != "" && method != http.MethodGet {
		req.Header.Set("X-CSRFToken", c.csrf)
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: c.csrf})
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.V(1).Info("request failed", "method", method, "url", u, "requestID", reqID, "err", err.Error())
		return &Error{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()
	c.log.V(1).Info("request done", "method", method, "url", u, "requestID", reqID,
		"status", resp.StatusCode, "elapsed", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &Error{Op: op, URL: u, Status: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, URL: u, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
