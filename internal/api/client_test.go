package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler, csrf string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second, CSRFToken: csrf})
	require.NoError(t, err)
	return c
}

func TestClientQuestionDecodes(t *testing.T) {
	t.Parallel()

	var gotPath, gotXRW, gotReqID string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotXRW = r.Header.Get("X-Requested-With")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"question_text":"What's up?","pub_date":"2016-03-21T10:00:00Z","total_votes":null}`))
	}), "")

	q, err := c.Question(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "/polls/questions/7/", gotPath)
	require.Equal(t, "XMLHttpRequest", gotXRW)
	require.NotEmpty(t, gotReqID)
	require.Equal(t, 7, q.ID)
	require.Equal(t, "What's up?", q.QuestionText)
	require.Nil(t, q.TotalVotes)
}

func TestClientGamesPaths(t *testing.T) {
	t.Parallel()

	var paths []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":1,"name":"a"}]`))
	}), "")

	all, err := c.Games(context.Background())
	require.NoError(t, err)
	require.Equal(t, []GameSummary{{ID: 1, Name: "a"}}, all)
	_, err = c.LatestGames(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"/game/games/", "/game/games/latest/"}, paths)
}

func TestClientNonSuccessIsNetworkFailure(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}), "")

	_, err := c.Game(context.Background(), 3)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNetworkFailure))

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "get", apiErr.Op)
}

func TestClientTransportErrorIsNetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(Options{BaseURL: base, Timeout: time.Second})
	require.NoError(t, err)
	_, err = c.Questions(context.Background())
	require.ErrorIs(t, err, ErrNetworkFailure)
}

func TestClientTimeoutBoundsRequest(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}), "")
	defer close(release)
	c.timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := c.Choices(context.Background(), 1)
	require.ErrorIs(t, err, ErrNetworkFailure)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestClientVoteSendsCSRF(t *testing.T) {
	t.Parallel()

	var method, path, token string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path, token = r.Method, r.URL.Path, r.Header.Get("X-CSRFToken")
		_, _ = w.Write([]byte(`{"status":"voted"}`))
	}), "tok")

	res, err := c.Vote(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Equal(t, "voted", res.Status)
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "/polls/choices/1/2/vote_for/", path)
	require.Equal(t, "tok", token)
}

func TestNewClientRejectsRelativeBase(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Options{BaseURL: "localhost"})
	require.Error(t, err)
}

func TestAbbreviate(t *testing.T) {
	require.Equal(t, "t", Abbreviate("stone"))
	require.Equal(t, "$", Abbreviate("coin"))
	require.Equal(t, "p", Abbreviate("peat"))
	require.Equal(t, "", Abbreviate(""))
}
