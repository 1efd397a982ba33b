package devapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/jask/oelview/internal/api"
	"github.com/jask/oelview/internal/database"
)

func openSeeded(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dev.db")
	require.NoError(t, database.RunMigrations(path))
	db, err := database.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Seed(context.Background(), db))
	return db
}

func startServer(t *testing.T, opts ...Option) (*api.Client, *sql.DB) {
	t.Helper()
	db := openSeeded(t)
	ts := httptest.NewServer(New(db, logr.Discard(), opts...).Router())
	t.Cleanup(ts.Close)
	c, err := api.NewClient(api.Options{BaseURL: ts.URL, Log: logr.Discard()})
	require.NoError(t, err)
	return c, db
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openSeeded(t)
	require.NoError(t, Seed(context.Background(), db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM games`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestLatestQuestionsHidesFuture(t *testing.T) {
	c, _ := startServer(t)
	qs, err := c.Questions(context.Background())
	require.NoError(t, err)
	require.Len(t, qs, 3)
	require.Equal(t, "France or Ireland?", qs[0].QuestionText)
	require.Equal(t, "What's up?", qs[2].QuestionText)
	for _, q := range qs {
		require.NotEqual(t, "Who wins next season?", q.QuestionText)
	}
}

func TestQuestionChoicesAndVote(t *testing.T) {
	c, _ := startServer(t)
	ctx := context.Background()

	q, err := c.Question(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "What's up?", q.QuestionText)
	require.NotNil(t, q.TotalVotes)
	require.Zero(t, *q.TotalVotes)

	choices, err := c.Choices(ctx, 1)
	require.NoError(t, err)
	require.Len(t, choices, 3)
	for _, ch := range choices {
		require.Equal(t, 1, ch.QuestionID)
	}

	res, err := c.Vote(ctx, 1, choices[1].ID)
	require.NoError(t, err)
	require.Equal(t, "voted", res.Status)

	choices, err = c.Choices(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, choices[1].Votes)

	q, err = c.Question(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, *q.TotalVotes)
}

func TestVoteForChoiceOfAnotherQuestion(t *testing.T) {
	c, _ := startServer(t)
	_, err := c.Vote(context.Background(), 2, 1)
	require.ErrorIs(t, err, api.ErrNetworkFailure)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 404, apiErr.Status)
}

func TestUnknownEntitiesAre404(t *testing.T) {
	c, _ := startServer(t)
	ctx := context.Background()

	_, err := c.Question(ctx, 99)
	require.ErrorIs(t, err, api.ErrNetworkFailure)
	_, err = c.Choices(ctx, 99)
	require.ErrorIs(t, err, api.ErrNetworkFailure)
	_, err = c.Game(ctx, 99)
	require.ErrorIs(t, err, api.ErrNetworkFailure)
}

func TestGameSnapshot(t *testing.T) {
	c, _ := startServer(t)
	ctx := context.Background()

	games, err := c.Games(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	latest, err := c.LatestGames(ctx)
	require.NoError(t, err)
	require.Equal(t, games, latest)

	g, err := c.Game(ctx, games[0].ID)
	require.NoError(t, err)
	require.Equal(t, games[0].ID, g.ID)
	require.Len(t, g.Seats, 4)
	require.Equal(t, "alice", g.Seats[0].Label())
	require.Equal(t, "neutral", g.Seats[3].Label())
	require.Equal(t, "$", g.Seats[3].Goods["coin"].Abbreviation)
}

func TestVoteRequiresCSRFWhenConfigured(t *testing.T) {
	db := openSeeded(t)
	ts := httptest.NewServer(New(db, logr.Discard(), WithCSRFToken("tok")).Router())
	t.Cleanup(ts.Close)

	anon, err := api.NewClient(api.Options{BaseURL: ts.URL})
	require.NoError(t, err)
	_, err = anon.Vote(context.Background(), 1, 1)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 403, apiErr.Status)

	authed, err := api.NewClient(api.Options{BaseURL: ts.URL, CSRFToken: "tok"})
	require.NoError(t, err)
	_, err = authed.Vote(context.Background(), 1, 1)
	require.NoError(t, err)
}
