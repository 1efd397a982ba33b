package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, RunMigrations(path))
	return path
}

func TestRunMigrationsTwice(t *testing.T) {
	path := openTemp(t)
	require.NoError(t, RunMigrations(path))
}

func TestOpenMissingDir(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "no", "such", "dir", "x.db"))
	require.Error(t, err)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, openTemp(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	insert := `INSERT INTO questions(question_text, pub_date) VALUES (?, ?)`
	boom := errors.New("boom")
	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insert, "rolled back", Now()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, insert, "kept", Now())
		return err
	}))

	var texts []string
	rows, err := db.QueryContext(ctx, `SELECT question_text FROM questions`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var s string
		require.NoError(t, rows.Scan(&s))
		texts = append(texts, s)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{"kept"}, texts)
}
