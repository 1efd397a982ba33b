package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jask/oelview/internal/api"
	"github.com/jask/oelview/internal/database"
)

// ErrNotFound is returned when a lookup or update matches no row.
var ErrNotFound = errors.New("not found")

// LatestLimit caps the "latest" listings.
const LatestLimit = 5

// QuestionRepo handles poll questions and their choices.
type QuestionRepo struct {
	db *sql.DB
}

func NewQuestionRepo(db *sql.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

const questionCols = `q.id, q.question_text, q.pub_date,
	(SELECT SUM(c.votes) FROM choices c WHERE c.question_id = q.id)`

func scanQuestion(s interface{ Scan(...any) error }) (api.Question, error) {
	var q api.Question
	var total sql.NullInt64
	if err := s.Scan(&q.ID, &q.QuestionText, &q.PubDate, &total); err != nil {
		return api.Question{}, err
	}
	if total.Valid {
		n := int(total.Int64)
		q.TotalVotes = &n
	}
	return q, nil
}

// LatestPublished returns the newest questions published at or before now.
func (r *QuestionRepo) LatestPublished(ctx context.Context, now time.Time) ([]api.Question, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+questionCols+`
	FROM questions q
	WHERE q.pub_date <= ?
	ORDER BY q.pub_date DESC, q.id DESC
	LIMIT ?`, now.UTC(), LatestLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []api.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *QuestionRepo) Get(ctx context.Context, id int) (api.Question, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+questionCols+` FROM questions q WHERE q.id = ?`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Question{}, ErrNotFound
	}
	return q, err
}

// Choices lists the choices of a question in id order. An unknown question
// yields ErrNotFound rather than an empty list.
func (r *QuestionRepo) Choices(ctx context.Context, questionID int) ([]api.Choice, error) {
	if _, err := r.Get(ctx, questionID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, question_id, choice_text, votes FROM choices WHERE question_id = ? ORDER BY id`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []api.Choice{}
	for rows.Next() {
		var c api.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.ChoiceText, &c.Votes); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Vote adds one vote to choiceID, which must belong to questionID.
func (r *QuestionRepo) Vote(ctx context.Context, questionID, choiceID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE choices SET votes = votes + 1 WHERE id = ? AND question_id = ?`, choiceID, questionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Insert stores a question with its choice texts and returns the new id.
func (r *QuestionRepo) Insert(ctx context.Context, text string, pubDate time.Time, choices ...string) (int, error) {
	var id int64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO questions(question_text, pub_date) VALUES (?, ?)`, text, pubDate.UTC().Truncate(time.Second))
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		for _, c := range choices {
			if _, err := tx.ExecContext(ctx, `INSERT INTO choices(question_id, choice_text) VALUES (?, ?)`, id, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}
	return int(id), nil
}

// Count returns the number of stored questions.
func (r *QuestionRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n)
	return n, err
}
