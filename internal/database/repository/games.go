package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jask/oelview/internal/api"
	"github.com/jask/oelview/internal/database"
)

// GameRepo stores game snapshots as JSON documents.
type GameRepo struct {
	db *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

// Latest returns summaries of the most recently created games.
func (r *GameRepo) Latest(ctx context.Context) ([]api.GameSummary, error) {
	return r.summaries(ctx, LatestLimit)
}

// List returns summaries of every stored game, newest first.
func (r *GameRepo) List(ctx context.Context) ([]api.GameSummary, error) {
	return r.summaries(ctx, -1)
}

func (r *GameRepo) summaries(ctx context.Context, limit int) ([]api.GameSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, snapshot FROM games ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []api.GameSummary{}
	for rows.Next() {
		var id int
		var snap string
		if err := rows.Scan(&id, &snap); err != nil {
			return nil, err
		}
		g, err := decodeGame(id, snap)
		if err != nil {
			return nil, err
		}
		out = append(out, api.GameSummary{ID: g.ID, Name: g.Name, Variant: g.Variant, Round: g.Round, Phase: g.Phase})
	}
	return out, rows.Err()
}

func (r *GameRepo) Get(ctx context.Context, id int) (api.Game, error) {
	var snap string
	err := r.db.QueryRowContext(ctx, `SELECT snapshot FROM games WHERE id = ?`, id).Scan(&snap)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Game{}, ErrNotFound
	}
	if err != nil {
		return api.Game{}, err
	}
	return decodeGame(id, snap)
}

// Insert stores g and returns its id. g.ID is ignored and overwritten in the
// stored snapshot.
func (r *GameRepo) Insert(ctx context.Context, g api.Game) (int, error) {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO games(name, variant, snapshot) VALUES (?, ?, '{}')`, g.Name, g.Variant)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		g.ID = int(id)
		return writeSnapshot(ctx, tx, g)
	})
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}
	return g.ID, nil
}

// Update replaces the stored snapshot of g.ID.
func (r *GameRepo) Update(ctx context.Context, g api.Game) error {
	return writeSnapshot(ctx, r.db, g)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func writeSnapshot(ctx context.Context, ex execer, g api.Game) error {
	b, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode game %d: %w", g.ID, err)
	}
	res, err := ex.ExecContext(ctx, `UPDATE games SET name = ?, variant = ?, snapshot = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		g.Name, g.Variant, string(b), g.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeGame(id int, snap string) (api.Game, error) {
	var g api.Game
	if err := json.Unmarshal([]byte(snap), &g); err != nil {
		return api.Game{}, fmt.Errorf("decode game %d: %w", id, err)
	}
	g.ID = id
	return g, nil
}
