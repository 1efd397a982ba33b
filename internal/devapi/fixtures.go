package devapi

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jask/oelview/internal/api"
	"github.com/jask/oelview/internal/database"
	"github.com/jask/oelview/internal/database/repository"
)

// Seed fills an empty database with sample polls and one game.
// It is idempotent and safe to run on every startup.
func Seed(ctx context.Context, db *sql.DB) error {
	questions := repository.NewQuestionRepo(db)
	n, err := questions.Count(ctx)
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	if n > 0 {
		return nil
	}

	now := database.Now()
	polls := []struct {
		text    string
		age     time.Duration
		choices []string
	}{
		{"What's up?", 48 * time.Hour, []string{"Not much", "The sky", "Just hacking again"}},
		{"Best starting resource?", 24 * time.Hour, []string{"Wood", "Clay", "Peat"}},
		{"France or Ireland?", time.Hour, []string{"France", "Ireland"}},
		// future questions stay hidden from the latest listing
		{"Who wins next season?", -24 * time.Hour, []string{"Anyone"}},
	}
	for _, p := range polls {
		if _, err := questions.Insert(ctx, p.text, now.Add(-p.age), p.choices...); err != nil {
			return fmt.Errorf("seed question %q: %w", p.text, err)
		}
	}

	if _, err := repository.NewGameRepo(db).Insert(ctx, sampleGame()); err != nil {
		return fmt.Errorf("seed game: %w", err)
	}
	return nil
}

func goods(pairs ...any) map[string]api.Goods {
	out := make(map[string]api.Goods, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		name := pairs[i].(string)
		out[name] = api.Goods{Name: name, Count: pairs[i+1].(int), Abbreviation: api.Abbreviate(name)}
	}
	return out
}

func heartland(col int) api.LandscapeGrid {
	tile := func(kind string, row int) api.Landscape {
		return api.Landscape{LandscapeType: kind, HorizontalSize: 2, VerticalSize: 1, Row: row, Column: col}
	}
	return api.LandscapeGrid{
		Start:   0,
		End:     1,
		Column0: []api.Landscape{tile("coast", 0)},
		Column1: []api.Landscape{tile("plains", 0), tile("plains", 1)},
		Column2: []api.Landscape{tile("hillside", 1)},
	}
}

func sampleGame() api.Game {
	start := goods("clay", 1, "wood", 2, "straw", 1, "coin", 3, "food", 2, "peat", 1)
	players := []string{"alice", "bob", "carol"}
	seats := make([]api.Seat, 0, 4)
	for i, name := range players {
		seats = append(seats, api.Seat{
			ID:            i + 1,
			Player:        &api.User{ID: i + 1, Username: name},
			Goods:         start,
			Score:         i * 2,
			LandscapeGrid: heartland(i),
		})
	}
	seats = append(seats, api.Seat{ID: 4, IsNeutral: true, Goods: goods("stone", 2, "coin", 3)})

	return api.Game{
		Name:            "Sample game",
		Variant:         "france",
		Options:         []string{"standard"},
		Gameboard:       "3-player",
		Age:             "start",
		Phase:           "A",
		Message:         "alice to move",
		Round:           1,
		Turn:            1,
		ActionSeatIndex: 0,
		Seats:           seats,
		Gamelogs: []api.GameLog{
			{ID: 1, ExecutorID: 1, Command: "CUT_PEAT", ParsedCommands: []api.ParsedCommand{{CommandString: "CUT_PEAT"}}},
			{ID: 2, ExecutorID: 2, Command: "FELL_TREES", ParsedCommands: []api.ParsedCommand{{CommandString: "FELL_TREES"}}},
		},
		AvailableBuildings: []api.Card{
			{ID: "G01", Name: "Cloister Office", CardType: "building", Age: "start", Cost: []api.Goods{{Name: "clay", Count: 2}}},
			{ID: "F03", Name: "Farmyard", CardType: "building", Age: "start", Cost: []api.Goods{{Name: "wood", Count: 2}}},
		},
		AvailableLandscapes: map[string][]api.Landscape{
			"district": {{LandscapeType: "district", HorizontalSize: 2, VerticalSize: 1}},
			"plot":     {{LandscapeType: "plot", HorizontalSize: 1, VerticalSize: 2}},
		},
		WorkContractPrice: &api.Goods{Name: "coin", Count: 1, Abbreviation: api.Abbreviate("coin")},
		Ledger: []api.LedgerEntry{
			{ExecutorIndex: 0, Text: "alice cut peat"},
			{ExecutorIndex: 1, Text: "bob felled trees"},
		},
	}
}
