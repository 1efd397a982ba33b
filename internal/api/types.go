package api

import "time"

// Question is a poll question as served by the polls API.
type Question struct {
	ID           int       `json:"id"`
	QuestionText string    `json:"question_text"`
	PubDate      time.Time `json:"pub_date"`
	TotalVotes   *int      `json:"total_votes"` // null when no choice has been voted yet
}

// Choice is one selectable answer of a Question.
type Choice struct {
	ID         int    `json:"id"`
	QuestionID int    `json:"question"`
	ChoiceText string `json:"choice_text"`
	Votes      int    `json:"votes"`
}

// VoteResult is the acknowledgement returned by vote_for.
type VoteResult struct {
	Status string `json:"status"`
}

// Goods is a counted resource held by a seat or priced on the board.
type Goods struct {
	Name         string `json:"name"`
	Count        int    `json:"count"`
	Abbreviation string `json:"abbreviation"`
}

var abbreviations = map[string]string{
	"wood":   "w",
	"clay":   "c",
	"stone":  "t",
	"straw":  "s",
	"coin":   "$",
	"energy": "e",
	"food":   "f",
}

// Abbreviate returns the short board label of a goods kind: a fixed letter
// for the core resources, the first letter otherwise.
func Abbreviate(name string) string {
	if a, ok := abbreviations[name]; ok {
		return a
	}
	if name == "" {
		return ""
	}
	r := []rune(name)
	return string(r[0])
}

type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Card struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	CardType       string   `json:"card_type"`
	Age            string   `json:"age"`
	Landscapes     []string `json:"landscapes"`
	Cost           []Goods  `json:"cost"`
	EconomicValue  int      `json:"economic_value"`
	DwellingValue  int      `json:"dwelling_value"`
	Variant        string   `json:"variant"`
	CanBeRemoved   bool     `json:"can_be_removed"`
	CanBeOverbuilt bool     `json:"can_be_overbuilt"`
	IsCloister     bool     `json:"is_cloister,omitempty"`
}

type LandscapeSpace struct {
	LandscapePlot string `json:"landscape_plot"`
	AllCards      []Card `json:"all_cards"`
}

// Landscape is a placed (or purchasable) landscape tile.
type Landscape struct {
	LandscapeType   string             `json:"landscape_type"`
	HorizontalSize  int                `json:"horizontal_size"`
	VerticalSize    int                `json:"vertical_size"`
	Row             int                `json:"row"`
	Column          int                `json:"column"`
	LandscapeSpaces [][]LandscapeSpace `json:"landscape_spaces"`
}

// LandscapeGrid is the seat's heartland split into the three board columns.
type LandscapeGrid struct {
	Start   int         `json:"start"`
	End     int         `json:"end"`
	Column0 []Landscape `json:"column_0"`
	Column1 []Landscape `json:"column_1"`
	Column2 []Landscape `json:"column_2"`
}

// Columns returns the grid columns left to right.
func (g LandscapeGrid) Columns() [][]Landscape {
	return [][]Landscape{g.Column0, g.Column1, g.Column2}
}

type Seat struct {
	ID            int              `json:"id"`
	Player        *User            `json:"player"`
	IsNeutral     bool             `json:"is_neutral"`
	Goods         map[string]Goods `json:"goods"`
	Score         int              `json:"score"`
	LandscapeGrid LandscapeGrid    `json:"landscape_grid"`
}

// Label is the display name of the seat.
func (s Seat) Label() string {
	switch {
	case s.Player != nil && s.Player.Username != "":
		return s.Player.Username
	case s.IsNeutral:
		return "neutral"
	default:
		return "empty"
	}
}

type ParsedCommand struct {
	CommandString string `json:"command_string"`
	IsPartial     bool   `json:"is_partial"`
}

type GameLog struct {
	ID             int             `json:"id"`
	ExecutorID     int             `json:"executor_id"`
	Command        string          `json:"command"`
	ParsedCommands []ParsedCommand `json:"parsed_commands"`
}

type LedgerEntry struct {
	ExecutorIndex int    `json:"executor_index"`
	Text          string `json:"text"`
}

// Game is the spectator snapshot of one game.
type Game struct {
	ID                  int                    `json:"id"`
	Name                string                 `json:"name"`
	Variant             string                 `json:"variant"`
	Options             []string               `json:"options"`
	Gameboard           string                 `json:"gameboard"`
	Age                 string                 `json:"age"`
	Phase               string                 `json:"phase"`
	Message             string                 `json:"message"`
	Round               int                    `json:"round"`
	Turn                int                    `json:"turn"`
	ActionSeatIndex     int                    `json:"action_seat_index"`
	LastAppliedGamelog  int                    `json:"last_applied_gamelog"`
	RoundGrapesEnter    int                    `json:"round_grapes_enter"`
	RoundStoneEnters    int                    `json:"round_stone_enters"`
	Seats               []Seat                 `json:"seats"`
	Gamelogs            []GameLog              `json:"gamelogs"`
	AvailableBuildings  []Card                 `json:"available_buildings"`
	AvailableLandscapes map[string][]Landscape `json:"available_landscapes"`
	WorkContractPrice   *Goods                 `json:"work_contract_price"`
	Ledger              []LedgerEntry          `json:"ledger"`
}

// GameSummary is a games list entry.
type GameSummary struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Variant string `json:"variant"`
	Round   int    `json:"round"`
	Phase   string `json:"phase"`
}
