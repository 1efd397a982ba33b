package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/oelview/internal/api"
	"github.com/jask/oelview/internal/nav"
	"github.com/jask/oelview/internal/order"
	"github.com/jask/oelview/internal/pipeline"
	"github.com/jask/oelview/internal/router"
)

const (
	RegionBoard    nav.Region = "board"
	RegionEventLog nav.Region = "event-log"
	RegionChatLog  nav.Region = "chat-log"

	maxSeats = 4
	keyGame  = pipeline.Key("game")
)

// SeatRegion is the region of seat i.
func SeatRegion(i int) nav.Region { return nav.Region("seat-" + strconv.Itoa(i)) }

// GameRegions is the game view's fixed region set in tab order.
func GameRegions() []nav.Region {
	rs := []nav.Region{RegionBoard, RegionEventLog, RegionChatLog}
	for i := 0; i < maxSeats; i++ {
		rs = append(rs, SeatRegion(i))
	}
	return rs
}

// GameViewModel is the latest successfully loaded game.
type GameViewModel struct {
	Game *api.Game
}

// GameView is the spectator page for one game.
type GameView struct {
	deps    Deps
	src     GameSource
	id      int
	vm      GameViewModel
	nav     *nav.Machine
	pipe    *pipeline.Pipeline
	board   BoardRenderer
	loading bool
	lastErr error
}

func NewGameView(deps Deps, src GameSource, id int, board BoardRenderer) *GameView {
	if board == nil {
		board = NewTextBoard()
	}
	g := &GameView{
		deps:  deps,
		src:   src,
		id:    id,
		nav:   nav.NewMachine(GameRegions()...),
		pipe:  pipeline.New(deps.ctx(), deps.Timeout, deps.Log.WithName("game").WithValues("game", id)),
		board: board,
	}
	g.nav.OnChange(func(_, next nav.Region) {
		if next == RegionBoard {
			g.renderBoard()
		}
	})
	return g
}

func (g *GameView) ID() string          { return g.pipe.ID() }
func (g *GameView) Route() router.Route { return router.ViewOf(g.id) }

func (g *GameView) Title() string {
	if g.vm.Game != nil && g.vm.Game.Name != "" {
		return g.vm.Game.Name
	}
	return fmt.Sprintf("Game %d", g.id)
}

func (g *GameView) Init() tea.Cmd { return g.Load() }

// Load (re)fetches the game. Older loads still in flight become stale.
func (g *GameView) Load() tea.Cmd {
	g.loading = true
	src, id := g.src, g.id
	return pipeline.Load(g.pipe, keyGame, id, func(ctx context.Context) (api.Game, error) {
		return src.Game(ctx, id)
	})
}

// Activate switches the visible region. Unknown regions are logged and ignored.
func (g *GameView) Activate(r nav.Region) error {
	err := g.nav.Activate(r)
	if err != nil {
		g.deps.Log.Info("ignoring region switch", "err", err.Error())
	}
	return err
}

// Active is the visible region, nav.None before the first successful load.
func (g *GameView) Active() nav.Region {
	r, _ := g.nav.Active()
	return r
}

// ViewModel returns a deep copy of the committed state.
func (g *GameView) ViewModel() GameViewModel {
	if g.vm.Game == nil {
		return GameViewModel{}
	}
	gm := g.vm.Game.Clone()
	return GameViewModel{Game: &gm}
}

// Err is the last load failure, cleared by the next successful load.
func (g *GameView) Err() error { return g.lastErr }

func (g *GameView) Close() {
	g.pipe.Invalidate()
	g.nav.Reset()
	if c, ok := g.board.(interface{ Clear() }); ok {
		c.Clear()
	}
}

func (g *GameView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case pipeline.Result[api.Game]:
		return g.commit(m)
	case tea.KeyMsg:
		return g.handleKey(m)
	}
	return nil
}

func (g *GameView) commit(res pipeline.Result[api.Game]) tea.Cmd {
	if err := g.pipe.Accept(res.Ticket); err != nil {
		return nil
	}
	g.loading = false
	if res.Err != nil {
		g.lastErr = res.Err
		g.deps.Log.Info("game load failed", "game", res.EntityID, "err", res.Err.Error())
		return statusCmd(g.pipe.ID(), fmt.Sprintf("could not load game %d (r to retry)", res.EntityID), true)
	}
	game := res.Data
	g.vm.Game = &game
	g.lastErr = nil
	// Activate is a no-op when the board is already up, so redraw explicitly.
	if g.nav.IsActive(RegionBoard) {
		g.renderBoard()
		return nil
	}
	_ = g.nav.Activate(RegionBoard)
	return nil
}

func (g *GameView) renderBoard() {
	if g.vm.Game == nil {
		return
	}
	for i, seat := range g.vm.Game.Seats {
		g.board.RenderSeat(i, seat)
	}
}

func (g *GameView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.NextTab):
		g.nav.Next()
	case key.Matches(msg, keys.PrevTab):
		g.nav.Prev()
	case key.Matches(msg, keys.Reload):
		return tea.Batch(statusCmd(g.pipe.ID(), "reloading…", false), g.Load())
	case key.Matches(msg, keys.Back):
		return router.Navigate(router.Home, "")
	default:
		s := msg.String()
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			regions := g.nav.Regions()
			if idx := int(s[0] - '1'); idx < len(regions) {
				_ = g.Activate(regions[idx])
			}
		}
	}
	return nil
}

func (g *GameView) Help() []KeyHint {
	return []KeyHint{
		hint(keys.NextTab), hint(keys.PrevTab), {Key: "1-7", Desc: "jump to tab"},
		hint(keys.Reload), hint(keys.Back),
	}
}

func (g *GameView) tabLabel(r nav.Region, i int) string {
	label := strings.ReplaceAll(string(r), "-", " ")
	if g.vm.Game != nil {
		for s := 0; s < maxSeats; s++ {
			if r == SeatRegion(s) && s < len(g.vm.Game.Seats) {
				label = g.vm.Game.Seats[s].Label()
			}
		}
	}
	return fmt.Sprintf("%d %s", i+1, label)
}

func (g *GameView) View(width, height int) string {
	regions := g.nav.Regions()
	labels := make([]string, len(regions))
	active := -1
	for i, r := range regions {
		labels[i] = g.tabLabel(r, i)
		if g.nav.IsActive(r) {
			active = i
		}
	}
	var body string
	switch r := g.Active(); {
	case r == nav.None:
		body = g.renderPending()
	case r == RegionBoard:
		body = g.renderBoardRegion()
	case r == RegionEventLog:
		body = g.renderEventLog()
	case r == RegionChatLog:
		body = mutedStyle.Render("No chat messages for this game.")
	default:
		idx, _ := strconv.Atoi(strings.TrimPrefix(string(r), "seat-"))
		body = g.renderSeat(idx)
	}
	out := renderTabs(labels, active, width) + "\n" + fitWidth(body, width)
	return fitHeight(out, height)
}

func (g *GameView) renderPending() string {
	if g.lastErr != nil && !g.loading {
		var apiErr *api.Error
		detail := g.lastErr.Error()
		if errors.As(g.lastErr, &apiErr) && apiErr.Status != 0 {
			detail = fmt.Sprintf("server answered %d", apiErr.Status)
		}
		return errStyle.Render(fmt.Sprintf("Game %d could not be loaded: %s", g.id, detail)) +
			"\n" + mutedStyle.Render("press r to retry")
	}
	return mutedStyle.Render(fmt.Sprintf("Loading game %d…", g.id))
}

func (g *GameView) renderBoardRegion() string {
	game := g.vm.Game
	if game == nil {
		return g.renderPending()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  age %s · phase %s · round %d · turn %d\n",
		titleStyle.Render(g.Title()), game.Age, game.Phase, game.Round, game.Turn)
	if game.ActionSeatIndex >= 0 && game.ActionSeatIndex < len(game.Seats) {
		fmt.Fprintf(&sb, "to act: %s\n", game.Seats[game.ActionSeatIndex].Label())
	}
	if game.Message != "" {
		sb.WriteString(okStyle.Render(game.Message) + "\n")
	}
	if game.WorkContractPrice != nil {
		fmt.Fprintf(&sb, "work contract: %d %s\n", game.WorkContractPrice.Count, game.WorkContractPrice.Name)
	}
	if groups := order.GroupLandscapes(game.AvailableLandscapes); len(groups) > 0 {
		sb.WriteString("\nlandscapes for sale\n")
		for _, grp := range groups {
			fmt.Fprintf(&sb, "  %-10s %d left\n", grp.Type, len(grp.Tiles))
		}
	}
	if len(game.AvailableBuildings) > 0 {
		names := make([]string, 0, len(game.AvailableBuildings))
		for _, b := range order.ByField(game.AvailableBuildings, "id", false) {
			names = append(names, b.ID+" "+b.Name)
		}
		sb.WriteString("\nbuildings: " + strings.Join(names, ", ") + "\n")
	}
	if tb, ok := g.board.(interface{ Seat(int) (string, bool) }); ok {
		for i := range game.Seats {
			if s, ok := tb.Seat(i); ok {
				sb.WriteString("\n" + s + "\n")
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (g *GameView) renderEventLog() string {
	game := g.vm.Game
	if game == nil {
		return g.renderPending()
	}
	if len(game.Gamelogs) == 0 && len(game.Ledger) == 0 {
		return mutedStyle.Render("Nothing has happened yet.")
	}
	var sb strings.Builder
	for _, gl := range order.ByField(game.Gamelogs, "id", false) {
		marker := " "
		if gl.ID == game.LastAppliedGamelog {
			marker = "›"
		}
		fmt.Fprintf(&sb, "%s #%d seat %d: %s\n", marker, gl.ID, gl.ExecutorID, gl.Command)
		for _, pc := range gl.ParsedCommands {
			suffix := ""
			if pc.IsPartial {
				suffix = mutedStyle.Render(" (partial)")
			}
			fmt.Fprintf(&sb, "      %s%s\n", pc.CommandString, suffix)
		}
	}
	if len(game.Ledger) > 0 {
		sb.WriteString("\nledger\n")
		for _, le := range game.Ledger {
			fmt.Fprintf(&sb, "  [%d] %s\n", le.ExecutorIndex, le.Text)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (g *GameView) renderSeat(idx int) string {
	game := g.vm.Game
	if game == nil {
		return g.renderPending()
	}
	if idx < 0 || idx >= len(game.Seats) {
		return mutedStyle.Render("Nobody sits here.")
	}
	seat := game.Seats[idx]
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  score %d\n", titleStyle.Render(seat.Label()), seat.Score)
	for _, goods := range order.ResourceMap(seat.Goods) {
		abbr := goods.Abbreviation
		if abbr == "" {
			abbr = api.Abbreviate(goods.Name)
		}
		fmt.Fprintf(&sb, "  %-2s %-8s %3d\n", abbr, goods.Name, goods.Count)
	}
	grid := seat.LandscapeGrid
	fmt.Fprintf(&sb, "\nheartland rows %d..%d\n", grid.Start, grid.End)
	for col, tiles := range grid.Columns() {
		for _, l := range order.Landscapes(tiles) {
			fmt.Fprintf(&sb, "  column %d row %d: %s (%dx%d)\n", col, l.Row, l.LandscapeType, l.HorizontalSize, l.VerticalSize)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
