package view

import (
	"fmt"
	"strings"

	"github.com/jask/oelview/internal/api"
	"github.com/jask/oelview/internal/order"
)

// BoardRenderer draws one seat's board. GameView calls it once per seat index
// every time the board region becomes active.
type BoardRenderer interface {
	RenderSeat(index int, seat api.Seat)
}

// TextBoard renders seat boards as plain text landscape grids.
type TextBoard struct {
	seats map[int]string
}

func NewTextBoard() *TextBoard {
	return &TextBoard{seats: make(map[int]string)}
}

func (b *TextBoard) RenderSeat(index int, seat api.Seat) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "seat %d · %s · score %d\n", index, seat.Label(), seat.Score)
	for col, tiles := range seat.LandscapeGrid.Columns() {
		for _, l := range order.Landscapes(tiles) {
			plots := make([]string, 0, len(l.LandscapeSpaces))
			for _, column := range l.LandscapeSpaces {
				for _, space := range column {
					cell := space.LandscapePlot
					if len(space.AllCards) > 0 {
						cell += ":" + space.AllCards[len(space.AllCards)-1].Name
					}
					plots = append(plots, cell)
				}
			}
			fmt.Fprintf(&sb, "  c%d r%d %-9s %s\n", col, l.Row, l.LandscapeType, strings.Join(plots, " "))
		}
	}
	b.seats[index] = strings.TrimRight(sb.String(), "\n")
}

// Seat returns the last drawing for index.
func (b *TextBoard) Seat(index int) (string, bool) {
	s, ok := b.seats[index]
	return s, ok
}

// Clear drops all drawings.
func (b *TextBoard) Clear() {
	clear(b.seats)
}
