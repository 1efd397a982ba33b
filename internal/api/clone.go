package api

import (
	"maps"
	"slices"
)

// Clone returns a deep copy of c.
func (c Card) Clone() Card {
	c.Landscapes = slices.Clone(c.Landscapes)
	c.Cost = slices.Clone(c.Cost)
	return c
}

func cloneCards(cs []Card) []Card {
	if cs == nil {
		return nil
	}
	out := make([]Card, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

// Clone returns a deep copy of l.
func (l Landscape) Clone() Landscape {
	if l.LandscapeSpaces == nil {
		return l
	}
	spaces := make([][]LandscapeSpace, len(l.LandscapeSpaces))
	for i, col := range l.LandscapeSpaces {
		if col == nil {
			continue
		}
		spaces[i] = make([]LandscapeSpace, len(col))
		for j, sp := range col {
			spaces[i][j] = LandscapeSpace{LandscapePlot: sp.LandscapePlot, AllCards: cloneCards(sp.AllCards)}
		}
	}
	l.LandscapeSpaces = spaces
	return l
}

func cloneLandscapes(ls []Landscape) []Landscape {
	if ls == nil {
		return nil
	}
	out := make([]Landscape, len(ls))
	for i, l := range ls {
		out[i] = l.Clone()
	}
	return out
}

// Clone returns a deep copy of s.
func (s Seat) Clone() Seat {
	if s.Player != nil {
		p := *s.Player
		s.Player = &p
	}
	s.Goods = maps.Clone(s.Goods)
	s.LandscapeGrid.Column0 = cloneLandscapes(s.LandscapeGrid.Column0)
	s.LandscapeGrid.Column1 = cloneLandscapes(s.LandscapeGrid.Column1)
	s.LandscapeGrid.Column2 = cloneLandscapes(s.LandscapeGrid.Column2)
	return s
}

// Clone returns a deep copy of g; nothing in the result aliases g.
func (g Game) Clone() Game {
	g.Options = slices.Clone(g.Options)
	if g.Seats != nil {
		seats := make([]Seat, len(g.Seats))
		for i, s := range g.Seats {
			seats[i] = s.Clone()
		}
		g.Seats = seats
	}
	if g.Gamelogs != nil {
		logs := make([]GameLog, len(g.Gamelogs))
		for i, gl := range g.Gamelogs {
			gl.ParsedCommands = slices.Clone(gl.ParsedCommands)
			logs[i] = gl
		}
		g.Gamelogs = logs
	}
	g.AvailableBuildings = cloneCards(g.AvailableBuildings)
	if g.AvailableLandscapes != nil {
		avail := make(map[string][]Landscape, len(g.AvailableLandscapes))
		for k, ls := range g.AvailableLandscapes {
			avail[k] = cloneLandscapes(ls)
		}
		g.AvailableLandscapes = avail
	}
	if g.WorkContractPrice != nil {
		p := *g.WorkContractPrice
		g.WorkContractPrice = &p
	}
	g.Ledger = slices.Clone(g.Ledger)
	return g
}
