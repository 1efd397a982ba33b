// Package router maps client-side paths to page views.
//
// Known patterns are "/", "/view/:id" and "/results/:id". Anything else
// redirects to "/".
package router

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type Kind int

const (
	List Kind = iota
	View
	Results
)

func (k Kind) String() string {
	switch k {
	case View:
		return "view"
	case Results:
		return "results"
	default:
		return "list"
	}
}

// Route is a parsed path with its bound entity id.
type Route struct {
	Kind Kind
	ID   int
}

// Home is the list route.
var Home = Route{Kind: List}

func ViewOf(id int) Route    { return Route{Kind: View, ID: id} }
func ResultsOf(id int) Route { return Route{Kind: Results, ID: id} }

// Path renders the route back into its URL form.
func (r Route) Path() string {
	switch r.Kind {
	case View:
		return fmt.Sprintf("/view/%d", r.ID)
	case Results:
		return fmt.Sprintf("/results/%d", r.ID)
	default:
		return "/"
	}
}

// Parse resolves path. redirected is true when path matched nothing and the
// result is Home.
func Parse(path string) (r Route, redirected bool) {
	p := strings.Trim(strings.TrimSpace(path), "/")
	if p == "" {
		return Home, false
	}
	parts := strings.Split(p, "/")
	if len(parts) != 2 {
		return Home, true
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil || id < 0 {
		return Home, true
	}
	switch parts[0] {
	case "view":
		return ViewOf(id), false
	case "results":
		return ResultsOf(id), false
	default:
		return Home, true
	}
}

// NavigateMsg asks the application to leave the current page view for Route.
type NavigateMsg struct {
	Route  Route
	Reason string
}

// Navigate returns a command emitting NavigateMsg.
func Navigate(r Route, reason string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: r, Reason: reason} }
}
