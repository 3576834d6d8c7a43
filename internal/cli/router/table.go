// Package router holds the declarative route tables of both shells and the
// pure guard that decides whether a navigation may proceed.
package router

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gorilla/mux"
)

// Route is one static entry of a route table
type Route struct {
	Name         string
	Path         string // template, ":param" segments allowed
	RequiresAuth bool
	Redirect     string // when set, navigating here goes to Redirect instead
}

// Match is a resolved navigation target
type Match struct {
	Route  Route
	Params map[string]string
}

// Table is an immutable route table. Paths are matched with gorilla/mux templates,
// ignoring case and a trailing slash the way browser routers do by default.
type Table struct {
	routes []Route
	router *mux.Router
	login  string
	home   string
}

// NewTable builds a table. loginName and homeName must name routes in the table.
func NewTable(loginName, homeName string, routes ...Route) (*Table, error) {
	t := &Table{
		routes: append([]Route(nil), routes...),
		router: mux.NewRouter(),
	}

	seen := make(map[string]bool, len(routes))
	for _, r := range t.routes {
		if r.Path == "" || !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("route %q: path must start with '/'", r.Name)
		}
		if r.Name != "" {
			if seen[r.Name] {
				return nil, fmt.Errorf("duplicate route name %q", r.Name)
			}
			seen[r.Name] = true
		}

		muxRoute := t.router.Path(strings.ToLower(toMuxTemplate(r.Path))).Name(routeKey(r))
		if err := muxRoute.GetError(); err != nil {
			return nil, fmt.Errorf("route %q: %w", r.Name, err)
		}
	}

	login, ok := t.byName(loginName)
	if !ok {
		return nil, fmt.Errorf("login route %q not found", loginName)
	}
	home, ok := t.byName(homeName)
	if !ok {
		return nil, fmt.Errorf("home route %q not found", homeName)
	}
	t.login = login.Path
	t.home = home.Path

	return t, nil
}

// MustTable is NewTable for static tables declared at init time
func MustTable(loginName, homeName string, routes ...Route) *Table {
	t, err := NewTable(loginName, homeName, routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// LoginPath is the path of the login screen
func (t *Table) LoginPath() string { return t.login }

// HomePath is where a successful login lands when no redirect target was preserved
func (t *Table) HomePath() string { return t.home }

// Routes returns a copy of the table entries
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// IsLogin reports whether location points at the login screen, query ignored
func (t *Table) IsLogin(location string) bool {
	return strings.EqualFold(normalizePath(pathOf(location)), t.login)
}

// Lookup matches a location (path with optional query) against the table
func (t *Table) Lookup(location string) (Match, bool) {
	u, err := url.Parse(location)
	if err != nil {
		return Match{}, false
	}

	p := normalizePath(u.Path)
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: strings.ToLower(p)}}
	var rm mux.RouteMatch
	if !t.router.Match(req, &rm) || rm.Route == nil {
		return Match{}, false
	}

	key := rm.Route.GetName()
	for _, r := range t.routes {
		if routeKey(r) == key {
			return Match{Route: r, Params: paramsOf(r.Path, p)}, true
		}
	}
	return Match{}, false
}

// paramsOf reads ":param" segments out of p, keeping their original case.
// p has already matched template, so both have the same number of segments.
func paramsOf(template, p string) map[string]string {
	params := make(map[string]string)
	values := strings.Split(p, "/")
	for i, s := range strings.Split(template, "/") {
		if strings.HasPrefix(s, ":") && len(s) > 1 && i < len(values) {
			params[s[1:]] = values[i]
		}
	}
	return params
}

// normalizePath cleans p and drops a trailing slash, root excepted
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

func (t *Table) byName(name string) (Route, bool) {
	for _, r := range t.routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// routeKey names the mux route; unnamed entries (redirects) are keyed by path
func routeKey(r Route) string {
	if r.Name != "" {
		return r.Name
	}
	return "path:" + r.Path
}

// toMuxTemplate converts "/notes/edit/:id" into "/notes/edit/{id}"
func toMuxTemplate(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") && len(s) > 1 {
			segments[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

func pathOf(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		return location[:i]
	}
	return location
}
